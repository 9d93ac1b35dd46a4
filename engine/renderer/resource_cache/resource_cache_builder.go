package resource_cache

// CacheBuilderOption is a functional option applied to a cache during construction via New.
type CacheBuilderOption[V any] func(*cache[V])

// WithReleaseFunc sets the function called for every value removed by eviction, replacement or Clear.
//
// Parameters:
//   - release: releases the backend resources of a value
//
// Returns:
//   - CacheBuilderOption[V]: a function that applies the release option to a cache
func WithReleaseFunc[V any](release func(Key, V)) CacheBuilderOption[V] {
	return func(c *cache[V]) {
		c.release = release
	}
}
