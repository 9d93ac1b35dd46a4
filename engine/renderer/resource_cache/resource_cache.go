// Package resource_cache holds backend binding objects keyed by the identities of the pipeline and buffer they
// were built from. Keys are plain ids, so an entry never keeps its pipeline or buffer alive; entries are removed
// explicitly when either goes away.
package resource_cache

import "github.com/Carmen-Shannon/pristine-go/common"

// Key identifies a binding object by the pipeline and buffer it links.
type Key struct {
	Pipeline uint64
	Buffer   uint64
}

// cache is the implementation of the Cache interface.
type cache[V any] struct {
	entries map[Key]V
	release func(Key, V)
}

// Cache is an identity-keyed side table of binding objects. It is not safe for concurrent use; it is owned by a
// single renderer and accessed from its render loop.
type Cache[V any] interface {
	// Get returns the value stored under key.
	//
	// Parameters:
	//   - key: the (pipeline, buffer) identity
	//
	// Returns:
	//   - V: the stored value, or the zero value
	//   - bool: true if an entry exists
	Get(key Key) (V, bool)

	// Put stores value under key, releasing any value it replaces.
	//
	// Parameters:
	//   - key: the (pipeline, buffer) identity
	//   - value: the binding object
	Put(key Key, value V)

	// GetOrCreate returns the value stored under key, calling create and storing its result on a miss.
	// A failed create stores nothing.
	//
	// Parameters:
	//   - key: the (pipeline, buffer) identity
	//   - create: builds the value on a miss
	//
	// Returns:
	//   - V: the cached or newly created value
	//   - error: the error returned by create
	GetOrCreate(key Key, create func() (V, error)) (V, error)

	// EvictBuffer removes and releases every entry keyed to the buffer id.
	//
	// Parameters:
	//   - bufferID: the buffer identity
	//
	// Returns:
	//   - int: the number of entries removed
	EvictBuffer(bufferID uint64) int

	// EvictPipeline removes and releases every entry keyed to the pipeline id.
	//
	// Parameters:
	//   - pipelineID: the pipeline identity
	//
	// Returns:
	//   - int: the number of entries removed
	EvictPipeline(pipelineID uint64) int

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// Clear removes and releases every entry.
	Clear()
}

var _ Cache[any] = &cache[any]{}

// New creates an empty Cache.
//
// Parameters:
//   - opts: a variadic list of CacheBuilderOption functions
//
// Returns:
//   - Cache[V]: the new cache
func New[V any](opts ...CacheBuilderOption[V]) Cache[V] {
	c := &cache[V]{entries: make(map[Key]V)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cache[V]) Get(key Key) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *cache[V]) Put(key Key, value V) {
	if old, ok := c.entries[key]; ok && c.release != nil {
		c.release(key, old)
	}
	c.entries[key] = value
}

func (c *cache[V]) GetOrCreate(key Key, create func() (V, error)) (V, error) {
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	common.Logger().Debug("binding created", "pipeline", key.Pipeline, "buffer", key.Buffer)
	return v, nil
}

func (c *cache[V]) EvictBuffer(bufferID uint64) int {
	return c.evict(func(k Key) bool { return k.Buffer == bufferID })
}

func (c *cache[V]) EvictPipeline(pipelineID uint64) int {
	return c.evict(func(k Key) bool { return k.Pipeline == pipelineID })
}

func (c *cache[V]) evict(match func(Key) bool) int {
	n := 0
	for k, v := range c.entries {
		if !match(k) {
			continue
		}
		delete(c.entries, k)
		if c.release != nil {
			c.release(k, v)
		}
		n++
	}
	if n > 0 {
		common.Logger().Debug("bindings evicted", "count", n)
	}
	return n
}

func (c *cache[V]) Len() int {
	return len(c.entries)
}

func (c *cache[V]) Clear() {
	c.evict(func(Key) bool { return true })
}
