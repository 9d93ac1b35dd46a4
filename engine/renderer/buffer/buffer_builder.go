package buffer

// BufferBuilderOption is a functional option applied to a buffer during construction via NewBuffer.
type BufferBuilderOption func(*buffer)

// WithDebug makes writes to a destroyed buffer fail with ErrDestroyed instead of being silently dropped.
//
// Parameters:
//   - debug: true to report writes after Destroy
//
// Returns:
//   - BufferBuilderOption: a function that applies the debug option to a buffer
func WithDebug(debug bool) BufferBuilderOption {
	return func(b *buffer) {
		b.debug = debug
	}
}
