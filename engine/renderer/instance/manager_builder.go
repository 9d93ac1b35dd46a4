package instance

// ManagerBuilderOption is a functional option applied to a manager during construction via NewManager.
type ManagerBuilderOption func(*manager)

// WithMaxBufferSize caps the size in bytes of the backing buffer. Packing more records than fit fails with
// ErrCapacityExceeded. Zero means no cap.
//
// Parameters:
//   - size: the maximum buffer size in bytes
//
// Returns:
//   - ManagerBuilderOption: a function that applies the maximum size option to a manager
func WithMaxBufferSize(size uint64) ManagerBuilderOption {
	return func(m *manager) {
		m.maxSize = size
	}
}

// WithInvalidator registers the cache that holds binding objects keyed to the manager's buffer.
//
// Parameters:
//   - inv: the invalidator to notify on buffer replacement
//
// Returns:
//   - ManagerBuilderOption: a function that applies the invalidator option to a manager
func WithInvalidator(inv Invalidator) ManagerBuilderOption {
	return func(m *manager) {
		m.invalidator = inv
	}
}
