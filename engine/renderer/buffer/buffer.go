package buffer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/pristine-go/common"
)

var (
	// ErrSizeMismatch is returned when initial data does not match the declared buffer size.
	ErrSizeMismatch = errors.New("buffer: data size mismatch")

	// ErrOutOfBounds is returned when a write would read past the source or write past the buffer.
	ErrOutOfBounds = errors.New("buffer: write out of bounds")

	// ErrDestroyed is returned in debug mode when writing to a destroyed buffer.
	ErrDestroyed = errors.New("buffer: write to destroyed buffer")

	// ErrInvalidUsage is returned when an Options value carries an undeclared Usage.
	ErrInvalidUsage = errors.New("buffer: invalid usage")
)

// Options describes a buffer to create.
type Options struct {
	// Label is a debug label handed to the backend.
	Label string
	// Usages is the set of ways the buffer will be used.
	Usages []Usage
	// Size is the size of the buffer in bytes.
	Size uint64
	// Data, when non-nil, is written into the buffer after creation. Its length must equal Size.
	Data []byte
}

// Device is the backend seam a Buffer writes through. Backends implement it on top of their native queue.
type Device interface {
	// CreateNativeBuffer allocates a backend buffer.
	//
	// Parameters:
	//   - label: the debug label for the buffer
	//   - usages: the usages the buffer must support
	//   - size: the size of the buffer in bytes
	//
	// Returns:
	//   - any: the backend buffer handle
	//   - error: an error if allocation fails
	CreateNativeBuffer(label string, usages []Usage, size uint64) (any, error)

	// WriteNativeBuffer copies data into the backend buffer at the given byte offset.
	//
	// Parameters:
	//   - native: the handle returned by CreateNativeBuffer
	//   - offset: the byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write fails
	WriteNativeBuffer(native any, offset uint64, data []byte) error

	// DestroyNativeBuffer releases the backend buffer.
	//
	// Parameters:
	//   - native: the handle returned by CreateNativeBuffer
	DestroyNativeBuffer(native any)
}

// Allocator creates buffers. A GraphicsFactory satisfies it.
type Allocator interface {
	// CreateBuffer creates a new Buffer from the given options.
	//
	// Parameters:
	//   - options: the buffer description
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if the options are invalid or allocation fails
	CreateBuffer(options Options) (Buffer, error)
}

// buffer is the implementation of the Buffer interface.
type buffer struct {
	handle    common.Handle
	label     string
	usages    []Usage
	size      uint64
	device    Device
	native    any
	destroyed bool
	debug     bool
}

// Buffer is an opaque GPU-resident memory region. Its size is fixed for its lifetime: growth is modeled by
// replacing the owning reference with a new Buffer, never by resizing.
type Buffer interface {
	// Handle returns the identity of this buffer.
	//
	// Returns:
	//   - common.Handle: the buffer's handle
	Handle() common.Handle

	// Label returns the debug label of this buffer.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Usages returns a copy of the usages this buffer was created with.
	//
	// Returns:
	//   - []Usage: the usages
	Usages() []Usage

	// Size returns the size of this buffer in bytes.
	//
	// Returns:
	//   - uint64: the size in bytes
	Size() uint64

	// Native returns the backend buffer handle. The caller is responsible for type asserting it.
	//
	// Returns:
	//   - any: the backend handle, or nil once destroyed
	Native() any

	// WriteBytes overwrites count bytes of this buffer starting at bufferByteOffset with bytes from source
	// starting at sourceByteOffset. A negative count means "the rest of source".
	//
	// Parameters:
	//   - source: the bytes to copy from
	//   - bufferByteOffset: the byte offset into this buffer to start writing at
	//   - sourceByteOffset: the byte offset into source to start reading from
	//   - count: the number of bytes to copy, or -1 for len(source)-sourceByteOffset
	//
	// Returns:
	//   - error: ErrOutOfBounds for invalid ranges, ErrDestroyed in debug mode after Destroy
	WriteBytes(source []byte, bufferByteOffset, sourceByteOffset, count int) error

	// Destroy releases the backend buffer. Calling it more than once is a no-op.
	Destroy()

	// Destroyed reports whether Destroy has been called.
	//
	// Returns:
	//   - bool: true once destroyed
	Destroyed() bool
}

var _ Buffer = &buffer{}

// NewBuffer creates a Buffer on the given device. When options.Data is set it must be exactly options.Size bytes
// long and is written into the new buffer.
//
// Parameters:
//   - handle: the identity to assign to the buffer
//   - device: the backend device to allocate and write through
//   - options: the buffer description
//   - opts: a variadic list of BufferBuilderOption functions
//
// Returns:
//   - Buffer: the created buffer
//   - error: ErrSizeMismatch, ErrInvalidUsage, or a backend allocation error
func NewBuffer(handle common.Handle, device Device, options Options, opts ...BufferBuilderOption) (Buffer, error) {
	if options.Data != nil && uint64(len(options.Data)) != options.Size {
		return nil, fmt.Errorf("%w: attempted to create a buffer of size %d, but provided %d bytes of data",
			ErrSizeMismatch, options.Size, len(options.Data))
	}
	for _, u := range options.Usages {
		if !u.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidUsage, u)
		}
	}

	b := &buffer{
		handle: handle,
		label:  options.Label,
		usages: slices.Clone(options.Usages),
		size:   options.Size,
		device: device,
	}
	for _, opt := range opts {
		opt(b)
	}

	native, err := device.CreateNativeBuffer(b.label, b.usages, b.size)
	if err != nil {
		return nil, fmt.Errorf("buffer: failed to create %q: %w", b.label, err)
	}
	b.native = native

	if len(options.Data) > 0 {
		if err := b.WriteBytes(options.Data, 0, 0, -1); err != nil {
			b.Destroy()
			return nil, err
		}
	}
	return b, nil
}

func (b *buffer) Handle() common.Handle {
	return b.handle
}

func (b *buffer) Label() string {
	return b.label
}

func (b *buffer) Usages() []Usage {
	return slices.Clone(b.usages)
}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Native() any {
	return b.native
}

func (b *buffer) Destroyed() bool {
	return b.destroyed
}

func (b *buffer) WriteBytes(source []byte, bufferByteOffset, sourceByteOffset, count int) error {
	if b.destroyed {
		if b.debug {
			return fmt.Errorf("%w: %q", ErrDestroyed, b.label)
		}
		return nil
	}
	if count < 0 {
		count = len(source) - sourceByteOffset
	}
	if bufferByteOffset < 0 || sourceByteOffset < 0 || count < 0 ||
		sourceByteOffset+count > len(source) ||
		uint64(bufferByteOffset)+uint64(count) > b.size {
		return fmt.Errorf("%w: writing %d bytes from source offset %d (len %d) into %q at offset %d (size %d)",
			ErrOutOfBounds, count, sourceByteOffset, len(source), b.label, bufferByteOffset, b.size)
	}
	if count == 0 {
		return nil
	}
	return b.device.WriteNativeBuffer(b.native, uint64(bufferByteOffset), source[sourceByteOffset:sourceByteOffset+count])
}

func (b *buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.device.DestroyNativeBuffer(b.native)
	b.native = nil
}
