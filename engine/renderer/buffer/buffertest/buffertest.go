// Package buffertest provides an in-memory buffer.Device and buffer.Allocator for tests that need buffers
// without a GPU.
package buffertest

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
)

var (
	// ErrAllocationFailed is returned by CreateNativeBuffer while Device.FailCreate is set.
	ErrAllocationFailed = errors.New("buffertest: allocation failed")

	// ErrWriteFailed is returned by WriteNativeBuffer while Device.FailWrites is positive.
	ErrWriteFailed = errors.New("buffertest: write failed")
)

// Memory is the native handle of an in-memory buffer.
type Memory struct {
	Label     string
	Usages    []buffer.Usage
	Bytes     []byte
	Writes    int
	Destroyed bool
}

// Device is a buffer.Device backed by byte slices. It records every native buffer it creates.
type Device struct {
	mu sync.Mutex

	// FailCreate makes every subsequent CreateNativeBuffer call fail.
	FailCreate bool
	// FailWrites makes the next FailWrites calls to WriteNativeBuffer fail.
	FailWrites int

	Created   []*Memory
	Destroyed int
}

var _ buffer.Device = &Device{}

func (d *Device) CreateNativeBuffer(label string, usages []buffer.Usage, size uint64) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailCreate {
		return nil, ErrAllocationFailed
	}
	m := &Memory{Label: label, Usages: usages, Bytes: make([]byte, size)}
	d.Created = append(d.Created, m)
	return m, nil
}

func (d *Device) WriteNativeBuffer(native any, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailWrites > 0 {
		d.FailWrites--
		return ErrWriteFailed
	}
	m := native.(*Memory)
	copy(m.Bytes[offset:], data)
	m.Writes++
	return nil
}

func (d *Device) DestroyNativeBuffer(native any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := native.(*Memory); ok {
		m.Destroyed = true
		d.Destroyed++
	}
}

// Allocator is a buffer.Allocator that creates buffers on an in-memory Device.
type Allocator struct {
	Device  *Device
	Factory uint64
	Debug   bool
}

var _ buffer.Allocator = &Allocator{}

// NewAllocator returns an Allocator over a fresh Device.
func NewAllocator() *Allocator {
	return &Allocator{Device: &Device{}, Factory: common.NextID()}
}

func (a *Allocator) CreateBuffer(options buffer.Options) (buffer.Buffer, error) {
	return buffer.NewBuffer(common.Handle{ID: common.NextID(), Factory: a.Factory}, a.Device, options, buffer.WithDebug(a.Debug))
}

// Contents returns the bytes currently held by b, which must have been created on an in-memory Device.
func Contents(b buffer.Buffer) []byte {
	m, ok := b.Native().(*Memory)
	if !ok {
		return nil
	}
	return m.Bytes
}
