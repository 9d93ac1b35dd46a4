// Package instance batches per-instance records into one GPU storage buffer so a model can be drawn many times
// with a single draw call.
package instance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/model"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
)

var (
	// ErrIndexOutOfRange is returned when removing a record index that does not exist.
	ErrIndexOutOfRange = errors.New("instance: index out of range")

	// ErrCapacityExceeded is returned when the packed records need more bytes than the backend allows in one buffer.
	ErrCapacityExceeded = errors.New("instance: capacity exceeded")

	// ErrNilRecord is returned when a nil record is added.
	ErrNilRecord = errors.New("instance: nil record")

	// ErrMissingModel is returned when a manager is created without a model.
	ErrMissingModel = errors.New("instance: missing model")
)

// Invalidator is notified when a manager replaces its backing buffer, so binding objects keyed to the old buffer
// can be dropped before they are used again.
type Invalidator interface {
	// EvictBuffer drops every entry keyed to the given buffer id and returns how many were dropped.
	EvictBuffer(bufferID uint64) int
}

// Options describes an instance manager to create.
type Options struct {
	Model    model.Model
	Pipeline pipeline.Pipeline
	// Records is the initial record list. The slice is copied; the records are not.
	Records []*Record
	// PreallocatedCount reserves room for at least this many records up front.
	PreallocatedCount int
	// InitialBufferSize is the minimum initial capacity in bytes. Zero means DefaultInitialBufferSize.
	InitialBufferSize uint64
}

// manager is the implementation of the Manager interface.
type manager struct {
	allocator   buffer.Allocator
	model       model.Model
	pipeline    pipeline.Pipeline
	records     []*Record
	scratch     []float32
	buf         buffer.Buffer
	maxSize     uint64
	invalidator Invalidator
}

// Manager owns an ordered list of instance records and the GPU buffer they are packed into. Every mutation repacks
// the buffer before returning, so the buffer is always current for the next draw.
//
// The backing buffer only grows. When the packed records no longer fit, a new buffer of at least twice the old
// capacity replaces the old one, and the manager's Invalidator is told the old buffer id is gone.
type Manager interface {
	// Add appends a record and repacks.
	//
	// Parameters:
	//   - r: the record to append
	//
	// Returns:
	//   - error: ErrNilRecord, ErrCapacityExceeded, or a buffer error
	Add(r *Record) error

	// Remove deletes the record at index and repacks. The relative order of the other records is preserved.
	//
	// Parameters:
	//   - index: the index of the record to remove
	//
	// Returns:
	//   - error: ErrIndexOutOfRange for an invalid index, or a repack error
	Remove(index int) error

	// RemoveRecord deletes r, found by identity, and repacks.
	//
	// Parameters:
	//   - r: the record to remove
	//
	// Returns:
	//   - error: ErrIndexOutOfRange if r is not managed here, or a repack error
	RemoveRecord(r *Record) error

	// Replace swaps in a whole new record list and repacks.
	//
	// Parameters:
	//   - records: the new records; the slice is copied
	//
	// Returns:
	//   - error: ErrNilRecord, ErrCapacityExceeded, or a buffer error
	Replace(records []*Record) error

	// Pack writes every record into the backing buffer, growing it when necessary. Mutations call it already;
	// calling it directly republishes records mutated in place.
	//
	// Returns:
	//   - error: ErrCapacityExceeded or a buffer error
	Pack() error

	// Len returns the number of records.
	//
	// Returns:
	//   - int: the record count
	Len() int

	// Records returns a copy of the record list.
	//
	// Returns:
	//   - []*Record: the records in draw order
	Records() []*Record

	// Buffer returns the current backing buffer. Its identity changes when the manager grows.
	//
	// Returns:
	//   - buffer.Buffer: the storage buffer
	Buffer() buffer.Buffer

	// Capacity returns the size in bytes of the current backing buffer.
	//
	// Returns:
	//   - uint64: the capacity
	Capacity() uint64

	// Model returns the model drawn for every instance.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// Pipeline returns the pipeline the instances are drawn with.
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Pipeline() pipeline.Pipeline

	// Release destroys the backing buffer and invalidates entries keyed to it.
	Release()
}

var _ Manager = &manager{}

// NewManager creates a Manager and packs the initial records. The initial capacity is the largest of the initial
// buffer size, PreallocatedCount records, and the initial records.
//
// Parameters:
//   - allocator: the allocator to create storage buffers with, usually a GraphicsFactory
//   - options: the model, pipeline and initial records
//   - opts: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the new manager
//   - error: ErrMissingModel, ErrNilRecord, ErrCapacityExceeded, or a buffer error
func NewManager(allocator buffer.Allocator, options Options, opts ...ManagerBuilderOption) (Manager, error) {
	if options.Model == nil {
		return nil, ErrMissingModel
	}
	if slices.Contains(options.Records, nil) {
		return nil, ErrNilRecord
	}
	m := &manager{
		allocator: allocator,
		model:     options.Model,
		pipeline:  options.Pipeline,
		records:   slices.Clone(options.Records),
	}
	for _, opt := range opts {
		opt(m)
	}

	capacity := max(
		common.Coalesce(options.InitialBufferSize, DefaultInitialBufferSize),
		uint64(max(options.PreallocatedCount, 0))*RecordSize,
		uint64(len(m.records))*RecordSize,
	)
	if m.maxSize > 0 {
		if required := uint64(len(m.records)) * RecordSize; required > m.maxSize {
			return nil, m.capacityError(required)
		}
		capacity = min(capacity, m.maxSize)
	}

	buf, err := m.createBuffer(capacity)
	if err != nil {
		return nil, err
	}
	m.buf = buf
	if err := m.Pack(); err != nil {
		m.buf.Destroy()
		return nil, err
	}
	return m, nil
}

func (m *manager) createBuffer(size uint64) (buffer.Buffer, error) {
	b, err := m.allocator.CreateBuffer(buffer.Options{
		Label:  "instance records",
		Usages: []buffer.Usage{buffer.UsageStorage, buffer.UsageCopyDestination},
		Size:   size,
	})
	if err != nil {
		return nil, fmt.Errorf("instance: failed to create buffer of %d bytes: %w", size, err)
	}
	return b, nil
}

func (m *manager) capacityError(required uint64) error {
	return fmt.Errorf("%w: %d instances require %d bytes, but the maximum buffer size is %d bytes; consider batching fewer instances",
		ErrCapacityExceeded, len(m.records), required, m.maxSize)
}

// mutate installs records and repacks, restoring the previous list if the repack fails. When the failed repack
// already replaced the buffer, the previous list is packed into the replacement so Len matches its contents.
func (m *manager) mutate(records []*Record) error {
	previous, buf := m.records, m.buf
	m.records = records
	err := m.Pack()
	if err == nil {
		return nil
	}
	m.records = previous
	if m.buf != buf {
		if restoreErr := m.Pack(); restoreErr != nil {
			return errors.Join(err, fmt.Errorf("instance: failed to restore %d records: %w", len(previous), restoreErr))
		}
	}
	return err
}

func (m *manager) Add(r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	return m.mutate(append(slices.Clip(m.records), r))
}

func (m *manager) Remove(index int) error {
	if index < 0 || index >= len(m.records) {
		return fmt.Errorf("%w: index %d, %d instances", ErrIndexOutOfRange, index, len(m.records))
	}
	return m.mutate(slices.Delete(slices.Clone(m.records), index, index+1))
}

func (m *manager) RemoveRecord(r *Record) error {
	return m.Remove(slices.Index(m.records, r))
}

func (m *manager) Replace(records []*Record) error {
	if slices.Contains(records, nil) {
		return ErrNilRecord
	}
	return m.mutate(slices.Clone(records))
}

func (m *manager) Pack() error {
	length := len(m.records) * RecordScalars
	if len(m.scratch) != length {
		m.scratch = make([]float32, length)
	}
	for i, r := range m.records {
		r.packInto(m.scratch[i*RecordScalars:])
	}

	required := uint64(length) * 4
	if m.maxSize > 0 && required > m.maxSize {
		return m.capacityError(required)
	}
	if m.buf.Size() < required {
		if err := m.grow(required); err != nil {
			return err
		}
	}
	return buffer.WriteAllElements(m.buf, m.scratch)
}

// grow replaces the backing buffer with one that holds at least required bytes.
func (m *manager) grow(required uint64) error {
	size := max(m.buf.Size()*2, required)
	if m.maxSize > 0 {
		size = min(size, m.maxSize)
	}
	next, err := m.createBuffer(size)
	if err != nil {
		return err
	}

	old := m.buf
	old.Destroy()
	m.buf = next
	evicted := 0
	if m.invalidator != nil {
		evicted = m.invalidator.EvictBuffer(old.Handle().ID)
	}
	common.Logger().Debug("instance buffer grown",
		"from", old.Size(), "to", size, "required", required,
		"instances", len(m.records), "evicted", evicted)
	return nil
}

func (m *manager) Len() int {
	return len(m.records)
}

func (m *manager) Records() []*Record {
	return slices.Clone(m.records)
}

func (m *manager) Buffer() buffer.Buffer {
	return m.buf
}

func (m *manager) Capacity() uint64 {
	return m.buf.Size()
}

func (m *manager) Model() model.Model {
	return m.model
}

func (m *manager) Pipeline() pipeline.Pipeline {
	return m.pipeline
}

func (m *manager) Release() {
	if m.buf == nil || m.buf.Destroyed() {
		return
	}
	m.buf.Destroy()
	if m.invalidator != nil {
		m.invalidator.EvictBuffer(m.buf.Handle().ID)
	}
}
