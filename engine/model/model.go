package model

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
)

var (
	// ErrMissingMesh is returned when a model is created without a mesh.
	ErrMissingMesh = errors.New("model: missing mesh")

	// ErrMissingMaterial is returned when a model is created without a material.
	ErrMissingMaterial = errors.New("model: missing material")
)

// model is the implementation of the Model interface.
type model struct {
	mesh         *Mesh
	material     material.Material
	transform    common.Matrix4
	vertexBuffer buffer.Buffer
	indexBuffer  buffer.Buffer
}

// Model defines the interface for a drawable: a mesh uploaded into GPU vertex and index buffers, the material it
// is drawn with, and a mutable model transform.
type Model interface {
	// Mesh retrieves the mesh this model was built from.
	//
	// Returns:
	//   - *Mesh: the mesh
	Mesh() *Mesh

	// Material retrieves the material this model is drawn with.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Transform retrieves the row-major model transform.
	//
	// Returns:
	//   - common.Matrix4: the transform
	Transform() common.Matrix4

	// SetTransform replaces the model transform.
	//
	// Parameters:
	//   - t: the new row-major transform
	SetTransform(t common.Matrix4)

	// VertexBuffer retrieves the GPU buffer holding the flattened vertices.
	//
	// Returns:
	//   - buffer.Buffer: the vertex buffer
	VertexBuffer() buffer.Buffer

	// IndexBuffer retrieves the GPU buffer holding the uint16 indices, or nil for a non-indexed mesh.
	//
	// Returns:
	//   - buffer.Buffer: the index buffer or nil
	IndexBuffer() buffer.Buffer

	// SetX sets the x translation of the transform.
	SetX(x float32)
	// SetY sets the y translation of the transform.
	SetY(y float32)
	// SetZ sets the z translation of the transform.
	SetZ(z float32)
	// SetScaleX sets the x scale of the transform.
	SetScaleX(s float32)
	// SetScaleY sets the y scale of the transform.
	SetScaleY(s float32)
	// SetScaleZ sets the z scale of the transform.
	SetScaleZ(s float32)
	// SetScale sets the scale along every axis.
	SetScale(s float32)

	// Release destroys the vertex and index buffers.
	Release()
}

var _ Model = &model{}

// NewModel flattens the mesh against the contract and uploads it. The vertex buffer is created with Vertex and
// CopyDestination usages; an indexed mesh also gets an Index and CopyDestination buffer of little-endian uint16
// indices, zero padded to a multiple of 4 bytes.
//
// Parameters:
//   - allocator: the allocator to create GPU buffers with, usually a GraphicsFactory
//   - mesh: the mesh to upload
//   - mat: the material to draw with
//   - contract: the vertex contract the mesh is flattened against
//   - opts: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the new model
//   - error: ErrMissingMesh, ErrMissingMaterial, a vertex packing error or a buffer error
func NewModel(allocator buffer.Allocator, mesh *Mesh, mat material.Material, contract vertex.Contract, opts ...ModelBuilderOption) (Model, error) {
	if mesh == nil {
		return nil, ErrMissingMesh
	}
	if mat == nil {
		return nil, ErrMissingMaterial
	}
	m := &model{
		mesh:      mesh,
		material:  mat,
		transform: common.Identity4(),
	}
	for _, opt := range opts {
		opt(m)
	}

	data, err := vertex.Flatten(mesh.vertices, contract)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	m.vertexBuffer, err = allocator.CreateBuffer(buffer.Options{
		Label:  "model vertices",
		Usages: []buffer.Usage{buffer.UsageVertex, buffer.UsageCopyDestination},
		Size:   uint64(len(data)),
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("model: vertex buffer: %w", err)
	}

	if mesh.Indexed() {
		indexData := encodeIndices(mesh.indices)
		m.indexBuffer, err = allocator.CreateBuffer(buffer.Options{
			Label:  "model indices",
			Usages: []buffer.Usage{buffer.UsageIndex, buffer.UsageCopyDestination},
			Size:   uint64(len(indexData)),
			Data:   indexData,
		})
		if err != nil {
			m.vertexBuffer.Destroy()
			return nil, fmt.Errorf("model: index buffer: %w", err)
		}
	}
	return m, nil
}

func encodeIndices(indices []uint16) []byte {
	size := (len(indices)*2 + 3) &^ 3
	out := make([]byte, size)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(out[i*2:], idx)
	}
	return out
}

func (m *model) Mesh() *Mesh {
	return m.mesh
}

func (m *model) Material() material.Material {
	return m.material
}

func (m *model) Transform() common.Matrix4 {
	return m.transform
}

func (m *model) SetTransform(t common.Matrix4) {
	m.transform = t
}

func (m *model) VertexBuffer() buffer.Buffer {
	return m.vertexBuffer
}

func (m *model) IndexBuffer() buffer.Buffer {
	return m.indexBuffer
}

func (m *model) SetX(x float32) {
	m.transform[3] = x
}

func (m *model) SetY(y float32) {
	m.transform[7] = y
}

func (m *model) SetZ(z float32) {
	m.transform[11] = z
}

func (m *model) SetScaleX(s float32) {
	m.transform[0] = s
}

func (m *model) SetScaleY(s float32) {
	m.transform[5] = s
}

func (m *model) SetScaleZ(s float32) {
	m.transform[10] = s
}

func (m *model) SetScale(s float32) {
	m.SetScaleX(s)
	m.SetScaleY(s)
	m.SetScaleZ(s)
}

func (m *model) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy()
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
	}
}
