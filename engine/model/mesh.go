package model

import (
	"slices"

	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
)

// Mesh is an immutable ordered list of vertices plus an optional triangle-list index sequence.
type Mesh struct {
	vertices []vertex.Vertex
	indices  []uint16
	indexed  bool
}

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*Mesh)

// WithIndices is an option builder that makes the Mesh indexed. An empty, non-nil slice still marks the mesh as
// indexed.
//
// Parameters:
//   - indices: the triangle-list indices into the vertex list
//
// Returns:
//   - MeshBuilderOption: a function that applies the indices option to a mesh
func WithIndices(indices []uint16) MeshBuilderOption {
	return func(m *Mesh) {
		m.indices = slices.Clone(indices)
		m.indexed = indices != nil
	}
}

// NewMesh creates a Mesh holding a copy of vertices.
//
// Parameters:
//   - vertices: the mesh vertices
//   - opts: a variadic list of MeshBuilderOption functions
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(vertices []vertex.Vertex, opts ...MeshBuilderOption) *Mesh {
	m := &Mesh{vertices: slices.Clone(vertices)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Vertices returns a copy of the mesh vertices.
func (m *Mesh) Vertices() []vertex.Vertex {
	return slices.Clone(m.vertices)
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// Indices returns a copy of the mesh indices, or nil for a non-indexed mesh.
func (m *Mesh) Indices() []uint16 {
	return slices.Clone(m.indices)
}

// IndexCount returns the number of indices in the mesh.
func (m *Mesh) IndexCount() int {
	return len(m.indices)
}

// Indexed reports whether the mesh carries an index sequence.
func (m *Mesh) Indexed() bool {
	return m.indexed
}

// AdheresTo reports whether every vertex satisfies the contract.
func (m *Mesh) AdheresTo(c vertex.Contract) bool {
	for _, v := range m.vertices {
		if !v.AdheresTo(c) {
			return false
		}
	}
	return true
}
