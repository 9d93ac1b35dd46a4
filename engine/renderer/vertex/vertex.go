// Package vertex describes the per-vertex data a pipeline consumes: the contract a shader declares, the vertices
// a mesh provides, and the packing of one into the interleaved byte layout of the other.
package vertex

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidScalarType is returned for a ScalarType outside the declared set.
	ErrInvalidScalarType = errors.New("vertex: invalid scalar type")

	// ErrInvalidVectorSize is returned for a vector size other than 2, 3 or 4.
	ErrInvalidVectorSize = errors.New("vertex: invalid vector size")

	// ErrUnknownAttribute is returned when a vertex lacks an attribute named by a contract.
	ErrUnknownAttribute = errors.New("vertex: unknown attribute")

	// ErrVectorSizeMismatch is returned when an attribute's component count differs from its descriptor.
	ErrVectorSizeMismatch = errors.New("vertex: vector size mismatch")
)

// ScalarType is the element type of a vertex attribute.
type ScalarType int

const (
	// ScalarFloat32 is a 32-bit IEEE float.
	ScalarFloat32 ScalarType = iota
	// ScalarInt32 is a signed 32-bit integer.
	ScalarInt32
	// ScalarUint32 is an unsigned 32-bit integer.
	ScalarUint32
)

func (s ScalarType) String() string {
	switch s {
	case ScalarFloat32:
		return "float32"
	case ScalarInt32:
		return "int32"
	case ScalarUint32:
		return "uint32"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(s))
	}
}

// ScalarByteLength returns the size in bytes of one scalar of type s.
//
// Parameters:
//   - s: the scalar type
//
// Returns:
//   - int: the size in bytes, always 4 for the declared types
//   - error: ErrInvalidScalarType for undeclared values
func ScalarByteLength(s ScalarType) (int, error) {
	switch s {
	case ScalarFloat32, ScalarInt32, ScalarUint32:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidScalarType, s)
	}
}

// AttributeDescriptor declares one attribute a shader expects per vertex.
type AttributeDescriptor struct {
	Name       string
	ScalarType ScalarType
	VectorSize int
}

// ByteLength returns the number of bytes one value of this attribute occupies.
//
// Returns:
//   - int: VectorSize times the scalar byte length
//   - error: ErrInvalidScalarType or ErrInvalidVectorSize
func (d AttributeDescriptor) ByteLength() (int, error) {
	if d.VectorSize < 2 || d.VectorSize > 4 {
		return 0, fmt.Errorf("%w: attribute %q has vector size %d", ErrInvalidVectorSize, d.Name, d.VectorSize)
	}
	n, err := ScalarByteLength(d.ScalarType)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", d.Name, err)
	}
	return n * d.VectorSize, nil
}

// Contract is the ordered list of attributes a pipeline consumes. Order is significant: it fixes both the shader
// location and the byte offset of every attribute.
type Contract []AttributeDescriptor

// Equal reports whether c and o declare the same attributes in the same order.
func (c Contract) Equal(o Contract) bool {
	return slices.Equal(c, o)
}

// AttributeLayout is the resolved placement of one attribute inside an interleaved vertex.
type AttributeLayout struct {
	Location   int
	Offset     int
	Descriptor AttributeDescriptor
}

// Layout resolves each attribute of the contract to its shader location and byte offset. Locations are assigned
// in contract order starting at 0 and offsets are the running sum of the preceding attribute sizes.
//
// Parameters:
//   - c: the contract to lay out
//
// Returns:
//   - []AttributeLayout: one entry per attribute, in contract order
//   - error: an error if any descriptor is invalid
func Layout(c Contract) ([]AttributeLayout, error) {
	out := make([]AttributeLayout, len(c))
	offset := 0
	for i, d := range c {
		n, err := d.ByteLength()
		if err != nil {
			return nil, err
		}
		out[i] = AttributeLayout{Location: i, Offset: offset, Descriptor: d}
		offset += n
	}
	return out, nil
}

// Stride returns the byte length of one interleaved vertex of the contract.
//
// Parameters:
//   - c: the contract
//
// Returns:
//   - int: the stride in bytes
//   - error: an error if any descriptor is invalid
func Stride(c Contract) (int, error) {
	stride := 0
	for _, d := range c {
		n, err := d.ByteLength()
		if err != nil {
			return 0, err
		}
		stride += n
	}
	return stride, nil
}

// Attribute is one named value attached to a vertex.
type Attribute struct {
	Name       string
	Components []float64
}

// NewAttribute returns an Attribute holding a copy of components.
//
// Parameters:
//   - name: the attribute name
//   - components: the attribute values
//
// Returns:
//   - Attribute: the new attribute
func NewAttribute(name string, components ...float64) Attribute {
	return Attribute{Name: name, Components: slices.Clone(components)}
}

// AdheresTo reports whether the attribute matches the descriptor's name and vector size.
func (a Attribute) AdheresTo(d AttributeDescriptor) bool {
	return a.Name == d.Name && len(a.Components) == d.VectorSize
}

// Vertex is a set of named attributes.
type Vertex struct {
	attributes map[string]Attribute
}

// NewVertex builds a vertex from attributes. When two attributes share a name the last one wins.
//
// Parameters:
//   - attributes: the vertex attributes
//
// Returns:
//   - Vertex: the new vertex
func NewVertex(attributes ...Attribute) Vertex {
	m := make(map[string]Attribute, len(attributes))
	for _, a := range attributes {
		a.Components = slices.Clone(a.Components)
		m[a.Name] = a
	}
	return Vertex{attributes: m}
}

// Attribute returns the attribute with the given name.
//
// Parameters:
//   - name: the attribute name
//
// Returns:
//   - Attribute: the attribute
//   - error: ErrUnknownAttribute if the vertex has no such attribute
func (v Vertex) Attribute(name string) (Attribute, error) {
	a, ok := v.attributes[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return a, nil
}

// Names returns the attribute names of the vertex in sorted order.
func (v Vertex) Names() []string {
	return slices.Sorted(maps.Keys(v.attributes))
}

// AdheresTo reports whether the vertex provides every attribute of the contract with the right vector size.
// Extra attributes are allowed.
func (v Vertex) AdheresTo(c Contract) bool {
	for _, d := range c {
		a, ok := v.attributes[d.Name]
		if !ok || !a.AdheresTo(d) {
			return false
		}
	}
	return true
}
