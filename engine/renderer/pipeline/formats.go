package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
)

// AttributeFormat is the backend-facing description of one vertex attribute.
type AttributeFormat struct {
	Location int
	Offset   int
	// Format is the vertex format name, e.g. "float32x3".
	Format string
}

// TranslateScalar maps a scalar type to the scalar name used by vertex formats.
//
// Parameters:
//   - s: the scalar type
//
// Returns:
//   - string: "float32", "sint32" or "uint32"
//   - error: vertex.ErrInvalidScalarType for undeclared values
func TranslateScalar(s vertex.ScalarType) (string, error) {
	switch s {
	case vertex.ScalarFloat32:
		return "float32", nil
	case vertex.ScalarInt32:
		return "sint32", nil
	case vertex.ScalarUint32:
		return "uint32", nil
	default:
		return "", fmt.Errorf("%w: %s", vertex.ErrInvalidScalarType, s)
	}
}

// VertexFormatName returns the vertex format name of a descriptor, formed as "<scalar>x<size>".
//
// Parameters:
//   - d: the attribute descriptor
//
// Returns:
//   - string: the format name
//   - error: a vertex error if the descriptor is invalid
func VertexFormatName(d vertex.AttributeDescriptor) (string, error) {
	if _, err := d.ByteLength(); err != nil {
		return "", err
	}
	scalar, err := TranslateScalar(d.ScalarType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sx%d", scalar, d.VectorSize), nil
}

// AttributeFormats resolves every attribute of the contract to its location, byte offset and format name.
// Offsets come from vertex.Layout, so the last offset plus its size always equals the contract stride.
//
// Parameters:
//   - c: the vertex contract
//
// Returns:
//   - []AttributeFormat: one entry per attribute, in contract order
//   - error: a vertex error if the contract is invalid
func AttributeFormats(c vertex.Contract) ([]AttributeFormat, error) {
	layout, err := vertex.Layout(c)
	if err != nil {
		return nil, err
	}
	out := make([]AttributeFormat, len(layout))
	for i, l := range layout {
		name, err := VertexFormatName(l.Descriptor)
		if err != nil {
			return nil, err
		}
		out[i] = AttributeFormat{Location: l.Location, Offset: l.Offset, Format: name}
	}
	return out, nil
}
