package vertex

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Flatten packs vertices into one interleaved byte blob in contract order. Each scalar is encoded little-endian
// according to its descriptor's scalar type, so the result is exactly len(vertices) times the contract stride.
//
// Parameters:
//   - vertices: the vertices to pack
//   - c: the contract naming which attributes to pack and in which order
//
// Returns:
//   - []byte: the packed vertex data
//   - error: ErrUnknownAttribute, ErrVectorSizeMismatch, or a descriptor error
func Flatten(vertices []Vertex, c Contract) ([]byte, error) {
	stride, err := Stride(c)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(vertices)*stride)
	for i, v := range vertices {
		for _, d := range c {
			a, err := v.Attribute(d.Name)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			if len(a.Components) != d.VectorSize {
				return nil, fmt.Errorf("%w: vertex %d attribute %q has %d components, contract expects %d",
					ErrVectorSizeMismatch, i, d.Name, len(a.Components), d.VectorSize)
			}
			for _, value := range a.Components {
				out = appendScalar(out, d.ScalarType, value)
			}
		}
	}
	return out, nil
}

func appendScalar(dst []byte, s ScalarType, value float64) []byte {
	switch s {
	case ScalarInt32:
		return binary.LittleEndian.AppendUint32(dst, uint32(int32(value)))
	case ScalarUint32:
		return binary.LittleEndian.AppendUint32(dst, uint32(value))
	default:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(value)))
	}
}
