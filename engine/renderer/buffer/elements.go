package buffer

import "github.com/Carmen-Shannon/pristine-go/common"

// Scalar is the set of element types that can be written into a Buffer by element index.
type Scalar interface {
	~float32 | ~int32 | ~uint32 | ~uint16 | ~uint8
}

// WriteElements overwrites count elements of b starting at element bufferElementOffset with elements of source
// starting at sourceElementOffset. Offsets are measured in elements of T, not bytes. A negative count means
// "the rest of source".
//
// Parameters:
//   - b: the destination buffer
//   - source: the typed elements to copy from
//   - bufferElementOffset: the element offset into b
//   - sourceElementOffset: the element offset into source
//   - count: the number of elements to copy, or -1 for the rest of source
//
// Returns:
//   - error: ErrOutOfBounds for invalid ranges, or an error from the backend write
func WriteElements[T Scalar](b Buffer, source []T, bufferElementOffset, sourceElementOffset, count int) error {
	size := common.SizeOf[T]()
	if count < 0 {
		count = len(source) - sourceElementOffset
	}
	return b.WriteBytes(common.SliceToBytes(source), bufferElementOffset*size, sourceElementOffset*size, count*size)
}

// WriteAllElements overwrites the start of b with every element of source.
//
// Parameters:
//   - b: the destination buffer
//   - source: the typed elements to copy from
//
// Returns:
//   - error: ErrOutOfBounds if source does not fit, or an error from the backend write
func WriteAllElements[T Scalar](b Buffer, source []T) error {
	return WriteElements(b, source, 0, 0, len(source))
}
