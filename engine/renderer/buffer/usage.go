package buffer

import "fmt"

// Usage describes how a Buffer may be used by the GPU. The set is closed; backends translate each value
// into their native bit flags.
type Usage int

const (
	// UsageStorage allows the buffer to be bound as a storage buffer.
	UsageStorage Usage = iota

	// UsageUniform allows the buffer to be bound as a uniform buffer.
	UsageUniform

	// UsageVertex allows the buffer to be bound as a vertex buffer.
	UsageVertex

	// UsageIndex allows the buffer to be bound as an index buffer.
	UsageIndex

	// UsageCopySource allows the buffer to be the source of copy operations.
	UsageCopySource

	// UsageCopyDestination allows the buffer to be the destination of copy operations, including queue writes.
	UsageCopyDestination
)

func (u Usage) String() string {
	switch u {
	case UsageStorage:
		return "Storage"
	case UsageUniform:
		return "Uniform"
	case UsageVertex:
		return "Vertex"
	case UsageIndex:
		return "Index"
	case UsageCopySource:
		return "CopySource"
	case UsageCopyDestination:
		return "CopyDestination"
	default:
		return fmt.Sprintf("Usage(%d)", int(u))
	}
}

// Valid reports whether u is one of the declared usages.
func (u Usage) Valid() bool {
	return u >= UsageStorage && u <= UsageCopyDestination
}
