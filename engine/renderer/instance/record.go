package instance

import "github.com/Carmen-Shannon/pristine-go/common"

const (
	// RecordScalars is the number of float32 scalars one packed Record occupies.
	RecordScalars = 16 + 4

	// RecordSize is the number of bytes one packed Record occupies.
	RecordSize = RecordScalars * 4

	// DefaultInitialBufferSize is the initial capacity in bytes of a manager's backing buffer.
	DefaultInitialBufferSize = 4096
)

// Record is the per-instance data of one draw.
type Record struct {
	// Transform is the row-major instance transform. It is packed transposed.
	Transform common.Matrix4
	// TextureBounds selects the region of the material texture the instance samples.
	TextureBounds common.Vector4
}

// NewRecord returns a Record with the given transform and the full texture as its bounds.
func NewRecord(transform common.Matrix4) *Record {
	return &Record{Transform: transform, TextureBounds: common.Vector4{0, 0, 1, 1}}
}

// packInto writes r into dst, which must hold at least RecordScalars values.
func (r *Record) packInto(dst []float32) {
	t := r.Transform.Transpose()
	copy(dst[:16], t[:])
	copy(dst[16:RecordScalars], r.TextureBounds[:])
}
