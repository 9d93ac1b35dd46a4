package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranspose(t *testing.T) {
	m := Matrix4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	want := Matrix4{
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
		4, 8, 12, 16,
	}
	assert.Equal(t, want, m.Transpose())
	assert.Equal(t, m, m.Transpose().Transpose())
	assert.Equal(t, float32(2), m[1], "receiver must not be modified")
}

func TestIdentityMul(t *testing.T) {
	m := Translation(3, 4, 5).Mul(Scaling(2, 2, 2))
	assert.Equal(t, m, Identity4().Mul(m))
	assert.Equal(t, m, m.Mul(Identity4()))
	assert.Equal(t, []float32{2, 0, 0, 3, 0, 2, 0, 4, 0, 0, 2, 5, 0, 0, 0, 1}, m.Data())
}

func TestOrthographicMapsCorners(t *testing.T) {
	proj := Orthographic(0, 800, 0, 600, -1, 1)
	apply := func(x, y, z float32) (float32, float32, float32) {
		return proj[0]*x + proj[1]*y + proj[2]*z + proj[3],
			proj[4]*x + proj[5]*y + proj[6]*z + proj[7],
			proj[8]*x + proj[9]*y + proj[10]*z + proj[11]
	}

	x, y, z := apply(0, 0, 0)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)
	assert.InDelta(t, 0, z, 1e-6)

	x, y, _ = apply(800, 600, 0)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestApproxEqual(t *testing.T) {
	a := Identity4()
	b := Identity4()
	b[5] += 1e-7
	assert.True(t, ApproxEqual(a, b, 1e-6))
	b[5] += 1
	assert.False(t, ApproxEqual(a, b, 1e-6))
}

func TestVectorComponents(t *testing.T) {
	v := Vector4{1, 2, 3, 4}
	c := v.Components()
	c[0] = 99
	assert.Equal(t, float32(1), v[0])
	assert.Equal(t, []float32{99, 2, 3, 4}, c)
}

func TestNextIDIsUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := NextID()
		assert.NotZero(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
