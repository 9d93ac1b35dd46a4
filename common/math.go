package common

import (
	"github.com/chewxy/math32"
)

// Matrix4 is a 4x4 float32 matrix stored in row-major order, so element (row, col) lives at index row*4 + col.
// GPU uploads expect column-major data, which is what Transpose produces.
type Matrix4 [16]float32

// Vector4 is a four component float32 vector.
type Vector4 [4]float32

// Identity4 returns the 4x4 identity matrix.
//
// Returns:
//   - Matrix4: the identity matrix
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Orthographic builds an orthographic projection matrix mapping the box [left, right] x [bottom, top] x [near, far]
// into normalized device coordinates. The depth range follows the OpenGL convention of [-1, 1].
//
// Parameters:
//   - left, right: the horizontal bounds of the view volume
//   - bottom, top: the vertical bounds of the view volume
//   - near, far: the depth bounds of the view volume
//
// Returns:
//   - Matrix4: the row-major projection matrix
func Orthographic(left, right, bottom, top, near, far float32) Matrix4 {
	m := Identity4()
	m[0] = 2 / (right - left)
	m[3] = -(right + left) / (right - left)
	m[5] = 2 / (top - bottom)
	m[7] = -(top + bottom) / (top - bottom)
	m[10] = -2 / (far - near)
	m[11] = -(far + near) / (far - near)
	return m
}

// Translation returns a matrix translating by (x, y, z).
//
// Parameters:
//   - x, y, z: the translation along each axis
//
// Returns:
//   - Matrix4: the row-major translation matrix
func Translation(x, y, z float32) Matrix4 {
	m := Identity4()
	m[3], m[7], m[11] = x, y, z
	return m
}

// Scaling returns a matrix scaling by (x, y, z).
//
// Parameters:
//   - x, y, z: the scale factor along each axis
//
// Returns:
//   - Matrix4: the row-major scale matrix
func Scaling(x, y, z float32) Matrix4 {
	m := Identity4()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Transpose returns the transpose of m. The receiver is not modified.
//
// Returns:
//   - Matrix4: the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var out Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = m[row*4+col]
		}
	}
	return out
}

// Mul returns the product m * o.
//
// Parameters:
//   - o: the right-hand matrix
//
// Returns:
//   - Matrix4: the product matrix
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var out Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Data returns the flat row-major elements of m.
//
// Returns:
//   - []float32: a 16 element slice copied from m
func (m Matrix4) Data() []float32 {
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

// Components returns the flat components of v.
//
// Returns:
//   - []float32: a 4 element slice copied from v
func (v Vector4) Components() []float32 {
	return []float32{v[0], v[1], v[2], v[3]}
}

// ApproxEqual reports whether every element of a and b differs by no more than epsilon.
//
// Parameters:
//   - a, b: the matrices to compare
//   - epsilon: the maximum allowed absolute difference per element
//
// Returns:
//   - bool: true if the matrices are element-wise within epsilon
func ApproxEqual(a, b Matrix4, epsilon float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}
