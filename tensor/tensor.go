// Package tensor defines the data structures shared by the processing
// elements and the systolic array.
package tensor

// Vector is an ordered set of narrow signed operand lanes.
type Vector []int8

// VectorOf builds a Vector from plain integers. Values outside the int8 range
// are truncated.
func VectorOf(vals ...int) Vector {
	v := make(Vector, len(vals))
	for i, x := range vals {
		v[i] = int8(x)
	}

	return v
}

// Clone returns a copy of the vector that does not share storage.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}

	c := make(Vector, len(v))
	copy(c, v)

	return c
}

// Dot returns the sum of the lane-wise products of a and b. Lanes are
// sign-extended to int32 before multiplying and the sum wraps like int32.
// The caller guarantees len(a) == len(b).
func Dot(a, b Vector) int32 {
	var sum int32
	for k := range a {
		sum += int32(a[k]) * int32(b[k])
	}

	return sum
}

// Matrix is a square grid of wide signed accumulator values, indexed
// [row][column].
type Matrix [][]int32

// NewMatrix creates an n×n zero matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int32, n)
	}

	return m
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}

	c := make(Matrix, len(m))
	for i := range m {
		c[i] = make([]int32, len(m[i]))
		copy(c[i], m[i])
	}

	return c
}

// Equal reports whether two matrices have the same shape and values.
func (m Matrix) Equal(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}

	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}

		for j := range m[i] {
			if m[i][j] != o[i][j] {
				return false
			}
		}
	}

	return true
}

// Scale returns a new matrix with every entry multiplied by k, wrapping like
// int32.
func (m Matrix) Scale(k int32) Matrix {
	c := m.Clone()
	for i := range c {
		for j := range c[i] {
			c[i][j] *= k
		}
	}

	return c
}

// Mask is a square grid of per-cell control bits, indexed [row][column].
type Mask [][]bool

// NewMask creates an n×n mask with every bit set to value.
func NewMask(n int, value bool) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = make([]bool, n)
		for j := range m[i] {
			m[i][j] = value
		}
	}

	return m
}

// At returns m[i][j], treating a nil mask as all false.
func (m Mask) At(i, j int) bool {
	if m == nil {
		return false
	}

	return m[i][j]
}

// At returns m[i][j], treating a nil matrix as all zero.
func (m Matrix) At(i, j int) int32 {
	if m == nil {
		return 0
	}

	return m[i][j]
}
