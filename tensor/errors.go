package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when an operand or control grid does not
	// match the array size or the vector width.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidConfig is returned when a component is built with a
	// non-positive size or width, or an unknown policy.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// CheckVector verifies that v has exactly width lanes.
func CheckVector(name string, v Vector, width int) error {
	if len(v) != width {
		return fmt.Errorf("%w: %s has %d lanes, want %d",
			ErrShapeMismatch, name, len(v), width)
	}

	return nil
}

// CheckVectors verifies that vs holds n vectors of width lanes each.
func CheckVectors(name string, vs []Vector, n, width int) error {
	if len(vs) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d",
			ErrShapeMismatch, name, len(vs), n)
	}

	for i, v := range vs {
		if err := CheckVector(fmt.Sprintf("%s[%d]", name, i), v, width); err != nil {
			return err
		}
	}

	return nil
}

// CheckMask verifies that m is n×n. A nil mask is accepted when optional is
// true.
func CheckMask(name string, m Mask, n int, optional bool) error {
	if m == nil && optional {
		return nil
	}

	return checkSquare(name, len(m), func(i int) int { return len(m[i]) }, n)
}

// CheckMatrix verifies that m is n×n. A nil matrix is accepted when optional
// is true.
func CheckMatrix(name string, m Matrix, n int, optional bool) error {
	if m == nil && optional {
		return nil
	}

	return checkSquare(name, len(m), func(i int) int { return len(m[i]) }, n)
}

func checkSquare(name string, rows int, cols func(int) int, n int) error {
	if rows != n {
		return fmt.Errorf("%w: %s has %d rows, want %d",
			ErrShapeMismatch, name, rows, n)
	}

	for i := 0; i < rows; i++ {
		if c := cols(i); c != n {
			return fmt.Errorf("%w: %s[%d] has %d columns, want %d",
				ErrShapeMismatch, name, i, c, n)
		}
	}

	return nil
}
