package verify

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/sarchlab/sta/tensor"
)

// Mismatch is one output cell that differs from its expected value.
type Mismatch struct {
	Row, Col  int
	Got, Want int32
}

func (m Mismatch) String() string {
	return fmt.Sprintf("[%d][%d] got %d, want %d", m.Row, m.Col, m.Got, m.Want)
}

// Result is the outcome of comparing one observed output with its
// expectation.
type Result struct {
	Label      string
	Got        tensor.Matrix
	Want       tensor.Matrix
	Mismatches []Mismatch
	// Diff is a human-readable structural diff, empty when the matrices
	// are equal.
	Diff string
}

// OK reports whether the observed output matched.
func (r Result) OK() bool {
	return r.Diff == "" && len(r.Mismatches) == 0
}

// Compare checks got against want cell by cell.
func Compare(label string, got, want tensor.Matrix) Result {
	r := Result{
		Label: label,
		Got:   got.Clone(),
		Want:  want.Clone(),
	}

	if got.Equal(want) {
		return r
	}

	r.Diff = cmp.Diff(want, got)

	for i := 0; i < len(want) && i < len(got); i++ {
		for j := 0; j < len(want[i]) && j < len(got[i]); j++ {
			if got[i][j] != want[i][j] {
				r.Mismatches = append(r.Mismatches, Mismatch{
					Row:  i,
					Col:  j,
					Got:  got[i][j],
					Want: want[i][j],
				})
			}
		}
	}

	return r
}
