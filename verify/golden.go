package verify

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sarchlab/sta/array"
	"github.com/sarchlab/sta/tensor"
)

// Golden is a reference model of the systolic array.
type Golden struct {
	n, width int
	policy   tensor.Policy

	acc    [][]int64
	right  [][]tensor.Vector
	bottom [][]tensor.Vector
	cycle  uint64
}

// NewGolden creates a reference model with every accumulator at zero.
func NewGolden(n, width int, policy tensor.Policy) *Golden {
	zeroGrid := func() [][]tensor.Vector {
		return lo.Times(n, func(int) []tensor.Vector {
			return lo.Times(n, func(int) tensor.Vector {
				return make(tensor.Vector, width)
			})
		})
	}

	return &Golden{
		n:      n,
		width:  width,
		policy: policy,
		acc: lo.Times(n, func(int) []int64 {
			return make([]int64, n)
		}),
		right:  zeroGrid(),
		bottom: zeroGrid(),
	}
}

// Cycle returns the number of edges replayed.
func (g *Golden) Cycle() uint64 {
	return g.cycle
}

// Output returns the expected C_out.
func (g *Golden) Output() tensor.Matrix {
	return lo.Map(g.acc, func(row []int64, _ int) []int32 {
		return lo.Map(row, func(v int64, _ int) int32 {
			return int32(v)
		})
	})
}

// Step replays one edge.
func (g *Golden) Step(e array.Edge) error {
	if len(e.A) != g.n || len(e.B) != g.n {
		return fmt.Errorf("%w: golden model expects %d operand rows",
			tensor.ErrShapeMismatch, g.n)
	}

	for i := 0; i < g.n; i++ {
		if len(e.A[i]) != g.width || len(e.B[i]) != g.width {
			return fmt.Errorf("%w: golden model expects %d lanes",
				tensor.ErrShapeMismatch, g.width)
		}
	}

	for _, err := range []error{
		tensor.CheckMask("load_sum", e.LoadSum, g.n, true),
		tensor.CheckMatrix("sum_in", e.SumIn, g.n, true),
		tensor.CheckMask("load_bias", e.LoadBias, g.n, true),
		tensor.CheckMatrix("bias", e.Bias, g.n, true),
	} {
		if err != nil {
			return err
		}
	}

	acc := lo.Times(g.n, func(int) []int64 { return make([]int64, g.n) })
	right := lo.Times(g.n, func(int) []tensor.Vector { return make([]tensor.Vector, g.n) })
	bottom := lo.Times(g.n, func(int) []tensor.Vector { return make([]tensor.Vector, g.n) })

	for i := 0; i < g.n; i++ {
		for j := 0; j < g.n; j++ {
			left, top := e.A[i], e.B[j]
			sumIn := int64(e.SumIn.At(i, j))

			if g.policy == tensor.Chained {
				if j > 0 {
					left = g.right[i][j-1]
				}

				if i > 0 {
					top = g.bottom[i-1][j]
					sumIn = g.acc[i-1][j]
				}
			}

			load := e.LoadSum.At(i, j)
			if !load && e.LoadBias.At(i, j) {
				load = true
				sumIn = int64(e.Bias.At(i, j))
			}

			switch {
			case e.Reset:
				acc[i][j] = 0
			case load:
				acc[i][j] = sumIn
			default:
				acc[i][j] = int64(int32(g.acc[i][j] + int64(dot64(left, top))))
			}

			right[i][j] = left.Clone()
			bottom[i][j] = top.Clone()
		}
	}

	g.acc, g.right, g.bottom = acc, right, bottom
	g.cycle++

	return nil
}
