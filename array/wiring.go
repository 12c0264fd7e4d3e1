package array

import (
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
)

// cellInputs resolves the signals PE(i,j) samples on this edge.
func (a *Array) cellInputs(e *Edge, i, j int) pe.Inputs {
	in := pe.Inputs{
		SumIn:   e.SumIn.At(i, j),
		LoadSum: e.LoadSum.At(i, j),
		Reset:   e.Reset,
	}

	switch a.policy {
	case tensor.Broadcast:
		in.Left = e.A[i]
		in.Top = e.B[j]
	case tensor.Chained:
		in.Left = a.operandFrom(i, j, tensor.West, e.A[i])
		in.Top = a.operandFrom(i, j, tensor.North, e.B[j])

		if above, ok := a.neighbor(i, j, tensor.North); ok {
			in.SumIn = above.SumOut()
		}
	default:
		panic("invalid policy")
	}

	if !in.LoadSum && e.LoadBias.At(i, j) {
		in.LoadSum = true
		in.SumIn = e.Bias.At(i, j)
	}

	return in
}

// operandFrom returns the operand PE(i,j) receives from the given side. Cells
// on the array boundary receive the boundary value; interior cells receive the
// passthrough register their neighbor latched on the previous edge.
func (a *Array) operandFrom(
	i, j int,
	side tensor.Side,
	boundary tensor.Vector,
) tensor.Vector {
	n, ok := a.neighbor(i, j, side)
	if !ok {
		return boundary
	}

	switch side {
	case tensor.West:
		return n.RightOut()
	case tensor.North:
		return n.BottomOut()
	default:
		panic("operands only arrive from the West or the North")
	}
}

func (a *Array) neighbor(i, j int, side tensor.Side) (*pe.PE, bool) {
	di, dj := side.Offset()
	ni, nj := i+di, j+dj

	if ni < 0 || ni >= a.size || nj < 0 || nj >= a.size {
		return nil, false
	}

	return a.pes[ni][nj], true
}
