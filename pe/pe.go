// Package pe models a single vector multiply-accumulate processing element.
//
// A PE owns one int32 accumulator and two passthrough registers. On every
// clock edge it either clears the accumulator (reset), adopts an external sum
// (load), or adds the dot product of its two operand vectors (accumulate).
// The operands are latched into the passthrough registers on every edge so
// that neighbors in a chained array see them one edge later.
package pe

import (
	"github.com/sarchlab/sta/tensor"
)

// Inputs are the signals presented to a PE for one clock edge.
type Inputs struct {
	Left    tensor.Vector
	Top     tensor.Vector
	SumIn   int32
	LoadSum bool
	Reset   bool
}

// State is the register state of a PE between two edges.
type State struct {
	Acc    int32
	Right  tensor.Vector
	Bottom tensor.Vector
}

// PE is a processing element.
type PE struct {
	name  string
	width int
	state State
}

// Name returns the name of the PE.
func (p *PE) Name() string {
	return p.name
}

// VectorWidth returns the number of lanes in each operand vector.
func (p *PE) VectorWidth() int {
	return p.width
}

// SumOut returns the accumulator value after the latest edge.
func (p *PE) SumOut() int32 {
	return p.state.Acc
}

// RightOut returns the left operand latched on the latest edge.
func (p *PE) RightOut() tensor.Vector {
	return p.state.Right.Clone()
}

// BottomOut returns the top operand latched on the latest edge.
func (p *PE) BottomOut() tensor.Vector {
	return p.state.Bottom.Clone()
}

// Snapshot returns a copy of the register state.
func (p *PE) Snapshot() State {
	return State{
		Acc:    p.state.Acc,
		Right:  p.state.Right.Clone(),
		Bottom: p.state.Bottom.Clone(),
	}
}

// Evaluate advances the PE by one clock edge.
func (p *PE) Evaluate(in Inputs) error {
	next, err := p.Prepare(in)
	if err != nil {
		return err
	}

	next.Commit()

	return nil
}

// Prepare computes the state the PE will hold after an edge with the given
// inputs, without changing the PE. The result takes effect only when
// committed, which lets an owner compute a whole grid from pre-edge state
// before publishing any of it.
func (p *PE) Prepare(in Inputs) (Pending, error) {
	if err := tensor.CheckVector(p.name+".left_in", in.Left, p.width); err != nil {
		return Pending{}, err
	}

	if err := tensor.CheckVector(p.name+".top_in", in.Top, p.width); err != nil {
		return Pending{}, err
	}

	return Pending{pe: p, next: step(p.state.Acc, in)}, nil
}

// step is the single-edge update rule. Reset dominates load, and load
// dominates accumulate. The dot product is always formed, even when it is
// discarded.
func step(acc int32, in Inputs) State {
	dot := tensor.Dot(in.Left, in.Top)

	switch {
	case in.Reset:
		acc = 0
	case in.LoadSum:
		acc = in.SumIn
	default:
		acc += dot
	}

	return State{
		Acc:    acc,
		Right:  in.Left.Clone(),
		Bottom: in.Top.Clone(),
	}
}

// Pending is a computed but not yet committed PE update.
type Pending struct {
	pe   *PE
	next State
}

// State returns the state that Commit will install.
func (p Pending) State() State {
	return p.next
}

// Commit installs the pending state into its PE. Committing a zero Pending
// does nothing.
func (p Pending) Commit() {
	if p.pe == nil {
		return
	}

	p.pe.state = p.next
}
