// Package array models an N×N systolic grid of processing elements.
//
// The array is driven one clock edge at a time. On each edge it resolves the
// inputs of every PE according to its wiring policy, computes every PE's next
// state from the pre-edge state of the whole grid, and only then commits the
// new state. No PE observes another PE's post-edge value within the same
// edge.
package array

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
	"golang.org/x/sync/errgroup"
)

// HookPosEdgeDone marks the point right after an edge has been committed.
// The hook item is an EdgeRecord.
var HookPosEdgeDone = &sim.HookPos{Name: "EdgeDone"}

// Edge holds every input the array samples on one clock edge.
type Edge struct {
	// A holds N row vectors of the left operand matrix.
	A []tensor.Vector
	// B holds N row vectors of the right operand matrix, pre-transposed so
	// that B[j] is column j of the conceptual right-hand matrix.
	B []tensor.Vector

	LoadSum tensor.Mask
	// SumIn is the value a cell adopts when it loads. Under the chained
	// policy only row 0 reads it; lower rows take the sum of the cell above.
	SumIn tensor.Matrix

	// LoadBias makes a cell load Bias[i][j] when LoadSum is not asserted for
	// that cell.
	LoadBias tensor.Mask
	Bias     tensor.Matrix

	Reset bool
}

// EdgeRecord describes a committed edge to hooks.
type EdgeRecord struct {
	Cycle  uint64
	Reset  bool
	Output tensor.Matrix
}

// Array is a systolic tensor array.
type Array struct {
	*sim.HookableBase

	name        string
	size        int
	width       int
	policy      tensor.Policy
	parallelism int

	pes    [][]*pe.PE
	staged [][]pe.Pending
	cycle  uint64
}

// Name returns the name of the array.
func (a *Array) Name() string {
	return a.name
}

// Size returns N.
func (a *Array) Size() int {
	return a.size
}

// VectorWidth returns the number of lanes in each operand vector.
func (a *Array) VectorWidth() int {
	return a.width
}

// Policy returns the wiring policy.
func (a *Array) Policy() tensor.Policy {
	return a.policy
}

// Cycle returns the number of edges evaluated so far.
func (a *Array) Cycle() uint64 {
	return a.cycle
}

// Cell returns a copy of the register state of PE(i,j).
func (a *Array) Cell(i, j int) pe.State {
	return a.pes[i][j].Snapshot()
}

// ReadOutput returns C_out, where entry (i,j) is the accumulator of PE(i,j).
// The returned matrix is a copy.
func (a *Array) ReadOutput() tensor.Matrix {
	out := tensor.NewMatrix(a.size)
	for i := range a.pes {
		for j, p := range a.pes[i] {
			out[i][j] = p.SumOut()
		}
	}

	return out
}

// Evaluate advances the array by one edge with the reference control set:
// operands, a per-cell load mask and the array-wide reset. Loading cells adopt
// zero under the broadcast policy.
func (a *Array) Evaluate(
	aIn, bIn []tensor.Vector,
	loadSum tensor.Mask,
	reset bool,
) error {
	if err := tensor.CheckMask("load_sum", loadSum, a.size, false); err != nil {
		return err
	}

	return a.Step(Edge{
		A:       aIn,
		B:       bIn,
		LoadSum: loadSum,
		Reset:   reset,
	})
}

// Step advances the array by one edge. Nil control grids mean all false or
// all zero. On error the array is left unchanged.
func (a *Array) Step(e Edge) error {
	if err := a.checkEdge(&e); err != nil {
		return err
	}

	if err := a.stage(&e); err != nil {
		return err
	}

	a.commit()
	a.cycle++

	a.traceEdge(&e)

	if a.NumHooks() > 0 {
		a.InvokeHook(sim.HookCtx{
			Domain: a,
			Pos:    HookPosEdgeDone,
			Item: EdgeRecord{
				Cycle:  a.cycle,
				Reset:  e.Reset,
				Output: a.ReadOutput(),
			},
		})
	}

	return nil
}

func (a *Array) checkEdge(e *Edge) error {
	if err := tensor.CheckVectors("A_in", e.A, a.size, a.width); err != nil {
		return err
	}

	if err := tensor.CheckVectors("B_in", e.B, a.size, a.width); err != nil {
		return err
	}

	if err := tensor.CheckMask("load_sum", e.LoadSum, a.size, true); err != nil {
		return err
	}

	if err := tensor.CheckMatrix("sum_in", e.SumIn, a.size, true); err != nil {
		return err
	}

	if err := tensor.CheckMask("load_bias", e.LoadBias, a.size, true); err != nil {
		return err
	}

	return tensor.CheckMatrix("bias", e.Bias, a.size, true)
}

// stage computes the next state of every PE into the staging buffer. Nothing
// is committed here, so every PE reads pre-edge state only. On error the
// staging buffer is emptied.
func (a *Array) stage(e *Edge) error {
	var err error
	if a.parallelism <= 1 {
		err = a.stageSerial(e)
	} else {
		err = a.stageParallel(e)
	}

	if err != nil {
		a.discard()
	}

	return err
}

func (a *Array) stageSerial(e *Edge) error {
	for i := 0; i < a.size; i++ {
		if err := a.stageRow(e, i); err != nil {
			return err
		}
	}

	return nil
}

func (a *Array) stageParallel(e *Edge) error {
	var g errgroup.Group
	g.SetLimit(a.parallelism)

	for i := 0; i < a.size; i++ {
		row := i
		g.Go(func() error {
			return a.stageRow(e, row)
		})
	}

	return g.Wait()
}

func (a *Array) stageRow(e *Edge, i int) error {
	for j := 0; j < a.size; j++ {
		next, err := a.pes[i][j].Prepare(a.cellInputs(e, i, j))
		if err != nil {
			return err
		}

		a.staged[i][j] = next
	}

	return nil
}

func (a *Array) commit() {
	for i := range a.staged {
		for j := range a.staged[i] {
			a.staged[i][j].Commit()
		}
	}

	a.discard()
}

// discard drops every staged state.
func (a *Array) discard() {
	for i := range a.staged {
		for j := range a.staged[i] {
			a.staged[i][j] = pe.Pending{}
		}
	}
}
