// Package api defines the driver that clocks a systolic array from an akita
// simulation engine.
package api

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/sta/array"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
)

// Array is the part of a systolic array that the driver clocks.
type Array interface {
	Name() string
	Size() int
	VectorWidth() int
	Step(e array.Edge) error
	ReadOutput() tensor.Matrix
}

// EdgeCallback is called after every edge the driver evaluates, with the
// driver-local edge count and a copy of the array output.
type EdgeCallback func(cycle uint64, out tensor.Matrix)

// Driver feeds queued edges into an array, one edge per tick.
type Driver interface {
	sim.Component

	// RegisterArray sets the array that the driver clocks.
	RegisterArray(a Array)

	// Enqueue appends edges to the stimulus queue.
	Enqueue(edges ...array.Edge)

	// OnEdge registers a callback that observes every evaluated edge.
	OnEdge(cb EdgeCallback)

	// Outputs returns a copy of the array output recorded after each
	// evaluated edge.
	Outputs() []tensor.Matrix

	// Run ticks the driver until the queue is drained or an edge fails.
	Run() error
}

type driverImpl struct {
	*sim.TickingComponent

	array     Array
	queue     []array.Edge
	outputs   []tensor.Matrix
	callbacks []EdgeCallback
	cycle     uint64
	err       error
}

// Tick evaluates one queued edge.
func (d *driverImpl) Tick() (madeProgress bool) {
	if d.err != nil || len(d.queue) == 0 {
		return false
	}

	if d.array == nil {
		d.err = fmt.Errorf("driver %s has no array registered", d.Name())
		return false
	}

	e := d.queue[0]
	d.queue = d.queue[1:]

	if err := d.array.Step(e); err != nil {
		d.err = fmt.Errorf("driver %s edge %d: %w", d.Name(), d.cycle+1, err)
		pe.Trace("Driver",
			"Behavior", "EdgeFailed",
			"Cycle", d.cycle+1,
			"Error", err.Error(),
		)

		return false
	}

	d.cycle++

	out := d.array.ReadOutput()
	d.outputs = append(d.outputs, out)

	for _, cb := range d.callbacks {
		cb(d.cycle, out.Clone())
	}

	pe.Trace("Driver",
		"Behavior", "Edge",
		"Array", d.array.Name(),
		"Cycle", d.cycle,
		"Reset", e.Reset,
		"Pending", len(d.queue),
	)

	return true
}

// RegisterArray sets the array that the driver clocks.
func (d *driverImpl) RegisterArray(a Array) {
	d.array = a
}

// Enqueue appends edges to the stimulus queue.
func (d *driverImpl) Enqueue(edges ...array.Edge) {
	d.queue = append(d.queue, edges...)
}

// OnEdge registers a callback that observes every evaluated edge.
func (d *driverImpl) OnEdge(cb EdgeCallback) {
	d.callbacks = append(d.callbacks, cb)
}

// Outputs returns the array output recorded after each evaluated edge.
func (d *driverImpl) Outputs() []tensor.Matrix {
	out := make([]tensor.Matrix, len(d.outputs))
	for i, m := range d.outputs {
		out[i] = m.Clone()
	}

	return out
}

// Run runs all the queued edges.
func (d *driverImpl) Run() error {
	d.TickNow()

	if err := d.Engine.Run(); err != nil {
		return err
	}

	return d.err
}
