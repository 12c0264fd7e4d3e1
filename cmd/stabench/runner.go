package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/samber/lo"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/sta/api"
	"github.com/sarchlab/sta/array"
	"github.com/sarchlab/sta/stimulus"
	"github.com/sarchlab/sta/tensor"
	"github.com/sarchlab/sta/verify"
)

type runner struct {
	policy     *tensor.Policy
	parallel   int
	monitor    *monitoring.Monitor
	out        io.Writer
	reportPath string

	monitorStarted bool
	runs           int
}

// runAll runs every file, writes the reports, and returns a failed error if
// any check mismatched.
func (r *runner) runAll(files []*stimulus.File) error {
	var reports []*verify.Report

	for _, f := range files {
		rep, err := r.run(f)
		if err != nil {
			return err
		}

		reports = append(reports, rep)
	}

	if err := r.writeReports(reports); err != nil {
		return err
	}

	if lo.SomeBy(reports, func(rep *verify.Report) bool { return !rep.OK() }) {
		return failed{reports: reports}
	}

	return nil
}

func (r *runner) writeReports(reports []*verify.Report) error {
	if r.reportPath == "" {
		for _, rep := range reports {
			rep.WriteReport(r.out)
		}

		return nil
	}

	// A multi-file run keeps one report file per stimulus.
	for i, rep := range reports {
		path := r.reportPath
		if len(reports) > 1 {
			path = fmt.Sprintf("%s.%d", r.reportPath, i)
		}

		if err := rep.SaveReportToFile(path); err != nil {
			return err
		}
	}

	return nil
}

// run clocks one stimulus file through a fresh array and checks each edge
// against the reference model and the file's expectations.
func (r *runner) run(f *stimulus.File) (*verify.Report, error) {
	policy := f.Policy
	if r.policy != nil {
		policy = *r.policy
	}

	label := f.Name
	if label == "" {
		label = "stimulus"
	}

	// Component names must satisfy akita's naming rules. Stimulus names are
	// free text and only label the report.
	component := fmt.Sprintf("STA[%d]", r.runs)
	r.runs++

	arr, err := array.NewBuilder().
		WithSize(f.Size).
		WithVectorWidth(f.VectorWidth).
		WithPolicy(policy).
		WithParallelism(r.parallel).
		Build(component + ".Array")
	if err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build(component + ".Driver")
	driver.RegisterArray(arr)

	if r.monitor != nil {
		r.monitor.RegisterEngine(engine)
		r.monitor.RegisterComponent(driver)

		if !r.monitorStarted {
			r.monitor.StartServer()
			r.monitorStarted = true
		}
	}

	steps := f.Steps()
	golden := verify.NewGolden(f.Size, f.VectorWidth, policy)
	report := verify.NewReport(fmt.Sprintf("%s (%s)", label, policy))

	var goldenErr error

	driver.OnEdge(func(cycle uint64, out tensor.Matrix) {
		s := steps[cycle-1]

		if err := golden.Step(s.Edge); err != nil && goldenErr == nil {
			goldenErr = err
		}

		results := []verify.Result{
			verify.Compare(fmt.Sprintf("%s: reference", s.Label),
				out, golden.Output()),
		}

		if s.Expect != nil {
			results = append(results, verify.Compare(
				fmt.Sprintf("%s: expected", s.Label), out, s.Expect))
		}

		for _, res := range results {
			report.Add(res)
		}

		if !lo.EveryBy(results, verify.Result.OK) {
			slog.Debug("EdgeMismatch",
				"Stimulus", label,
				"Edge", s.Label,
				"Cycle", cycle,
			)
			array.LogState(arr)
		}
	})

	driver.Enqueue(lo.Map(steps, func(s stimulus.Step, _ int) array.Edge {
		return s.Edge
	})...)

	if err := driver.Run(); err != nil {
		return nil, err
	}

	if goldenErr != nil {
		return nil, goldenErr
	}

	return report, nil
}

// randomStimulus builds a file of random edges. Roughly one edge in eight
// resets and one cell in ten loads.
func randomStimulus(size, width, edges int, seed int64) *stimulus.File {
	rnd := rand.New(rand.NewSource(seed))

	lanes := func() [][]int {
		return lo.Times(size, func(int) []int {
			return lo.Times(width, func(int) int {
				return rnd.Intn(256) - 128
			})
		})
	}

	mask := func(p float64) [][]bool {
		return lo.Times(size, func(int) []bool {
			return lo.Times(size, func(int) bool {
				return rnd.Float64() < p
			})
		})
	}

	matrix := func() [][]int32 {
		return lo.Times(size, func(int) []int32 {
			return lo.Times(size, func(int) int32 {
				return rnd.Int31n(1<<16) - 1<<15
			})
		})
	}

	f := &stimulus.File{
		Name:        "random",
		Size:        size,
		VectorWidth: width,
		Edges: lo.Times(edges, func(k int) stimulus.EdgeSpec {
			return stimulus.EdgeSpec{
				Name:     fmt.Sprintf("random %d", k),
				Reset:    rnd.Intn(8) == 0,
				A:        lanes(),
				B:        lanes(),
				LoadSum:  mask(0.1),
				SumIn:    matrix(),
				LoadBias: mask(0.1),
				Bias:     matrix(),
			}
		}),
	}

	return f
}
