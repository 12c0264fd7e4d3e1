package array

import (
	"context"
	"log/slog"

	"github.com/sarchlab/sta/pe"
)

func (a *Array) traceEdge(e *Edge) {
	if !slog.Default().Enabled(context.Background(), pe.LevelTrace) {
		return
	}

	pe.Trace("Edge",
		"Array", a.name,
		"Cycle", a.cycle,
		"Policy", a.policy.Name(),
		"Reset", e.Reset,
	)

	for i := range a.pes {
		for j, p := range a.pes[i] {
			pe.Trace("PE",
				"Array", a.name,
				"Cycle", a.cycle,
				"X", j,
				"Y", i,
				"LoadSum", e.LoadSum.At(i, j),
				"LoadBias", e.LoadBias.At(i, j),
				"Sum", p.SumOut(),
			)
		}
	}
}

// LogState records every PE of the array at debug level.
func LogState(a *Array) {
	for i := range a.pes {
		for _, p := range a.pes[i] {
			pe.LogState(p)
		}
	}
}
