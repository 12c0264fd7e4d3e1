// Package verify checks a systolic array against an independent reference.
//
// It has three parts:
//
//   - Golden (golden.go): a plain reference model that replays the same edge
//     rules as the array with 64-bit intermediate arithmetic and no staging
//     machinery. It is the oracle for randomized and file-driven runs.
//   - Compare (compare.go): cell-by-cell comparison of an observed output
//     matrix against an expected one.
//   - Report (report.go): collects comparison results and renders them as
//     text tables.
//
// # Usage Example
//
//	arr, _ := array.NewBuilder().Build("STA")
//	golden := verify.NewGolden(4, 4, tensor.Broadcast)
//	report := verify.NewReport("STA")
//
//	for _, e := range edges {
//	    _ = arr.Step(e)
//	    _ = golden.Step(e)
//	    report.Add(verify.Compare("edge", arr.ReadOutput(), golden.Output()))
//	}
//
//	report.WriteReport(os.Stdout)
package verify

import (
	"github.com/samber/lo"
	"github.com/sarchlab/sta/tensor"
)

// DotMatrix returns the N×N table of dot products of every row of a against
// every row of b, which is the broadcast array output after one accumulate
// edge from zero.
func DotMatrix(a, b []tensor.Vector) tensor.Matrix {
	return lo.Map(a, func(row tensor.Vector, _ int) []int32 {
		return lo.Map(b, func(col tensor.Vector, _ int) int32 {
			return dot64(row, col)
		})
	})
}

// dot64 forms the dot product in 64-bit arithmetic and truncates to 32 bits,
// which equals 32-bit wrapping arithmetic.
func dot64(a, b tensor.Vector) int32 {
	var sum int64
	for k := range a {
		sum += int64(a[k]) * int64(b[k])
	}

	return int32(sum)
}
