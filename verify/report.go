package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/sarchlab/sta/tensor"
)

// Report collects comparison results for one run.
type Report struct {
	Name    string
	Results []Result
}

// NewReport creates an empty report.
func NewReport(name string) *Report {
	return &Report{Name: name}
}

// Add appends a result.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Passed returns the number of matching results.
func (r *Report) Passed() int {
	return lo.CountBy(r.Results, func(res Result) bool { return res.OK() })
}

// Failed returns the number of mismatching results.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether every result matched.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// WriteReport writes a formatted report to a writer.
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%s VERIFICATION REPORT\n", strings.ToUpper(r.Name))
	fmt.Fprintln(w, separator)

	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"#", "Check", "Result", "Mismatched cells"})
	for i, res := range r.Results {
		status := "PASS"
		if !res.OK() {
			status = "FAIL"
		}

		summary.AppendRow(table.Row{i + 1, res.Label, status, len(res.Mismatches)})
	}
	fmt.Fprintln(w, summary.Render())

	for _, res := range r.Results {
		if res.OK() {
			continue
		}

		fmt.Fprintf(w, "\n%s FAILED\n", res.Label)
		for _, m := range res.Mismatches {
			fmt.Fprintf(w, "  %s\n", m)
		}

		fmt.Fprintln(w, RenderMatrix("Got", res.Got))
		fmt.Fprintln(w, RenderMatrix("Want", res.Want))

		if res.Diff != "" {
			fmt.Fprintf(w, "Diff (-want +got):\n%s\n", res.Diff)
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed\n", r.Passed(), r.Failed())
}

// SaveReportToFile saves the report to a file.
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)

	return nil
}

// RenderMatrix renders a matrix as a titled table with row and column
// indices.
func RenderMatrix(title string, m tensor.Matrix) string {
	t := table.NewWriter()
	t.SetTitle(title)

	header := table.Row{""}
	if len(m) > 0 {
		for j := range m[0] {
			header = append(header, fmt.Sprintf("C%d", j))
		}
	}
	t.AppendHeader(header)

	for i, row := range m {
		r := table.Row{fmt.Sprintf("R%d", i)}
		for _, v := range row {
			r = append(r, v)
		}
		t.AppendRow(r)
	}

	return t.Render()
}
