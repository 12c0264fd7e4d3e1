// Package stimulus loads clocked test vectors for the systolic array from
// YAML files.
//
// A file lists edges in the order they are applied. Operands are held: an
// edge that omits a or b reuses the operands of the previous edge, the same
// way a testbench toggles the clock without re-driving its inputs. Control
// grids (load_sum, sum_in, load_bias, bias) and reset are not held and
// default to false or zero.
package stimulus

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/samber/lo"
	"github.com/sarchlab/sta/array"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
	"gopkg.in/yaml.v3"
)

// File is a stimulus file.
type File struct {
	Name        string        `yaml:"name"`
	Size        int           `yaml:"size"`
	VectorWidth int           `yaml:"vector_width"`
	Policy      tensor.Policy `yaml:"policy"`
	Edges       []EdgeSpec    `yaml:"edges"`
}

// EdgeSpec describes one edge, or Repeat identical edges.
type EdgeSpec struct {
	Name     string    `yaml:"name,omitempty"`
	Reset    bool      `yaml:"reset,omitempty"`
	A        [][]int   `yaml:"a,omitempty"`
	B        [][]int   `yaml:"b,omitempty"`
	LoadSum  [][]bool  `yaml:"load_sum,omitempty"`
	SumIn    [][]int32 `yaml:"sum_in,omitempty"`
	LoadBias [][]bool  `yaml:"load_bias,omitempty"`
	Bias     [][]int32 `yaml:"bias,omitempty"`
	Repeat   int       `yaml:"repeat,omitempty"`
	Expect   [][]int32 `yaml:"expect,omitempty"`
}

// Step is one edge ready to be applied, with the output expected after it.
// Expect is nil when the file gives no expectation for the edge.
type Step struct {
	Label  string
	Edge   array.Edge
	Expect tensor.Matrix
}

// Load reads and parses a stimulus file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stimulus file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse decodes a stimulus file. Omitted size and vector width take the
// defaults; an explicit zero is rejected. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	f := &File{
		Size:        array.DefaultSize,
		VectorWidth: pe.DefaultVectorWidth,
	}
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("failed to decode stimulus: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// Save writes the file as YAML, in the form Load reads back.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode stimulus: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stimulus file: %w", err)
	}

	return nil
}

// Validate checks the configuration and the shape of every edge.
func (f *File) Validate() error {
	if f.Size <= 0 || f.VectorWidth <= 0 {
		return fmt.Errorf("%w: size %d and vector width %d must be positive",
			tensor.ErrInvalidConfig, f.Size, f.VectorWidth)
	}

	if !f.Policy.Valid() {
		return fmt.Errorf("%w: unknown policy %d",
			tensor.ErrInvalidConfig, int(f.Policy))
	}

	if len(f.Edges) == 0 {
		return fmt.Errorf("%w: stimulus has no edges", tensor.ErrInvalidConfig)
	}

	if f.Edges[0].A == nil || f.Edges[0].B == nil {
		return fmt.Errorf("%w: edge 0 must give both a and b",
			tensor.ErrShapeMismatch)
	}

	for k, e := range f.Edges {
		if err := f.validateEdge(e); err != nil {
			return fmt.Errorf("edge %d (%s): %w", k, e.Name, err)
		}
	}

	return nil
}

func (f *File) validateEdge(e EdgeSpec) error {
	if e.Repeat < 0 {
		return fmt.Errorf("%w: repeat %d must not be negative",
			tensor.ErrInvalidConfig, e.Repeat)
	}

	if e.A != nil {
		if err := checkLanes("a", e.A, f.Size, f.VectorWidth); err != nil {
			return err
		}
	}

	if e.B != nil {
		if err := checkLanes("b", e.B, f.Size, f.VectorWidth); err != nil {
			return err
		}
	}

	checks := []error{
		tensor.CheckMask("load_sum", e.LoadSum, f.Size, true),
		tensor.CheckMatrix("sum_in", e.SumIn, f.Size, true),
		tensor.CheckMask("load_bias", e.LoadBias, f.Size, true),
		tensor.CheckMatrix("bias", e.Bias, f.Size, true),
		tensor.CheckMatrix("expect", e.Expect, f.Size, true),
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	return nil
}

func checkLanes(name string, rows [][]int, n, width int) error {
	if len(rows) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d",
			tensor.ErrShapeMismatch, name, len(rows), n)
	}

	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: %s[%d] has %d lanes, want %d",
				tensor.ErrShapeMismatch, name, i, len(row), width)
		}

		for k, v := range row {
			if v < math.MinInt8 || v > math.MaxInt8 {
				return fmt.Errorf("%w: %s[%d][%d] = %d is outside the int8 range",
					tensor.ErrShapeMismatch, name, i, k, v)
			}
		}
	}

	return nil
}

// Steps expands the file into the sequence of edges to apply. Repeated edges
// carry their expectation on the last repetition only.
func (f *File) Steps() []Step {
	var (
		steps []Step
		a, b  []tensor.Vector
	)

	for k, spec := range f.Edges {
		if spec.A != nil {
			a = toVectors(spec.A)
		}

		if spec.B != nil {
			b = toVectors(spec.B)
		}

		label := spec.Name
		if label == "" {
			label = fmt.Sprintf("edge %d", k)
		}

		repeat := max(spec.Repeat, 1)
		for r := 0; r < repeat; r++ {
			s := Step{
				Label: label,
				Edge: array.Edge{
					A:        a,
					B:        b,
					LoadSum:  spec.LoadSum,
					SumIn:    spec.SumIn,
					LoadBias: spec.LoadBias,
					Bias:     spec.Bias,
					Reset:    spec.Reset,
				},
			}

			if repeat > 1 {
				s.Label = fmt.Sprintf("%s #%d", label, r+1)
			}

			if r == repeat-1 && spec.Expect != nil {
				s.Expect = spec.Expect
			}

			steps = append(steps, s)
		}
	}

	return steps
}

func toVectors(rows [][]int) []tensor.Vector {
	return lo.Map(rows, func(row []int, _ int) tensor.Vector {
		return tensor.VectorOf(row...)
	})
}
