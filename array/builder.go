package array

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
)

// DefaultSize is the number of rows and columns in the reference
// configuration.
const DefaultSize = 4

// Builder can build systolic arrays.
type Builder struct {
	size        int
	vectorWidth int
	policy      tensor.Policy
	parallelism int
}

// NewBuilder returns a Builder for the reference 4×4 broadcast array with
// 4-lane operands.
func NewBuilder() Builder {
	return Builder{
		size:        DefaultSize,
		vectorWidth: pe.DefaultVectorWidth,
		policy:      tensor.Broadcast,
		parallelism: 1,
	}
}

// WithSize sets N, the number of rows and columns.
func (b Builder) WithSize(n int) Builder {
	b.size = n
	return b
}

// WithVectorWidth sets the number of lanes in each operand vector.
func (b Builder) WithVectorWidth(width int) Builder {
	b.vectorWidth = width
	return b
}

// WithPolicy sets the wiring policy.
func (b Builder) WithPolicy(policy tensor.Policy) Builder {
	b.policy = policy
	return b
}

// WithParallelism sets how many rows may be staged concurrently within one
// edge. Values of 0 and 1 stage the rows serially.
func (b Builder) WithParallelism(k int) Builder {
	b.parallelism = k
	return b
}

// Build creates an array with every accumulator at zero.
func (b Builder) Build(name string) (*Array, error) {
	if err := b.validate(name); err != nil {
		return nil, err
	}

	a := &Array{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		size:         b.size,
		width:        b.vectorWidth,
		policy:       b.policy,
		parallelism:  b.parallelism,
		pes:          make([][]*pe.PE, b.size),
		staged:       make([][]pe.Pending, b.size),
	}

	peBuilder := pe.NewBuilder().WithVectorWidth(b.vectorWidth)

	for i := 0; i < b.size; i++ {
		a.pes[i] = make([]*pe.PE, b.size)
		a.staged[i] = make([]pe.Pending, b.size)

		for j := 0; j < b.size; j++ {
			p, err := peBuilder.Build(fmt.Sprintf("%s.PE_%d_%d", name, i, j))
			if err != nil {
				return nil, err
			}

			a.pes[i][j] = p
		}
	}

	return a, nil
}

func (b Builder) validate(name string) error {
	if b.size <= 0 {
		return fmt.Errorf("%w: array %s size %d must be positive",
			tensor.ErrInvalidConfig, name, b.size)
	}

	if b.vectorWidth <= 0 {
		return fmt.Errorf("%w: array %s vector width %d must be positive",
			tensor.ErrInvalidConfig, name, b.vectorWidth)
	}

	if !b.policy.Valid() {
		return fmt.Errorf("%w: array %s has unknown policy %d",
			tensor.ErrInvalidConfig, name, int(b.policy))
	}

	if b.parallelism < 0 {
		return fmt.Errorf("%w: array %s parallelism %d must not be negative",
			tensor.ErrInvalidConfig, name, b.parallelism)
	}

	return nil
}
