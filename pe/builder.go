package pe

import (
	"fmt"

	"github.com/sarchlab/sta/tensor"
)

// DefaultVectorWidth is the number of operand lanes in the reference
// configuration.
const DefaultVectorWidth = 4

// Builder can create new PEs.
type Builder struct {
	vectorWidth int
}

// NewBuilder returns a Builder with the reference vector width.
func NewBuilder() Builder {
	return Builder{
		vectorWidth: DefaultVectorWidth,
	}
}

// WithVectorWidth sets the number of lanes in each operand vector.
func (b Builder) WithVectorWidth(width int) Builder {
	b.vectorWidth = width
	return b
}

// Build creates a PE with a zero accumulator and zeroed passthrough
// registers.
func (b Builder) Build(name string) (*PE, error) {
	if b.vectorWidth <= 0 {
		return nil, fmt.Errorf("%w: PE %s vector width %d must be positive",
			tensor.ErrInvalidConfig, name, b.vectorWidth)
	}

	p := &PE{
		name:  name,
		width: b.vectorWidth,
		state: State{
			Right:  make(tensor.Vector, b.vectorWidth),
			Bottom: make(tensor.Vector, b.vectorWidth),
		},
	}

	return p, nil
}
