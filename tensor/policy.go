package tensor

import (
	"fmt"
	"strings"
)

// Policy selects how the array routes operands and partial sums to its
// processing elements.
type Policy int

const (
	// Broadcast drives every PE(i,j) directly from row i of A and row j of B.
	// Every cell is independent and the full output is valid one edge after
	// the operands are presented.
	Broadcast Policy = iota

	// Chained drives only the West column from A and the North row from B.
	// Interior cells take operands from their neighbors' passthrough registers
	// and partial sums from the cell above, one edge later.
	Chained
)

// Name returns the lower-case name of the policy.
func (p Policy) Name() string {
	switch p {
	case Broadcast:
		return "broadcast"
	case Chained:
		return "chained"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	return p.Name()
}

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == Broadcast || p == Chained
}

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "broadcast":
		return Broadcast, nil
	case "chained", "chain", "propagate":
		return Chained, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, name)
	}
}

// Set implements the flag value interface so that a Policy can be bound to a
// command line flag.
func (p *Policy) Set(name string) error {
	parsed, err := ParsePolicy(name)
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// Type returns the flag type name.
func (p *Policy) Type() string {
	return "policy"
}

// UnmarshalText lets text decoders, including YAML, read a Policy by name.
func (p *Policy) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}

// MarshalText writes the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: unknown policy %d", ErrInvalidConfig, int(p))
	}

	return []byte(p.Name()), nil
}
