package tensor

// Side defines the side of a processing element or of the array boundary.
type Side int

const (
	North Side = iota
	East
	South
	West
)

// Offset returns the row and column delta from a cell to its neighbor on
// side s.
func (s Side) Offset() (di, dj int) {
	switch s {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	default:
		panic("invalid side")
	}
}
