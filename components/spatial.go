package components

// Position is a scout's continuous location in field cells.
type Position struct {
	X, Y float32
}

// Velocity is a scout's per-tick displacement before damping.
type Velocity struct {
	X, Y float32
}
