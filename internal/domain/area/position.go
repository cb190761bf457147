package area

import (
	"fmt"
	"math"
)

// Position is a point on the battlefield. The grid is laid out on X and Z;
// Y is carried through but never used for placement.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pos is shorthand for a ground-level position
func Pos(x, z float64) Position {
	return Position{X: x, Z: z}
}

// DistanceTo is the planar distance between p and o
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(o.X-p.X, o.Z-p.Z)
}

// Midpoint returns the ground-level midpoint of p and o
func (p Position) Midpoint(o Position) Position {
	return Position{X: (p.X + o.X) / 2, Z: (p.Z + o.Z) / 2}
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}

// GridCoord is an integer cell index
type GridCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}
