package core

import (
	"fmt"
	"sort"
)

// Coord represents a cell position on the board.
// X increases to the right, Y increases upward: Y = 0 is the bottom row
// and tiles fall toward decreasing Y.
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns the Manhattan distance to another coordinate.
func (c Coord) Manhattan(other Coord) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Neighbors returns the four edge-adjacent coordinates. Some may lie off
// the board.
func (c Coord) Neighbors() [4]Coord {
	return [4]Coord{C(c.X, c.Y-1), C(c.X-1, c.Y), C(c.X+1, c.Y), C(c.X, c.Y+1)}
}

// CoordSet is an unordered, deduplicated set of coordinates.
type CoordSet map[Coord]struct{}

// Add inserts a coordinate into the set.
func (s CoordSet) Add(c Coord) {
	s[c] = struct{}{}
}

// Has reports whether the set contains c.
func (s CoordSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the coordinates in column-major order (X, then Y).
func (s CoordSet) Sorted() []Coord {
	coords := make([]Coord, 0, len(s))
	for c := range s {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Y < coords[j].Y
	})
	return coords
}
