package core

import "fmt"

// Generate fills every cell of the board so that no placement creates a
// horizontal or vertical triple at the time it is made. Cells are filled
// column by column, bottom to top, using the board's random source.
// Existing contents are overwritten.
func (b *Board) Generate() error {
	for i := range b.cells {
		b.cells[i] = Empty()
	}

	for x := range b.width {
		for y := range b.height {
			at := C(x, y)
			t, err := b.pickTile(at)
			if err != nil {
				return err
			}
			b.set(at, Tile(t))
		}
	}

	return nil
}

// pickTile chooses a tile for cell c uniformly among palette types that
// would not complete a triple with the two cells to the left or the two
// cells below.
func (b *Board) pickTile(c Coord) (TileType, error) {
	candidates := make([]TileType, 0, len(b.palette))
	for _, t := range b.palette {
		if b.pairOf(C(c.X-1, c.Y), C(c.X-2, c.Y), t) {
			continue
		}
		if b.pairOf(C(c.X, c.Y-1), C(c.X, c.Y-2), t) {
			continue
		}
		candidates = append(candidates, t)
	}

	if len(candidates) == 0 {
		return 0, fmt.Errorf("cell %v with palette %q: %w", c, b.palette.String(), ErrGenerationImpossible)
	}

	return candidates[b.rng.Intn(len(candidates))], nil
}

// pairOf reports whether both cells are in bounds, filled, and hold t.
func (b *Board) pairOf(c1, c2 Coord, t TileType) bool {
	if !b.InBounds(c1) || !b.InBounds(c2) {
		return false
	}
	a, z := b.get(c1), b.get(c2)
	return a.Filled && z.Filled && a.Type == t && z.Type == t
}

// NewGeneratedBoard creates and populates a board in one step.
func NewGeneratedBoard(width, height int, palette Palette, rng Rand, rules Rules) (*Board, error) {
	b, err := NewBoard(width, height, palette, rng, rules)
	if err != nil {
		return nil, err
	}
	if err := b.Generate(); err != nil {
		return nil, err
	}
	return b, nil
}
