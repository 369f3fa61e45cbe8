package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Rules configures resolution behavior of a board.
type Rules struct {
	Refill      bool // Fill emptied cells after collapse
	StrictSwaps bool // Revert swaps that form no match
	MaxPasses   int  // Cap on resolution passes per interaction
}

// DefaultRules returns the standard rules: refill on, permissive swaps.
func DefaultRules() Rules {
	return Rules{
		Refill:      true,
		StrictSwaps: false,
		MaxPasses:   100,
	}
}

// Board is the authoritative match-3 grid.
// Cells are stored in row-major order: index = y*width + x, with y = 0 the
// bottom row. A Board is not safe for concurrent use.
type Board struct {
	width   int
	height  int
	palette Palette
	rules   Rules
	rng     Rand
	cells   []Cell
}

// NewBoard creates an empty board. Call Generate to populate it.
// The palette must hold at least two distinct tile types.
func NewBoard(width, height int, palette Palette, rng Rand, rules Rules) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, width, height)
	}
	if len(palette) < 2 || !palette.distinct() {
		return nil, fmt.Errorf("%w: palette %q", ErrInvalidConfig, palette.String())
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	if rules.MaxPasses < 1 {
		rules.MaxPasses = DefaultRules().MaxPasses
	}

	p := make(Palette, len(palette))
	copy(p, palette)

	return &Board{
		width:   width,
		height:  height,
		palette: p,
		rules:   rules,
		rng:     rng,
		cells:   make([]Cell, width*height),
	}, nil
}

// NewBoardFromRows creates a pre-seeded board from a textual layout.
// rows[0] is the TOP row; each rune is a tile letter (see TileType.Char)
// or '.' for an empty cell. All rows must have equal length and every tile
// must belong to the palette.
func NewBoardFromRows(rows []string, palette Palette, rng Rand, rules Rules) (*Board, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidConfig)
	}
	width := len([]rune(rows[0]))

	b, err := NewBoard(width, len(rows), palette, rng, rules)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidConfig, i, len(runes), width)
		}
		y := b.height - 1 - i
		for x, r := range runes {
			if r == '.' {
				continue
			}
			t, ok := ParseTileType(string(r))
			if !ok || !b.palette.Contains(t) {
				return nil, fmt.Errorf("%w: tile %q at %v not in palette %q", ErrInvalidConfig, r, C(x, y), b.palette.String())
			}
			b.set(C(x, y), Tile(t))
		}
	}

	return b, nil
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.height
}

// Palette returns a copy of the configured palette.
func (b *Board) Palette() Palette {
	p := make(Palette, len(b.palette))
	copy(p, b.palette)
	return p
}

// Rules returns the board's resolution rules.
func (b *Board) Rules() Rules {
	return b.rules
}

// SetRand replaces the random source used by generation and refill.
func (b *Board) SetRand(rng Rand) {
	if rng != nil {
		b.rng = rng
	}
}

// index converts a coordinate to a flat array index.
func (b *Board) index(c Coord) int {
	return c.Y*b.width + c.X
}

// InBounds returns true if the coordinate is within the grid.
func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.width && c.Y >= 0 && c.Y < b.height
}

func (b *Board) get(c Coord) Cell {
	return b.cells[b.index(c)]
}

func (b *Board) set(c Coord, cell Cell) {
	b.cells[b.index(c)] = cell
}

// Cell returns the cell at c.
func (b *Board) Cell(c Coord) (Cell, error) {
	if !b.InBounds(c) {
		return Cell{}, fmt.Errorf("cell %v: %w", c, ErrOutOfBounds)
	}
	return b.get(c), nil
}

// TileAt returns the tile at c and whether the cell is filled.
func (b *Board) TileAt(c Coord) (TileType, bool, error) {
	cell, err := b.Cell(c)
	if err != nil {
		return 0, false, err
	}
	return cell.Type, cell.Filled, nil
}

// AreAdjacent reports whether a and b share an edge (no diagonals).
func (b *Board) AreAdjacent(a, c Coord) bool {
	return a.Manhattan(c) == 1
}

// swapCells exchanges two cells without any checks.
func (b *Board) swapCells(a, c Coord) {
	ia, ic := b.index(a), b.index(c)
	b.cells[ia], b.cells[ic] = b.cells[ic], b.cells[ia]
}

// TrySwap exchanges two adjacent cells and resolves the resulting cascade.
// Validation happens before any mutation and both cells must hold a tile.
// With permissive rules the swap is kept even if it forms no match; with
// StrictSwaps such a swap is reverted and ErrNoMatch returned.
func (b *Board) TrySwap(a, c Coord) ([]Event, error) {
	if !b.InBounds(a) {
		return nil, fmt.Errorf("swap %v: %w", a, ErrOutOfBounds)
	}
	if !b.InBounds(c) {
		return nil, fmt.Errorf("swap %v: %w", c, ErrOutOfBounds)
	}
	if !b.AreAdjacent(a, c) {
		return nil, fmt.Errorf("swap %v <-> %v: %w", a, c, ErrNotAdjacent)
	}
	for _, p := range []Coord{a, c} {
		if !b.get(p).Filled {
			return nil, fmt.Errorf("swap %v: %w", p, ErrEmptyCell)
		}
	}

	b.swapCells(a, c)

	if b.rules.StrictSwaps && len(b.FindMatches()) == 0 {
		b.swapCells(a, c)
		return nil, fmt.Errorf("swap %v <-> %v: %w", a, c, ErrNoMatch)
	}

	events := []Event{TileSwapped{A: a, B: c}}
	resolved, err := b.Resolve()
	return append(events, resolved...), err
}

// Clone returns a deep copy of the board sharing the same random source.
func (b *Board) Clone() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return &Board{
		width:   b.width,
		height:  b.height,
		palette: b.Palette(),
		rules:   b.rules,
		rng:     b.rng,
		cells:   cells,
	}
}

// Equal returns true if two boards have the same dimensions and contents.
func (b *Board) Equal(other *Board) bool {
	if b.width != other.width || b.height != other.height {
		return false
	}
	for i, cell := range b.cells {
		if cell != other.cells[i] {
			return false
		}
	}
	return true
}

// FilledCount returns the number of cells holding a tile.
func (b *Board) FilledCount() int {
	count := 0
	for _, cell := range b.cells {
		if cell.Filled {
			count++
		}
	}
	return count
}

// Rows returns the board as text, top row first, '.' for empty cells.
// It is the inverse of NewBoardFromRows.
func (b *Board) Rows() []string {
	rows := make([]string, 0, b.height)
	for y := b.height - 1; y >= 0; y-- {
		var sb strings.Builder
		for x := range b.width {
			cell := b.get(C(x, y))
			if cell.Filled {
				sb.WriteRune(cell.Type.Char())
			} else {
				sb.WriteRune('.')
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// String renders the board as newline-separated rows, top row first.
func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

// Fingerprint returns a short digest of the board's dimensions and cells.
// Equal boards have equal fingerprints.
func (b *Board) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n%s", b.width, b.height, b.String())
	return hex.EncodeToString(h.Sum(nil)[:8])
}
