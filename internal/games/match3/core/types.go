// Package core provides the board simulation engine for the match-3 game.
// This package is UI-agnostic and deterministic for a given random source.
package core

import "strings"

// TileType identifies the kind of a tile.
type TileType uint8

const (
	TileRed TileType = iota
	TileGreen
	TileBlue
	TileYellow
	TilePurple
	TileOrange
	TileCyan
	TileTypeCount // Sentinel value for iteration
)

// String returns the string representation of a tile type.
func (t TileType) String() string {
	switch t {
	case TileRed:
		return "red"
	case TileGreen:
		return "green"
	case TileBlue:
		return "blue"
	case TileYellow:
		return "yellow"
	case TilePurple:
		return "purple"
	case TileOrange:
		return "orange"
	case TileCyan:
		return "cyan"
	default:
		return "unknown"
	}
}

// Char returns a single character representation for ASCII rendering.
func (t TileType) Char() rune {
	switch t {
	case TileRed:
		return 'R'
	case TileGreen:
		return 'G'
	case TileBlue:
		return 'B'
	case TileYellow:
		return 'Y'
	case TilePurple:
		return 'P'
	case TileOrange:
		return 'O'
	case TileCyan:
		return 'C'
	default:
		return '?'
	}
}

// ParseTileType converts a name or single-letter code to a TileType.
// Returns TileRed and false if the string is not recognized.
func ParseTileType(s string) (TileType, bool) {
	switch strings.ToLower(s) {
	case "red", "r":
		return TileRed, true
	case "green", "g":
		return TileGreen, true
	case "blue", "b":
		return TileBlue, true
	case "yellow", "y":
		return TileYellow, true
	case "purple", "p":
		return TilePurple, true
	case "orange", "o":
		return TileOrange, true
	case "cyan", "c":
		return TileCyan, true
	default:
		return TileRed, false
	}
}

// AllTileTypes returns every known tile type in declaration order.
func AllTileTypes() []TileType {
	types := make([]TileType, 0, TileTypeCount)
	for t := range TileTypeCount {
		types = append(types, t)
	}
	return types
}

// Palette is the set of tile types configured for a board.
type Palette []TileType

// DefaultPalette returns the first n tile types.
// n is clamped to [1, TileTypeCount].
func DefaultPalette(n int) Palette {
	if n < 1 {
		n = 1
	}
	if n > int(TileTypeCount) {
		n = int(TileTypeCount)
	}
	return Palette(AllTileTypes()[:n])
}

// Contains reports whether t belongs to the palette.
func (p Palette) Contains(t TileType) bool {
	for _, pt := range p {
		if pt == t {
			return true
		}
	}
	return false
}

// distinct reports whether every palette entry is a known, unique type.
func (p Palette) distinct() bool {
	seen := make(map[TileType]bool, len(p))
	for _, t := range p {
		if t >= TileTypeCount || seen[t] {
			return false
		}
		seen[t] = true
	}
	return true
}

// String returns the palette as a compact letter string, e.g. "RGB".
func (p Palette) String() string {
	var sb strings.Builder
	for _, t := range p {
		sb.WriteRune(t.Char())
	}
	return sb.String()
}

// ParsePalette parses a letter string such as "RGBY" into a Palette.
func ParsePalette(s string) (Palette, bool) {
	p := make(Palette, 0, len(s))
	for _, r := range s {
		t, ok := ParseTileType(string(r))
		if !ok {
			return nil, false
		}
		p = append(p, t)
	}
	return p, p.distinct()
}

// Cell is a single grid cell: either empty or holding exactly one tile.
type Cell struct {
	Filled bool     // Whether the cell holds a tile
	Type   TileType // Valid only when Filled is true
}

// Empty returns an empty cell.
func Empty() Cell {
	return Cell{}
}

// Tile returns a cell holding the given tile type.
func Tile(t TileType) Cell {
	return Cell{Filled: true, Type: t}
}
