package core

// FindMatches returns every cell that is part of a horizontal or vertical
// run of three or more equal tiles. Each 3-window is tested independently,
// so longer runs are fully covered. Empty cells never match.
func (b *Board) FindMatches() CoordSet {
	matches := make(CoordSet)

	// Horizontal triples
	for y := range b.height {
		for x := 0; x+2 < b.width; x++ {
			b.addTriple(matches, C(x, y), C(x+1, y), C(x+2, y))
		}
	}

	// Vertical triples
	for x := range b.width {
		for y := 0; y+2 < b.height; y++ {
			b.addTriple(matches, C(x, y), C(x, y+1), C(x, y+2))
		}
	}

	return matches
}

// addTriple adds the three coordinates if they hold the same tile.
func (b *Board) addTriple(set CoordSet, c1, c2, c3 Coord) {
	a, m, z := b.get(c1), b.get(c2), b.get(c3)
	if !a.Filled || !m.Filled || !z.Filled {
		return
	}
	if a.Type != m.Type || m.Type != z.Type {
		return
	}
	set.Add(c1)
	set.Add(c2)
	set.Add(c3)
}

// HasMatch reports whether any run of three exists on the board.
func (b *Board) HasMatch() bool {
	return len(b.FindMatches()) > 0
}
