package core

// Move is a pair of adjacent cells to swap.
type Move struct {
	A, B Coord
}

// FindMove returns the first swap, in column-major order of A, that would
// form a match. The board is left unchanged. ok is false when no swap on
// the board can form a match, which in deplete rules means play is over.
func (b *Board) FindMove() (m Move, ok bool) {
	for x := range b.width {
		for y := range b.height {
			a := C(x, y)
			if !b.get(a).Filled {
				continue
			}
			for _, c := range []Coord{C(x, y+1), C(x+1, y)} {
				if !b.InBounds(c) || !b.get(c).Filled || b.get(a) == b.get(c) {
					continue
				}
				b.swapCells(a, c)
				hit := b.HasMatch()
				b.swapCells(a, c)
				if hit {
					return Move{A: a, B: c}, true
				}
			}
		}
	}
	return Move{}, false
}

// Exhausted reports whether no sequence of swaps can form a match again.
// Tiles only move by swapping with a filled neighbour, so each group of
// edge-connected tiles is closed until something is removed. A group can
// still match when it spans three cells in a line and holds three tiles of
// one kind.
func (b *Board) Exhausted() bool {
	group := make([]int, len(b.cells))
	for i := range group {
		group[i] = -1
	}
	var counts []map[TileType]int
	for i, cell := range b.cells {
		if !cell.Filled || group[i] >= 0 {
			continue
		}
		id := len(counts)
		kinds := make(map[TileType]int, len(b.palette))
		group[i] = id
		stack := []Coord{C(i%b.width, i/b.width)}
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			kinds[b.get(c).Type]++
			for _, n := range c.Neighbors() {
				if !b.filled(n) || group[b.index(n)] >= 0 {
					continue
				}
				group[b.index(n)] = id
				stack = append(stack, n)
			}
		}
		counts = append(counts, kinds)
	}

	for x := range b.width {
		for y := range b.height {
			c := C(x, y)
			if !b.filled(c, C(x+1, y), C(x+2, y)) && !b.filled(c, C(x, y+1), C(x, y+2)) {
				continue
			}
			for _, n := range counts[group[b.index(c)]] {
				if n >= 3 {
					return false
				}
			}
		}
	}
	return true
}

// filled reports whether every cell is on the board and holds a tile.
func (b *Board) filled(cells ...Coord) bool {
	for _, c := range cells {
		if !b.InBounds(c) || !b.get(c).Filled {
			return false
		}
	}
	return true
}
