package core

import "fmt"

// Resolve runs the cascade to a fixed point: remove matches, collapse
// columns, refill, and repeat until no match remains.
// Events are returned in application order. If the pass cap is exceeded
// the events produced so far are returned with ErrResolutionDidNotTerminate.
func (b *Board) Resolve() ([]Event, error) {
	var events []Event

	for pass := 0; ; pass++ {
		matches := b.FindMatches()
		if len(matches) == 0 {
			return events, nil
		}
		if pass >= b.rules.MaxPasses {
			return events, fmt.Errorf("%w after %d passes", ErrResolutionDidNotTerminate, pass)
		}

		removed := matches.Sorted()
		for _, c := range removed {
			b.set(c, Empty())
		}
		events = append(events, TilesRemoved{Coords: removed})

		events = append(events, b.collapse()...)

		if b.rules.Refill {
			spawned, err := b.refill()
			events = append(events, spawned...)
			if err != nil {
				return events, err
			}
		}
	}
}

// collapse compacts every column downward, preserving the relative order of
// its tiles. Columns are processed left to right, tiles bottom to top.
func (b *Board) collapse() []Event {
	var events []Event

	for x := range b.width {
		write := 0
		for y := range b.height {
			from := C(x, y)
			cell := b.get(from)
			if !cell.Filled {
				continue
			}
			if y != write {
				to := C(x, write)
				b.set(to, cell)
				b.set(from, Empty())
				events = append(events, TileFell{From: from, To: to})
			}
			write++
		}
	}

	return events
}

// refill fills every empty cell using the generation rule, columns left to
// right and bottom to top within a column, so each pick sees settled
// neighbors below and to the left.
func (b *Board) refill() ([]Event, error) {
	var events []Event

	for x := range b.width {
		for y := range b.height {
			at := C(x, y)
			if b.get(at).Filled {
				continue
			}
			t, err := b.pickTile(at)
			if err != nil {
				return events, err
			}
			b.set(at, Tile(t))
			events = append(events, TileSpawned{At: at, Type: t})
		}
	}

	return events, nil
}
