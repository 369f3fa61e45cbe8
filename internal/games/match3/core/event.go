package core

import "fmt"

// EventKind tags the concrete type of an Event.
type EventKind string

const (
	KindSwapped EventKind = "swapped"
	KindRemoved EventKind = "removed"
	KindFell    EventKind = "fell"
	KindSpawned EventKind = "spawned"
)

// Event is a single state change produced by an interaction.
// The events of one interaction are ordered; applying them in order to the
// pre-interaction board yields the post-interaction board.
type Event interface {
	Kind() EventKind
	String() string
	boardEvent()
}

// TileSwapped records the exchange of two adjacent cells.
type TileSwapped struct {
	A Coord
	B Coord
}

func (TileSwapped) boardEvent() {}
func (TileSwapped) Kind() EventKind { return KindSwapped }
func (e TileSwapped) String() string { return fmt.Sprintf("swap %v <-> %v", e.A, e.B) }

// TilesRemoved records the cells cleared by one resolution pass.
// Coords are in column-major order.
type TilesRemoved struct {
	Coords []Coord
}

func (TilesRemoved) boardEvent() {}
func (TilesRemoved) Kind() EventKind { return KindRemoved }
func (e TilesRemoved) String() string {
	return fmt.Sprintf("remove %d tiles %v", len(e.Coords), e.Coords)
}

// TileFell records a tile moving down its column during collapse.
type TileFell struct {
	From Coord
	To   Coord
}

func (TileFell) boardEvent() {}
func (TileFell) Kind() EventKind { return KindFell }
func (e TileFell) String() string { return fmt.Sprintf("fall %v -> %v", e.From, e.To) }

// TileSpawned records a new tile placed by refill.
type TileSpawned struct {
	At   Coord
	Type TileType
}

func (TileSpawned) boardEvent() {}
func (TileSpawned) Kind() EventKind { return KindSpawned }
func (e TileSpawned) String() string {
	return fmt.Sprintf("spawn %s at %v", e.Type, e.At)
}

// ApplyEvent replays a single event onto the board without resolving.
// Presentation layers use it on a copy of the pre-interaction board to
// follow the engine's changes step by step.
func (b *Board) ApplyEvent(e Event) error {
	switch ev := e.(type) {
	case TileSwapped:
		if !b.InBounds(ev.A) || !b.InBounds(ev.B) {
			return fmt.Errorf("apply %v: %w", ev, ErrOutOfBounds)
		}
		b.swapCells(ev.A, ev.B)
	case TilesRemoved:
		for _, c := range ev.Coords {
			if !b.InBounds(c) {
				return fmt.Errorf("apply remove %v: %w", c, ErrOutOfBounds)
			}
		}
		for _, c := range ev.Coords {
			b.set(c, Empty())
		}
	case TileFell:
		if !b.InBounds(ev.From) || !b.InBounds(ev.To) {
			return fmt.Errorf("apply %v: %w", ev, ErrOutOfBounds)
		}
		b.set(ev.To, b.get(ev.From))
		b.set(ev.From, Empty())
	case TileSpawned:
		if !b.InBounds(ev.At) {
			return fmt.Errorf("apply %v: %w", ev, ErrOutOfBounds)
		}
		b.set(ev.At, Tile(ev.Type))
	default:
		return fmt.Errorf("apply: unknown event %T", e)
	}
	return nil
}
