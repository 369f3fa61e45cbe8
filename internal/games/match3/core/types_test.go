package core_test

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

func TestParseTileType(t *testing.T) {
	for _, tt := range core.AllTileTypes() {
		byName, ok := core.ParseTileType(tt.String())
		if !ok || byName != tt {
			t.Errorf("ParseTileType(%q) = %v, %v", tt.String(), byName, ok)
		}
		byChar, ok := core.ParseTileType(string(tt.Char()))
		if !ok || byChar != tt {
			t.Errorf("ParseTileType(%q) = %v, %v", string(tt.Char()), byChar, ok)
		}
	}

	if _, ok := core.ParseTileType("mauve"); ok {
		t.Error("expected unknown tile name to fail")
	}
}

func TestParsePalette(t *testing.T) {
	p, ok := core.ParsePalette("RGB")
	if !ok || p.String() != "RGB" {
		t.Errorf("ParsePalette(RGB) = %v, %v", p, ok)
	}
	if _, ok := core.ParsePalette("RGR"); ok {
		t.Error("duplicate palette should be rejected")
	}
	if _, ok := core.ParsePalette("RX"); ok {
		t.Error("unknown letter should be rejected")
	}
}

func TestDefaultPaletteClamps(t *testing.T) {
	if got := len(core.DefaultPalette(0)); got != 1 {
		t.Errorf("DefaultPalette(0) has %d types, want 1", got)
	}
	if got := len(core.DefaultPalette(99)); got != int(core.TileTypeCount) {
		t.Errorf("DefaultPalette(99) has %d types, want %d", got, core.TileTypeCount)
	}
}

func TestCoordSetSorted(t *testing.T) {
	s := make(core.CoordSet)
	s.Add(core.C(2, 0))
	s.Add(core.C(0, 1))
	s.Add(core.C(0, 0))
	s.Add(core.C(0, 1))

	got := s.Sorted()
	want := []core.Coord{core.C(0, 0), core.C(0, 1), core.C(2, 0)}
	if len(got) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !s.Has(core.C(2, 0)) || s.Has(core.C(1, 1)) {
		t.Error("Has() returned wrong membership")
	}
}

func TestApplyEventRejectsOutOfBounds(t *testing.T) {
	b := mustBoard(t, scenarioRows, core.DefaultRules())

	events := []core.Event{
		core.TileSwapped{A: core.C(0, 0), B: core.C(0, 9)},
		core.TilesRemoved{Coords: []core.Coord{core.C(0, 0), core.C(9, 9)}},
		core.TileFell{From: core.C(0, 5), To: core.C(0, 0)},
		core.TileSpawned{At: core.C(-1, 0), Type: core.TileRed},
	}
	for _, e := range events {
		if err := b.ApplyEvent(e); !errors.Is(err, core.ErrOutOfBounds) {
			t.Errorf("ApplyEvent(%v): expected ErrOutOfBounds, got %v", e, err)
		}
	}

	if b.FilledCount() != 16 {
		t.Error("rejected events must not modify the board")
	}
}
