package core_test

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

func TestGenerateHasNoMatches(t *testing.T) {
	sizes := []struct{ w, h int }{
		{3, 3}, {4, 4}, {8, 8}, {10, 6}, {1, 12}, {12, 1},
	}

	for _, size := range sizes {
		for paletteSize := 3; paletteSize <= int(core.TileTypeCount); paletteSize++ {
			for seed := int64(1); seed <= 20; seed++ {
				palette := core.DefaultPalette(paletteSize)
				b, err := core.NewGeneratedBoard(size.w, size.h, palette, core.NewRand(seed), core.DefaultRules())
				if err != nil {
					t.Fatalf("%dx%d palette %d seed %d: %v", size.w, size.h, paletteSize, seed, err)
				}

				if b.HasMatch() {
					t.Fatalf("%dx%d palette %d seed %d: generated board has matches:\n%s",
						size.w, size.h, paletteSize, seed, b)
				}
				if b.FilledCount() != size.w*size.h {
					t.Fatalf("generated board has %d tiles, want %d", b.FilledCount(), size.w*size.h)
				}
				for x := range b.Width() {
					for y := range b.Height() {
						tile, _, _ := b.TileAt(core.C(x, y))
						if !palette.Contains(tile) {
							t.Fatalf("tile %v at (%d,%d) outside palette", tile, x, y)
						}
					}
				}
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	b1, err := core.NewGeneratedBoard(8, 8, core.DefaultPalette(5), core.NewRand(42), core.DefaultRules())
	if err != nil {
		t.Fatalf("NewGeneratedBoard failed: %v", err)
	}
	b2, err := core.NewGeneratedBoard(8, 8, core.DefaultPalette(5), core.NewRand(42), core.DefaultRules())
	if err != nil {
		t.Fatalf("NewGeneratedBoard failed: %v", err)
	}

	if !b1.Equal(b2) {
		t.Errorf("same seed produced different boards:\n%s\n---\n%s", b1, b2)
	}

	b3, _ := core.NewGeneratedBoard(8, 8, core.DefaultPalette(5), core.NewRand(43), core.DefaultRules())
	if b1.Equal(b3) {
		t.Error("different seeds produced identical boards")
	}
}

func TestGenerateOverwritesExistingTiles(t *testing.T) {
	b := mustBoard(t, []string{"RRR", "..."}, core.DefaultRules())
	if err := b.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if b.HasMatch() || b.FilledCount() != 6 {
		t.Errorf("Generate did not produce a fresh board:\n%s", b)
	}
}

func TestGenerateImpossibleWithTwoTypes(t *testing.T) {
	// Picks are indexes into the candidate list, palette order R, G.
	// Fill order is column-major, bottom to top:
	//   col 0: G R R   col 1: R G R   col 2: G G ?
	// Cell (2,2) then has R R to its left and G G below.
	rng := &scriptedRand{vals: []int{1, 0, 0, 0, 1, 0, 1, 1}}
	b, err := core.NewBoard(3, 3, core.Palette{core.TileRed, core.TileGreen}, rng, core.DefaultRules())
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}

	err = b.Generate()
	if !errors.Is(err, core.ErrGenerationImpossible) {
		t.Fatalf("expected ErrGenerationImpossible, got %v", err)
	}
}

func TestSetRandReplacesSource(t *testing.T) {
	b, err := core.NewBoard(3, 1, rgb, core.NewRand(1), core.DefaultRules())
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	b.SetRand(&scriptedRand{vals: []int{2}})

	if err := b.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// Always picking index 2: B, B, then B is excluded and 2 wraps to R.
	if got := b.Rows()[0]; got != "BBR" {
		t.Errorf("Rows() = %q, want %q", got, "BBR")
	}
}
