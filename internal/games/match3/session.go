package match3

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

// Mode selects the rule variant of a game.
type Mode string

const (
	ModeClassic Mode = "classic" // Refill on, permissive swaps
	ModeStrict  Mode = "strict"  // Non-matching swaps are reverted
	ModeDeplete Mode = "deplete" // No refill; the board only empties
)

// ID returns the registry ID of the mode.
func (m Mode) ID() string {
	switch m {
	case ModeStrict:
		return "match3_strict"
	case ModeDeplete:
		return "match3_deplete"
	default:
		return "match3"
	}
}

// ParseMode accepts a mode name ("strict") or its registry ID ("match3_strict").
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{ModeClassic, ModeStrict, ModeDeplete} {
		if s == string(m) || s == m.ID() {
			return m, true
		}
	}
	return "", false
}

// Params fully describe how a board is built. Two boards built from equal
// Params are identical and evolve identically under the same swaps.
type Params struct {
	Width   int
	Height  int
	Palette core.Palette
	Rules   core.Rules
	Seed    int64
	Level   *levels.Level // Preset layout; overrides Width, Height and Palette
}

// RulesFor returns the rules for a mode on top of the configured ones.
func RulesFor(mode Mode, cfg config.RulesConfig) core.Rules {
	rules := core.Rules{
		Refill:      cfg.Refill,
		StrictSwaps: cfg.StrictSwaps,
		MaxPasses:   cfg.MaxPasses,
	}
	switch mode {
	case ModeStrict:
		rules.StrictSwaps = true
	case ModeDeplete:
		rules.Refill = false
	}
	return rules
}

// ParamsFromConfig derives board parameters from a loaded config.
func ParamsFromConfig(cfg config.Match3Config, mode Mode, seed int64) Params {
	return Params{
		Width:   cfg.Board.Width,
		Height:  cfg.Board.Height,
		Palette: core.DefaultPalette(cfg.Board.Palette),
		Rules:   RulesFor(mode, cfg.Rules),
		Seed:    seed,
	}
}

// Build creates the board described by p.
func (p Params) Build() (*core.Board, error) {
	if p.Level != nil {
		return p.Level.NewBoard(p.Rules, p.Seed)
	}
	return core.NewGeneratedBoard(p.Width, p.Height, p.Palette, core.NewRand(p.Seed), p.Rules)
}

// Session returns the journal header for a board built from p.
func (p Params) Session(modeID, source string) storage.Session {
	sess := storage.Session{
		Mode:      modeID,
		Source:    source,
		Seed:      p.Seed,
		Width:     p.Width,
		Height:    p.Height,
		Palette:   p.Palette.String(),
		Refill:    p.Rules.Refill,
		Strict:    p.Rules.StrictSwaps,
		MaxPasses: p.Rules.MaxPasses,
	}
	if p.Level != nil {
		sess.LevelID = p.Level.ID
		sess.Width = p.Level.Width()
		sess.Height = p.Level.Height()
		sess.Palette = p.Level.Palette.String()
		if sess.Seed == 0 {
			sess.Seed = p.Level.Seed
		}
	}
	return sess
}

// ParamsFromSession rebuilds board parameters from a journal header.
// Level layouts are resolved through loader.
func ParamsFromSession(sess storage.Session, loader *levels.Loader) (Params, error) {
	palette, ok := core.ParsePalette(sess.Palette)
	if !ok {
		return Params{}, fmt.Errorf("session %s: invalid palette %q", sess.ID, sess.Palette)
	}

	p := Params{
		Width:   sess.Width,
		Height:  sess.Height,
		Palette: palette,
		Rules: core.Rules{
			Refill:      sess.Refill,
			StrictSwaps: sess.Strict,
			MaxPasses:   sess.MaxPasses,
		},
		Seed: sess.Seed,
	}

	if sess.LevelID != "" {
		if loader == nil {
			loader = levels.DefaultLoader()
		}
		lvl, err := loader.LoadByID(sess.LevelID)
		if err != nil {
			return Params{}, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		p.Level = &lvl
	}

	return p, nil
}

// SwapRecord builds the journal entry for a swap that changed the board.
func SwapRecord(sessionID string, seq int, a, b core.Coord, events []core.Event, board *core.Board, err error) storage.SwapRecord {
	rec := storage.SwapRecord{
		SessionID:   sessionID,
		Seq:         seq,
		AX:          a.X,
		AY:          a.Y,
		BX:          b.X,
		BY:          b.Y,
		Events:      len(events),
		Fingerprint: board.Fingerprint(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// Accepted reports whether a TrySwap result changed the board and belongs
// in the journal. Strict-mode rejections and invalid swaps leave the board
// untouched; a resolution that hit the pass cap still mutated it.
func Accepted(err error) bool {
	return err == nil || errors.Is(err, core.ErrResolutionDidNotTerminate)
}

// Finished reports whether no further match can be made on b.
// In strict mode only swaps that match are allowed, so the board is done
// when none exists. Permissive swaps can rearrange tiles freely, so play
// only ends once no tile kind has three tiles left.
func Finished(b *core.Board) bool {
	if b.Rules().StrictSwaps {
		_, ok := b.FindMove()
		return !ok
	}
	return b.Exhausted()
}

// ReplayStep is the outcome of re-applying one journaled swap.
type ReplayStep struct {
	Seq         int
	A, B        core.Coord
	Events      int
	Fingerprint string // Recomputed
	Expected    string // From the journal
	Err         error
}

// OK reports whether the recomputed board matches the journal.
func (s ReplayStep) OK() bool {
	return s.Fingerprint == s.Expected
}

// Replay rebuilds a session's board and re-applies its swaps, comparing
// each resulting board fingerprint with the recorded one. It returns the
// final board and one step per swap; replay stops at the first mismatch.
func Replay(p Params, swaps []storage.SwapRecord) (*core.Board, []ReplayStep, error) {
	board, err := p.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("rebuilding board: %w", err)
	}

	steps := make([]ReplayStep, 0, len(swaps))
	for _, rec := range swaps {
		a, b := core.C(rec.AX, rec.AY), core.C(rec.BX, rec.BY)
		events, swapErr := board.TrySwap(a, b)
		if !Accepted(swapErr) {
			return board, steps, fmt.Errorf("swap %d %v <-> %v: %w", rec.Seq, a, b, swapErr)
		}

		step := ReplayStep{
			Seq:         rec.Seq,
			A:           a,
			B:           b,
			Events:      len(events),
			Fingerprint: board.Fingerprint(),
			Expected:    rec.Fingerprint,
			Err:         swapErr,
		}
		steps = append(steps, step)
		if !step.OK() {
			return board, steps, fmt.Errorf("swap %d: board fingerprint %s, journal has %s", rec.Seq, step.Fingerprint, step.Expected)
		}
	}

	return board, steps, nil
}
