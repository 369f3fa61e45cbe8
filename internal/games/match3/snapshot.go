package match3

import "github.com/vovakirdan/tui-match3/internal/games/match3/core"

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StateAnimating   GameStateType = "animating"
	StatePaused      GameStateType = "paused"
	StateGameOver    GameStateType = "game_over"
	StatePausedSmall GameStateType = "paused_small_window"
	StateFailed      GameStateType = "failed"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Mode      string
	Seed      int64
	Level     string   // Preset level ID, empty for generated boards
	Rows      []string // Authoritative board, top row first
	Display   []string // Board as currently shown
	Phase     string
	Cursor    core.Coord
	Selected  *core.Coord
	Swaps     int
	LastChain int
	BestChain int
	State     GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:      g.tick,
		Mode:      g.ID(),
		Seed:      g.params.Seed,
		Cursor:    g.cursor,
		Swaps:     g.swaps,
		LastChain: g.lastChain,
		BestChain: g.bestChain,
		State:     StatePlaying,
		Phase:     PhaseNone.String(),
	}
	if g.level != nil {
		snap.Level = g.level.ID
	}
	if g.hasSelect {
		sel := g.selected
		snap.Selected = &sel
	}

	if g.board == nil {
		snap.State = StateFailed
		return snap
	}
	snap.Rows = g.board.Rows()
	snap.Display = g.timeline.Display().Rows()
	snap.Phase = g.timeline.Phase().String()

	switch {
	case g.tooSmall:
		snap.State = StatePausedSmall
	case g.paused:
		snap.State = StatePaused
	case g.timeline.Busy():
		snap.State = StateAnimating
	case g.gameOver:
		snap.State = StateGameOver
	}

	return snap
}
