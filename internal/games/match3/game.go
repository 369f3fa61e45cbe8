// Package match3 provides the match-3 tile puzzle for the terminal platform.
package match3

import (
	"errors"
	"fmt"

	platformcore "github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

// messageTicks is how long a status message stays visible (~1.5s at 60fps).
const messageTicks = 90

// Game implements the match-3 puzzle on the platform Game interface.
type Game struct {
	mode  Mode
	cfg   config.Match3Config
	level *levels.Level

	params   Params
	board    *core.Board // Authoritative state
	timeline *Timeline   // Presentation state, driven by board events

	// Screen dimensions
	screenW int
	screenH int
	tick    uint64

	// Selection state
	cursor    core.Coord
	selected  core.Coord
	hasSelect bool
	hint      *core.Move

	// Progress
	swaps     int
	lastChain int // Removal passes caused by the last swap
	bestChain int

	// Status
	gameOver bool
	paused   bool
	tooSmall bool
	message  string
	msgTicks int
	failure  error // Board could not be built

	// Journal
	journal   storage.Journal
	source    string
	sessionID string
}

// Package-level variables for config
var (
	configPath       string
	difficultyPreset config.DifficultyPreset
	levelID          string
)

// SetConfigPath sets a custom config file path.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.DifficultyPreset(preset)
}

// SetLevel selects a preset board by ID for the next Reset.
// An empty ID generates a board from the config instead.
func SetLevel(id string) {
	levelID = id
}

func init() {
	registry.Register("match3", func() registry.Game {
		return New(ModeClassic)
	})
	registry.Register("match3_strict", func() registry.Game {
		return New(ModeStrict)
	})
	registry.Register("match3_deplete", func() registry.Game {
		return New(ModeDeplete)
	})
}

// New creates a game in the given mode.
func New(mode Mode) *Game {
	return &Game{mode: mode, source: "tui"}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.mode.ID()
}

// Title returns the display name.
func (g *Game) Title() string {
	switch g.mode {
	case ModeStrict:
		return "Match-3 (Strict)"
	case ModeDeplete:
		return "Match-3 (Deplete)"
	default:
		return "Match-3"
	}
}

// AttachJournal makes the game record its sessions and swaps.
// source tags the sessions ("tui", "ssh").
func (g *Game) AttachJournal(j storage.Journal, source string) {
	g.journal = j
	if source != "" {
		g.source = source
	}
}

// Reset initializes/restarts the game with a fresh board.
func (g *Game) Reset(rc platformcore.RuntimeConfig) {
	cfg, err := config.LoadMatch3(configPath)
	if err != nil {
		cfg = config.DefaultMatch3Config()
	}
	if difficultyPreset != "" {
		config.ApplyMatch3Preset(&cfg, difficultyPreset)
	}
	g.cfg = cfg

	g.level = nil
	if levelID != "" {
		if lvl, err := levels.DefaultLoader().LoadByID(levelID); err == nil {
			g.level = &lvl
		}
	}

	params := ParamsFromConfig(cfg, g.mode, rc.Seed)
	params.Level = g.level
	g.start(params)

	g.Resize(rc.ScreenW, rc.ScreenH)
}

// start builds a board from params and clears all per-board state.
func (g *Game) start(params Params) {
	g.params = params
	g.tick = 0
	g.swaps = 0
	g.lastChain = 0
	g.bestChain = 0
	g.gameOver = false
	g.paused = false
	g.hasSelect = false
	g.hint = nil
	g.message = ""
	g.msgTicks = 0
	g.sessionID = ""
	g.failure = nil

	board, err := params.Build()
	if err != nil {
		g.failure = err
		g.board = nil
		g.timeline = nil
		g.gameOver = true
		return
	}
	g.board = board
	g.timeline = NewTimeline(board.Clone(), g.cfg.Animation)
	g.cursor = core.C(board.Width()/2, board.Height()/2)
	g.checkGameOver()
	g.beginSession()
}

// beginSession writes the session header to the journal. Journal failures
// never interrupt play; the session is simply not recorded.
func (g *Game) beginSession() {
	if g.journal == nil {
		return
	}
	id, err := g.journal.StartSession(g.params.Session(g.ID(), g.source))
	if err != nil {
		return
	}
	g.sessionID = id
}

// SessionID returns the journal ID of the current board, if recorded.
func (g *Game) SessionID() string {
	return g.sessionID
}

// Resize adapts the layout to a new screen size without touching the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	if g.board == nil {
		g.tooSmall = false
		return
	}
	minW, minH := g.minScreenSize()
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	g.tick++

	if g.msgTicks > 0 {
		g.msgTicks--
		if g.msgTicks == 0 {
			g.message = ""
		}
	}

	// Handle window size check
	if g.tooSmall || g.board == nil {
		return platformcore.StepResult{State: g.State()}
	}

	// Handle pause
	if in.Has(platformcore.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return platformcore.StepResult{State: g.State()}
	}

	// Input waits until the display has caught up with the board.
	// Select or a click finishes the running cascade at once.
	if g.timeline.Busy() {
		step := g.timeline.Update
		if in.Has(platformcore.ActionSelect) || in.Click != nil {
			step = g.timeline.Skip
		}
		if err := step(); err != nil {
			g.resync()
		}
		return platformcore.StepResult{State: g.State()}
	}

	if g.gameOver {
		return platformcore.StepResult{State: g.State()}
	}

	g.handleInput(in)

	return platformcore.StepResult{State: g.State()}
}

// handleInput processes cursor movement and selection.
func (g *Game) handleInput(in platformcore.InputFrame) {
	switch {
	case in.Has(platformcore.ActionUp):
		g.moveCursor(0, 1)
	case in.Has(platformcore.ActionDown):
		g.moveCursor(0, -1)
	case in.Has(platformcore.ActionLeft):
		g.moveCursor(-1, 0)
	case in.Has(platformcore.ActionRight):
		g.moveCursor(1, 0)
	}

	if in.Click != nil {
		if c, ok := g.cellAt(in.Click.X, in.Click.Y); ok {
			g.cursor = c
			g.selectCell(c)
		}
	}

	if in.Has(platformcore.ActionSelect) {
		g.selectCell(g.cursor)
	}

	if in.Has(platformcore.ActionCancel) {
		g.hasSelect = false
	}

	if in.Has(platformcore.ActionHint) {
		if m, ok := g.board.FindMove(); ok {
			g.hint = &m
			g.cursor = m.A
		} else {
			g.flash("No matching swap")
		}
	}
}

// moveCursor moves the cursor by (dx, dy) in board coordinates, clamped.
func (g *Game) moveCursor(dx, dy int) {
	g.cursor = core.C(
		platformcore.Clamp(g.cursor.X+dx, 0, g.board.Width()-1),
		platformcore.Clamp(g.cursor.Y+dy, 0, g.board.Height()-1),
	)
}

// selectCell implements the two-step selection: the first pick marks a
// tile, the second either swaps with it (when adjacent) or clears the
// selection. Picking the marked tile again also clears it. Empty cells
// cannot be picked.
func (g *Game) selectCell(c core.Coord) {
	if _, filled, err := g.board.TileAt(c); err != nil || !filled {
		g.hasSelect = false
		return
	}
	if !g.hasSelect {
		g.selected = c
		g.hasSelect = true
		return
	}

	first := g.selected
	g.hasSelect = false
	if first == c || !g.board.AreAdjacent(first, c) {
		return
	}
	g.trySwap(first, c)
}

// trySwap hands the swap to the board and queues the resulting events.
func (g *Game) trySwap(a, b core.Coord) {
	events, err := g.board.TrySwap(a, b)
	switch {
	case errors.Is(err, core.ErrNoMatch):
		g.flash("No match")
		return
	case errors.Is(err, core.ErrEmptyCell):
		g.flash("Empty cell")
		return
	case !Accepted(err):
		g.flash(err.Error())
		return
	case err != nil:
		g.flash("Cascade stopped")
	}

	g.swaps++
	g.hint = nil
	g.lastChain = countRemovals(events)
	g.bestChain = max(g.bestChain, g.lastChain)
	if g.lastChain > 1 {
		g.flash(fmt.Sprintf("Chain x%d!", g.lastChain))
	}

	if pushErr := g.timeline.Push(events); pushErr != nil {
		g.resync()
	}

	if g.journal != nil && g.sessionID != "" {
		//nolint:errcheck // Best-effort journal, game continues regardless
		g.journal.RecordSwap(SwapRecord(g.sessionID, g.swaps, a, b, events, g.board, err))
	}

	g.checkGameOver()
}

// resync drops any pending animation and shows the authoritative board.
func (g *Game) resync() {
	g.timeline = NewTimeline(g.board.Clone(), g.cfg.Animation)
}

// checkGameOver ends the game when no further match is possible.
func (g *Game) checkGameOver() {
	g.gameOver = Finished(g.board)
}

// flash shows a transient status message.
func (g *Game) flash(msg string) {
	g.message = msg
	g.msgTicks = messageTicks
}

// countRemovals counts removal passes in an event list.
func countRemovals(events []core.Event) int {
	n := 0
	for _, e := range events {
		if e.Kind() == core.KindRemoved {
			n++
		}
	}
	return n
}

// State returns the current game state.
func (g *Game) State() platformcore.GameState {
	return platformcore.GameState{
		Swaps:    g.swaps,
		GameOver: g.gameOver && (g.timeline == nil || !g.timeline.Busy()),
		Paused:   g.paused || g.tooSmall,
	}
}

// Board returns the authoritative board.
func (g *Game) Board() *core.Board {
	return g.board
}
