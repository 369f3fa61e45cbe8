package match3

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	platformcore "github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

const testConfig = `
board:
  width: 6
  height: 6
  palette: 4
animation:
  swap_ticks: 2
  remove_ticks: 2
  fall_ticks: 2
  spawn_ticks: 2
`

// setup isolates the config and level search paths and resets package
// settings when the test ends.
func setup(t *testing.T, level string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "match3.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	SetConfigPath(path)
	SetLevel(level)
	t.Cleanup(func() {
		SetConfigPath("")
		SetLevel("")
		SetDifficultyPreset("")
	})
}

func newGame(t *testing.T, mode Mode, seed int64) *Game {
	t.Helper()
	g := New(mode)
	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: seed})
	if g.failure != nil {
		t.Fatalf("Reset failed: %v", g.failure)
	}
	return g
}

func step(g *Game, actions ...platformcore.Action) platformcore.StepResult {
	in := platformcore.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

// settle steps until the animation queue drains.
func settle(t *testing.T, g *Game) {
	t.Helper()
	for i := 0; g.timeline.Busy(); i++ {
		if i > 10000 {
			t.Fatal("animation never finished")
		}
		step(g)
	}
}

// swapBottomPair drives the cursor on the cascade level to swap (1,0) with (1,1).
func swapBottomPair(g *Game) {
	step(g, platformcore.ActionLeft)
	step(g, platformcore.ActionDown)
	step(g, platformcore.ActionDown)
	step(g, platformcore.ActionSelect)
	step(g, platformcore.ActionUp)
	step(g, platformcore.ActionSelect)
}

func TestRegisteredModes(t *testing.T) {
	tests := []struct {
		id     string
		strict bool
		refill bool
	}{
		{"match3", false, true},
		{"match3_strict", true, true},
		{"match3_deplete", false, false},
	}

	setup(t, "")
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rg, err := registry.Create(tt.id)
			if err != nil {
				t.Fatalf("Create(%s) failed: %v", tt.id, err)
			}
			g := rg.(*Game)
			if g.ID() != tt.id {
				t.Errorf("ID() = %s, want %s", g.ID(), tt.id)
			}
			g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 1})
			rules := g.Board().Rules()
			if rules.StrictSwaps != tt.strict || rules.Refill != tt.refill {
				t.Errorf("rules = %+v", rules)
			}
		})
	}
}

func TestResetUsesConfig(t *testing.T) {
	setup(t, "")
	g := newGame(t, ModeClassic, 42)

	b := g.Board()
	if b.Width() != 6 || b.Height() != 6 || len(b.Palette()) != 4 {
		t.Errorf("board %dx%d with %d kinds, want 6x6 with 4", b.Width(), b.Height(), len(b.Palette()))
	}
	if b.HasMatch() {
		t.Error("generated board should not start with a match")
	}
	if !g.timeline.Display().Equal(b) {
		t.Error("display should start equal to the board")
	}
	if g.State().GameOver || g.State().Swaps != 0 {
		t.Errorf("unexpected initial state %+v", g.State())
	}
}

func TestDifficultyPresetChangesPalette(t *testing.T) {
	setup(t, "")
	SetDifficultyPreset("hard")

	g := newGame(t, ModeClassic, 1)
	if n := len(g.Board().Palette()); n != 6 {
		t.Errorf("hard preset should use 6 kinds, got %d", n)
	}
}

func TestTwoClickSwapResolvesAndAnimates(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	before := g.Board().Rows()
	swapBottomPair(g)

	if g.State().Swaps != 1 {
		t.Fatalf("expected 1 swap, got %d", g.State().Swaps)
	}
	if g.lastChain < 1 {
		t.Errorf("expected at least one removal pass, got %d", g.lastChain)
	}
	if slices.Equal(g.Board().Rows(), before) {
		t.Error("board should change after a matching swap")
	}
	if !g.timeline.Busy() {
		t.Fatal("events should be playing")
	}
	if g.timeline.Phase() != PhaseSwap {
		t.Errorf("first phase = %v, want swap", g.timeline.Phase())
	}

	// Input is ignored while animating
	cursor := g.cursor
	step(g, platformcore.ActionRight)
	if g.cursor != cursor {
		t.Error("cursor moved during animation")
	}

	settle(t, g)
	if !g.timeline.Display().Equal(g.Board()) {
		t.Errorf("display %v differs from board %v", g.timeline.Display().Rows(), g.Board().Rows())
	}
	if g.Board().HasMatch() {
		t.Error("board should be resolved")
	}
	if g.Board().FilledCount() != 25 {
		t.Errorf("classic mode should refill, %d filled", g.Board().FilledCount())
	}
}

func TestStrictRejectsNonMatchingSwap(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeStrict, 0)
	before := g.Board().Rows()

	// (0,0) <-> (1,0) forms nothing
	g.cursor = core.C(0, 0)
	step(g, platformcore.ActionSelect)
	step(g, platformcore.ActionRight)
	step(g, platformcore.ActionSelect)

	if g.State().Swaps != 0 {
		t.Errorf("rejected swap counted: %d", g.State().Swaps)
	}
	if !slices.Equal(g.Board().Rows(), before) {
		t.Error("rejected swap changed the board")
	}
	if g.message != "No match" {
		t.Errorf("message = %q, want %q", g.message, "No match")
	}
	if g.timeline.Busy() {
		t.Error("rejected swap should not animate")
	}
}

func TestSelectionRules(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	// Same cell twice clears the selection
	g.cursor = core.C(0, 0)
	step(g, platformcore.ActionSelect)
	if !g.hasSelect {
		t.Fatal("first pick should select")
	}
	step(g, platformcore.ActionSelect)
	if g.hasSelect {
		t.Error("picking the selected tile again should clear it")
	}

	// Non-adjacent second pick clears the selection without swapping
	step(g, platformcore.ActionSelect)
	g.cursor = core.C(2, 2)
	step(g, platformcore.ActionSelect)
	if g.hasSelect || g.State().Swaps != 0 {
		t.Errorf("non-adjacent pick: selected=%v swaps=%d", g.hasSelect, g.State().Swaps)
	}

	// Cancel drops a selection
	step(g, platformcore.ActionSelect)
	step(g, platformcore.ActionCancel)
	if g.hasSelect {
		t.Error("cancel should clear the selection")
	}
}

func TestCursorClamped(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	for range 10 {
		step(g, platformcore.ActionLeft)
		step(g, platformcore.ActionDown)
	}
	if g.cursor != core.C(0, 0) {
		t.Errorf("cursor = %v, want (0,0)", g.cursor)
	}
	for range 10 {
		step(g, platformcore.ActionRight)
		step(g, platformcore.ActionUp)
	}
	if g.cursor != core.C(4, 4) {
		t.Errorf("cursor = %v, want (4,4)", g.cursor)
	}
}

func TestMouseClickSwap(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	click := func(c core.Coord) {
		sx, sy := g.cellOrigin(c)
		in := platformcore.NewInputFrame()
		in.SetClick(sx+1, sy)
		g.Step(in)
	}

	click(core.C(1, 0))
	click(core.C(1, 1))
	if g.State().Swaps != 1 {
		t.Errorf("click swap not applied, swaps = %d", g.State().Swaps)
	}

	// Clicks outside the board are ignored
	settle(t, g)
	in := platformcore.NewInputFrame()
	in.SetClick(0, 0)
	g.Step(in)
	if g.hasSelect {
		t.Error("click outside the board should not select")
	}
}

func TestCellAtRoundTrip(t *testing.T) {
	setup(t, "")
	g := newGame(t, ModeClassic, 3)

	for x := range g.Board().Width() {
		for y := range g.Board().Height() {
			c := core.C(x, y)
			sx, sy := g.cellOrigin(c)
			for dx := range cellWidth {
				got, ok := g.cellAt(sx+dx, sy)
				if !ok || got != c {
					t.Fatalf("cellAt(%d,%d) = %v, %v; want %v", sx+dx, sy, got, ok, c)
				}
			}
		}
	}

	// Row 0 is drawn lowest
	_, bottom := g.cellOrigin(core.C(0, 0))
	_, top := g.cellOrigin(core.C(0, g.Board().Height()-1))
	if bottom <= top {
		t.Errorf("bottom row at screen y=%d should be below top row at y=%d", bottom, top)
	}
}

func TestHint(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeStrict, 0)

	step(g, platformcore.ActionHint)
	if g.hint == nil {
		t.Fatal("expected a hint on the cascade level")
	}
	if g.cursor != g.hint.A {
		t.Error("hint should move the cursor to the first tile")
	}

	hint := *g.hint
	step(g, platformcore.ActionSelect)
	g.cursor = hint.B
	step(g, platformcore.ActionSelect)
	if g.State().Swaps != 1 {
		t.Errorf("hinted swap rejected in strict mode")
	}
	if g.hint != nil {
		t.Error("hint should clear after a swap")
	}
}

// writeUserLevel stores a level in the user's level directory.
func writeUserLevel(t *testing.T, id, data string) {
	t.Helper()
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".match3", "levels")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".yaml"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyCellCannotBeSelected(t *testing.T) {
	setup(t, "holes")
	writeUserLevel(t, "holes", "id: holes\npalette: RGB\nrows:\n  - R...\n  - GR..\n  - BGBR\n")

	g := newGame(t, ModeDeplete, 0)
	before := g.Board().Rows()

	g.cursor = core.C(2, 1)
	step(g, platformcore.ActionSelect)
	if g.hasSelect {
		t.Fatal("an empty cell should not be selectable")
	}

	// A tile picked first cannot be swapped into the hole next to it
	g.cursor = core.C(1, 1)
	step(g, platformcore.ActionSelect)
	if !g.hasSelect {
		t.Fatal("a tile should be selectable")
	}
	step(g, platformcore.ActionRight)
	step(g, platformcore.ActionSelect)

	if g.hasSelect || g.State().Swaps != 0 {
		t.Errorf("pick on a hole: selected=%v swaps=%d", g.hasSelect, g.State().Swaps)
	}
	if !slices.Equal(g.Board().Rows(), before) {
		t.Errorf("rows = %v, want %v", g.Board().Rows(), before)
	}
	if g.timeline.Busy() {
		t.Error("nothing should animate")
	}
}

func TestSelectSkipsAnimation(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	swapBottomPair(g)
	if !g.timeline.Busy() {
		t.Fatal("events should be playing")
	}

	step(g, platformcore.ActionSelect)
	if g.timeline.Busy() {
		t.Error("select should finish the cascade")
	}
	if !g.timeline.Display().Equal(g.Board()) {
		t.Errorf("display %v differs from board %v", g.timeline.Display().Rows(), g.Board().Rows())
	}
	if g.hasSelect {
		t.Error("the skipping keypress should not select a tile")
	}
}

func TestDepleteGameOver(t *testing.T) {
	setup(t, "tiny")
	writeUserLevel(t, "tiny", "id: tiny\npalette: RG\nrows:\n  - RRGR\n")

	g := newGame(t, ModeDeplete, 0)
	if g.State().GameOver {
		t.Fatal("three reds left, game should not be over")
	}

	g.cursor = core.C(2, 0)
	step(g, platformcore.ActionSelect)
	step(g, platformcore.ActionRight)
	step(g, platformcore.ActionSelect)

	if got := g.Board().Rows(); !slices.Equal(got, []string{"...G"}) {
		t.Fatalf("rows = %v, want [...G]", got)
	}
	if g.State().GameOver {
		t.Error("game over should wait for the animation")
	}
	settle(t, g)
	if !g.State().GameOver {
		t.Error("one tile left, game should be over")
	}
	if g.Snapshot().State != StateGameOver {
		t.Errorf("snapshot state = %s", g.Snapshot().State)
	}
}

func TestPauseFreezesInput(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)

	step(g, platformcore.ActionPause)
	if !g.State().Paused {
		t.Fatal("expected paused")
	}
	cursor := g.cursor
	step(g, platformcore.ActionLeft)
	if g.cursor != cursor {
		t.Error("cursor moved while paused")
	}
	step(g, platformcore.ActionPause)
	if g.State().Paused {
		t.Error("expected unpaused")
	}
}

func TestResizeKeepsBoard(t *testing.T) {
	setup(t, "")
	g := newGame(t, ModeClassic, 9)
	rows := g.Board().Rows()

	g.Resize(10, 5)
	if !g.State().Paused || g.Snapshot().State != StatePausedSmall {
		t.Error("tiny screen should pause the game")
	}
	g.Resize(80, 24)
	if g.State().Paused {
		t.Error("game should resume after growing the screen")
	}
	if !slices.Equal(g.Board().Rows(), rows) {
		t.Error("resizing must not rebuild the board")
	}
}

func TestDeterministicSnapshots(t *testing.T) {
	setup(t, "")
	script := []platformcore.Action{
		platformcore.ActionHint, platformcore.ActionSelect, platformcore.ActionRight,
		platformcore.ActionSelect, platformcore.ActionUp, platformcore.ActionSelect,
		platformcore.ActionDown, platformcore.ActionSelect,
	}

	run := func() Snapshot {
		g := newGame(t, ModeClassic, 1234)
		for _, a := range script {
			step(g, a)
			settle(t, g)
		}
		return g.Snapshot()
	}

	a, b := run(), run()
	if !slices.Equal(a.Rows, b.Rows) || a.Swaps != b.Swaps || a.Tick != b.Tick || a.Cursor != b.Cursor {
		t.Errorf("snapshots differ:\n%+v\n%+v", a, b)
	}
}

type memJournal struct {
	sessions []storage.Session
	swaps    []storage.SwapRecord
}

func (j *memJournal) StartSession(sess storage.Session) (string, error) {
	sess.ID = "session-1"
	j.sessions = append(j.sessions, sess)
	return sess.ID, nil
}

func (j *memJournal) RecordSwap(r storage.SwapRecord) error {
	j.swaps = append(j.swaps, r)
	return nil
}

func TestJournalAndReplay(t *testing.T) {
	setup(t, "cascade")
	j := &memJournal{}
	g := New(ModeClassic)
	g.AttachJournal(j, "ssh")
	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 0})

	if len(j.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(j.sessions))
	}
	sess := j.sessions[0]
	if sess.LevelID != "cascade" || sess.Source != "ssh" || sess.Mode != "match3" || sess.Seed != 11 {
		t.Errorf("session header = %+v", sess)
	}
	if g.SessionID() != "session-1" {
		t.Errorf("SessionID() = %q", g.SessionID())
	}

	swapBottomPair(g)
	if len(j.swaps) != 1 {
		t.Fatalf("expected 1 journaled swap, got %d", len(j.swaps))
	}
	rec := j.swaps[0]
	if rec.Seq != 1 || rec.AX != 1 || rec.AY != 0 || rec.BX != 1 || rec.BY != 1 {
		t.Errorf("swap record = %+v", rec)
	}
	if rec.Fingerprint != g.Board().Fingerprint() {
		t.Error("fingerprint should describe the resolved board")
	}

	params, err := ParamsFromSession(sess, nil)
	if err != nil {
		t.Fatalf("ParamsFromSession failed: %v", err)
	}
	final, steps, err := Replay(params, j.swaps)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(steps) != 1 || !steps[0].OK() {
		t.Errorf("replay steps = %+v", steps)
	}
	if !final.Equal(g.Board()) {
		t.Error("replayed board differs from the played board")
	}
}

func TestReplayDetectsTampering(t *testing.T) {
	setup(t, "cascade")
	j := &memJournal{}
	g := New(ModeClassic)
	g.AttachJournal(j, "")
	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24})
	swapBottomPair(g)

	params, err := ParamsFromSession(j.sessions[0], nil)
	if err != nil {
		t.Fatalf("ParamsFromSession failed: %v", err)
	}

	tampered := slices.Clone(j.swaps)
	tampered[0].Fingerprint = "0000000000000000"
	if _, steps, err := Replay(params, tampered); err == nil || len(steps) != 1 || steps[0].OK() {
		t.Errorf("expected fingerprint mismatch, got err=%v steps=%+v", err, steps)
	}

	invalid := slices.Clone(j.swaps)
	invalid[0].BX, invalid[0].BY = 3, 3
	if _, _, err := Replay(params, invalid); err == nil {
		t.Error("expected non-adjacent swap to fail replay")
	}
}

func TestRenderDrawsBoard(t *testing.T) {
	setup(t, "cascade")
	g := newGame(t, ModeClassic, 0)
	screen := platformcore.NewScreen(80, 24)

	g.Render(screen)

	for x := range 5 {
		for y := range 5 {
			c := core.C(x, y)
			tile, _, _ := g.Board().TileAt(c)
			sx, sy := g.cellOrigin(c)
			cell := screen.GetCell(sx+1, sy)
			if cell.Rune != tileGlyphs[tile] || cell.Color != tileColors[tile] {
				t.Errorf("cell %v drawn as %q/%v, want %q/%v", c, cell.Rune, cell.Color, tileGlyphs[tile], tileColors[tile])
			}
		}
	}

	// Cursor brackets around the starting cell
	sx, sy := g.cellOrigin(g.cursor)
	if screen.Get(sx, sy) != '[' || screen.Get(sx+2, sy) != ']' {
		t.Error("cursor brackets missing")
	}
}
