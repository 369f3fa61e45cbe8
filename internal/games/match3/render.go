package match3

import (
	"fmt"
	"math"

	platformcore "github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

const (
	cellWidth = 3 // Terminal columns per tile: bracket, glyph, bracket
	hudHeight = 3
	minWidth  = 34 // Room for the HUD line
)

// tileGlyphs gives each kind its own shape so the board reads without color.
var tileGlyphs = map[core.TileType]rune{
	core.TileRed:    '●',
	core.TileGreen:  '▲',
	core.TileBlue:   '■',
	core.TileYellow: '◆',
	core.TilePurple: '♠',
	core.TileOrange: '♥',
	core.TileCyan:   '♣',
}

var tileColors = map[core.TileType]platformcore.Color{
	core.TileRed:    platformcore.ColorBrightRed,
	core.TileGreen:  platformcore.ColorBrightGreen,
	core.TileBlue:   platformcore.ColorBrightBlue,
	core.TileYellow: platformcore.ColorBrightYellow,
	core.TilePurple: platformcore.ColorBrightMagenta,
	core.TileOrange: platformcore.ColorOrange,
	core.TileCyan:   platformcore.ColorBrightCyan,
}

// minScreenSize returns the smallest screen that fits board, HUD and footer.
func (g *Game) minScreenSize() (int, int) {
	boxW := g.board.Width()*cellWidth + 2
	boxH := g.board.Height() + 2
	return max(boxW, minWidth) + 2, hudHeight + 1 + boxH + 2
}

// boardRect returns the screen area of the tiles, inside the frame.
func (g *Game) boardRect() platformcore.Rect {
	w := g.board.Width() * cellWidth
	h := g.board.Height()
	x := (g.screenW-(w+2))/2 + 1
	y := hudHeight + 2
	return platformcore.NewRect(x, y, w, h)
}

// cellOrigin returns the screen position of a cell's left bracket.
// Row 0 of the board is drawn lowest.
func (g *Game) cellOrigin(c core.Coord) (int, int) {
	r := g.boardRect()
	return r.X + c.X*cellWidth, r.Y + (g.board.Height() - 1 - c.Y)
}

// cellAt maps a screen position to the board cell drawn there.
func (g *Game) cellAt(sx, sy int) (core.Coord, bool) {
	r := g.boardRect()
	if !r.Contains(sx, sy) {
		return core.Coord{}, false
	}
	x := (sx - r.X) / cellWidth
	y := g.board.Height() - 1 - (sy - r.Y)
	return core.C(x, y), true
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()

	if g.failure != nil {
		g.drawCentered(dst, g.screenH/2, "Cannot build board", g.failure.Error())
		return
	}

	// Check screen size
	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	r := g.boardRect()
	g.renderHUD(dst, r)

	frame := platformcore.NewRect(r.X-1, r.Y-1, r.W+2, r.H+2)
	dst.DrawBoxColored(frame, platformcore.ColorGray)

	g.renderTiles(dst)
	g.renderMarkers(dst)

	if g.message != "" {
		g.drawCentered(dst, frame.Bottom(), g.message)
	}

	g.renderOverlays(dst, frame)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *platformcore.Screen) {
	minW, minH := g.minScreenSize()
	g.drawCentered(dst, g.screenH/2,
		"Window too small",
		fmt.Sprintf("Need %dx%d, have %dx%d", minW, minH, g.screenW, g.screenH))
}

// renderHUD draws title, counters and the board source.
func (g *Game) renderHUD(dst *platformcore.Screen, r platformcore.Rect) {
	g.drawCentered(dst, 0, g.Title())

	info := fmt.Sprintf("Swaps: %d  Chain: %d  Best: %d", g.swaps, g.lastChain, g.bestChain)
	g.drawCentered(dst, 1, info)

	source := fmt.Sprintf("%dx%d  %d kinds  seed %d", g.board.Width(), g.board.Height(), len(g.board.Palette()), g.params.Seed)
	if g.level != nil {
		source = fmt.Sprintf("Level: %s", g.level.Name)
	}
	g.drawCentered(dst, 2, source)
}

// renderTiles draws the display board with the running animation phase.
func (g *Game) renderTiles(dst *platformcore.Screen) {
	display := g.timeline.Display()
	phase := g.timeline.Phase()
	progress := g.timeline.Progress()

	// Cells whose contents are drawn by the phase instead of statically
	skip := make(core.CoordSet)
	removing := make(core.CoordSet)
	for _, e := range g.timeline.Batch() {
		switch ev := e.(type) {
		case core.TilesRemoved:
			for _, c := range ev.Coords {
				removing.Add(c)
			}
		case core.TileFell:
			skip.Add(ev.From)
		}
	}

	for x := range display.Width() {
		for y := range display.Height() {
			c := core.C(x, y)
			if skip.Has(c) {
				continue
			}
			t, filled, _ := display.TileAt(c)
			if !filled {
				continue
			}
			sx, sy := g.cellOrigin(c)
			glyph, color := tileGlyphs[t], tileColors[t]

			switch {
			case removing.Has(c):
				// Flash between the tile and a burst
				if (g.tick/3)%2 == 0 {
					glyph, color = '✦', platformcore.ColorBrightWhite
				}
			case phase == PhaseSpawn && progress < 0.5 && spawnedAt(g.timeline.Batch(), c):
				glyph = '·'
			}
			dst.SetColored(sx+1, sy, glyph, color)
		}
	}

	if phase == PhaseFall {
		for _, e := range g.timeline.Batch() {
			fell, ok := e.(core.TileFell)
			if !ok {
				continue
			}
			t, filled, _ := display.TileAt(fell.From)
			if !filled {
				continue
			}
			row := int(math.Round(fallRow(fell, progress)))
			sx, sy := g.cellOrigin(core.C(fell.From.X, row))
			dst.SetColored(sx+1, sy, tileGlyphs[t], tileColors[t])
		}
	}
}

// spawnedAt reports whether a spawn in the batch targets c.
func spawnedAt(batch []core.Event, c core.Coord) bool {
	for _, e := range batch {
		if s, ok := e.(core.TileSpawned); ok && s.At == c {
			return true
		}
	}
	return false
}

// renderMarkers draws the cursor, the selection, the hint and swap highlights.
func (g *Game) renderMarkers(dst *platformcore.Screen) {
	bracket := func(c core.Coord, left, right rune, color platformcore.Color) {
		sx, sy := g.cellOrigin(c)
		dst.SetColored(sx, sy, left, color)
		dst.SetColored(sx+2, sy, right, color)
	}

	if g.hint != nil {
		bracket(g.hint.A, '(', ')', platformcore.ColorGreen)
		bracket(g.hint.B, '(', ')', platformcore.ColorGreen)
	}

	if g.timeline.Phase() == PhaseSwap {
		for _, e := range g.timeline.Batch() {
			if s, ok := e.(core.TileSwapped); ok {
				bracket(s.A, '<', '>', platformcore.ColorBrightWhite)
				bracket(s.B, '<', '>', platformcore.ColorBrightWhite)
			}
		}
	}

	if g.hasSelect {
		bracket(g.selected, '[', ']', platformcore.ColorBrightYellow)
	}
	if !g.timeline.Busy() {
		color := platformcore.ColorWhite
		if g.hasSelect && g.selected == g.cursor {
			color = platformcore.ColorBrightYellow
		}
		bracket(g.cursor, '[', ']', color)
	}
}

// renderOverlays draws game state overlays.
func (g *Game) renderOverlays(dst *platformcore.Screen, frame platformcore.Rect) {
	_, centerY := frame.Center()

	if g.paused {
		g.drawOverlay(dst, centerY, "PAUSED", "Press P to resume")
		return
	}

	if g.State().GameOver {
		reason := "No more matches possible"
		if g.board.Rules().StrictSwaps {
			reason = "No matching swap left"
		}
		g.drawOverlay(dst, centerY, "GAME OVER", reason, fmt.Sprintf("Swaps: %d", g.swaps), "Press R for a new board")
	}
}

// drawOverlay draws a boxed text overlay centered on the screen.
func (g *Game) drawOverlay(dst *platformcore.Screen, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len([]rune(line)))
	}

	boxW := maxLen + 4
	boxH := len(lines) + 2
	box := platformcore.NewRect((g.screenW-boxW)/2, centerY-boxH/2, boxW, boxH)

	// Clear area behind overlay
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)

	for i, line := range lines {
		x := (g.screenW - len([]rune(line))) / 2
		dst.DrawText(x, box.Y+1+i, line)
	}
}

// drawCentered writes each line horizontally centered, starting at row y.
func (g *Game) drawCentered(dst *platformcore.Screen, y int, lines ...string) {
	for i, line := range lines {
		x := (g.screenW - len([]rune(line))) / 2
		dst.DrawText(max(x, 0), y+i, line)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/WASD: Move | Space/Enter/Click: Select | Esc: Cancel | ?: Hint | P: Pause | R: New board | Q: Quit"
}
