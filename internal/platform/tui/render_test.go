package tui

import (
	"regexp"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/core"
)

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextColored(0, 0, "[●]", core.ColorBrightRed)
	s.DrawTextColored(3, 0, "[▲]", core.ColorBrightGreen)
	s.DrawText(0, 1, "ok")

	got := ansiEscape.ReplaceAllString(RenderScreen(s), "")
	want := "[●][▲]\nok    "
	if got != want {
		t.Errorf("RenderScreen() = %q, want %q", got, want)
	}
}

func TestRenderScreenEmpty(t *testing.T) {
	if got := RenderScreen(core.NewScreen(0, 0)); got != "" {
		t.Errorf("RenderScreen() of empty screen = %q", got)
	}
}
