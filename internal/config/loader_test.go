package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// isolate points HOME and the working directory at empty temp dirs so the
// search path only sees files the test creates.
func isolate(t *testing.T) (home, wd string) {
	t.Helper()
	home = t.TempDir()
	wd = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(wd)
	return home, wd
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parseMatch3(defaultMatch3YAML)
	if err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	if cfg != DefaultMatch3Config() {
		t.Errorf("embedded defaults %+v differ from DefaultMatch3Config %+v", cfg, DefaultMatch3Config())
	}
}

func TestLoadMatch3CustomPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "board:\n  width: 6\nrules:\n  strict_swaps: true\n")

	cfg, err := LoadMatch3(path)
	if err != nil {
		t.Fatalf("LoadMatch3 failed: %v", err)
	}
	if cfg.Board.Width != 6 || !cfg.Rules.StrictSwaps {
		t.Errorf("custom values not applied: %+v", cfg)
	}
	// Unset keys keep their defaults
	if cfg.Board.Height != 8 || cfg.Rules.MaxPasses != 100 || !cfg.Rules.Refill {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMatch3CustomPathErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	if _, err := LoadMatch3(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "board:\n  palette: 2\n")
	_, err := LoadMatch3(bad)
	if err == nil || !strings.Contains(err.Error(), "board.palette") {
		t.Errorf("expected palette validation error, got %v", err)
	}
}

func TestLoadMatch3SearchOrder(t *testing.T) {
	home, wd := isolate(t)

	cfg, err := LoadMatch3("")
	if err != nil {
		t.Fatalf("LoadMatch3 failed: %v", err)
	}
	if cfg != DefaultMatch3Config() {
		t.Errorf("expected embedded defaults, got %+v", cfg)
	}

	writeFile(t, filepath.Join(wd, "configs", "match3.yaml"), "board:\n  width: 5\n")
	cfg, _ = LoadMatch3("")
	if cfg.Board.Width != 5 {
		t.Errorf("local config not used, width = %d", cfg.Board.Width)
	}

	writeFile(t, filepath.Join(home, ".match3", "configs", "match3.yaml"), "board:\n  width: 4\n")
	cfg, _ = LoadMatch3("")
	if cfg.Board.Width != 4 {
		t.Errorf("user config should win over local, width = %d", cfg.Board.Width)
	}

	// An invalid user file falls through to the next source
	writeFile(t, filepath.Join(home, ".match3", "configs", "match3.yaml"), "board:\n  width: 0\n")
	cfg, _ = LoadMatch3("")
	if cfg.Board.Width != 5 {
		t.Errorf("invalid user config should be skipped, width = %d", cfg.Board.Width)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Match3Config)
		want   string
	}{
		{"zero width", func(c *Match3Config) { c.Board.Width = 0 }, "board.width"},
		{"huge height", func(c *Match3Config) { c.Board.Height = MaxSide + 1 }, "board.height"},
		{"palette too small", func(c *Match3Config) { c.Board.Palette = 2 }, "board.palette"},
		{"palette too large", func(c *Match3Config) { c.Board.Palette = 8 }, "board.palette"},
		{"no passes", func(c *Match3Config) { c.Rules.MaxPasses = 0 }, "max_passes"},
		{"negative ticks", func(c *Match3Config) { c.Animation.FallTicks = -1 }, "animation"},
	}

	if err := DefaultMatch3Config().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMatch3Config()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestApplyMatch3Preset(t *testing.T) {
	tests := []struct {
		preset DifficultyPreset
		want   int
	}{
		{DifficultyEasy, 4},
		{DifficultyNormal, 5},
		{DifficultyHard, 6},
		{DifficultyFixed, 7},
		{"bogus", 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := DefaultMatch3Config()
			cfg.Board.Palette = 7
			ApplyMatch3Preset(&cfg, tt.preset)
			if cfg.Board.Palette != tt.want {
				t.Errorf("palette = %d, want %d", cfg.Board.Palette, tt.want)
			}
		})
	}
}
