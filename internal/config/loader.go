package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Limits enforced by Validate.
const (
	MinPalette = 3
	MaxPalette = 7
	MaxSide    = 32
)

// LoadMatch3 loads the match-3 configuration.
// Search order: customPath -> ~/.match3/configs/match3.yaml -> ./configs/match3.yaml -> embedded default
// Files found on the search path that fail to parse or validate are skipped.
func LoadMatch3(customPath string) (Match3Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Match3Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseMatch3(data)
		if err != nil {
			return Match3Config{}, fmt.Errorf("config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("match3.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseMatch3(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "match3.yaml")); err == nil {
		if cfg, err := parseMatch3(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseMatch3(defaultMatch3YAML)
	if err != nil {
		return DefaultMatch3Config(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseMatch3 decodes a config on top of the defaults, so a file only needs
// the keys it changes.
func parseMatch3(data []byte) (Match3Config, error) {
	cfg := DefaultMatch3Config()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Match3Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Match3Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".match3", "configs", filename)
}

// Validate reports every problem with the configuration.
func (c Match3Config) Validate() error {
	var errs []error

	if c.Board.Width < 1 || c.Board.Width > MaxSide {
		errs = append(errs, fmt.Errorf("board.width %d out of range 1..%d", c.Board.Width, MaxSide))
	}
	if c.Board.Height < 1 || c.Board.Height > MaxSide {
		errs = append(errs, fmt.Errorf("board.height %d out of range 1..%d", c.Board.Height, MaxSide))
	}
	if c.Board.Palette < MinPalette || c.Board.Palette > MaxPalette {
		errs = append(errs, fmt.Errorf("board.palette %d out of range %d..%d", c.Board.Palette, MinPalette, MaxPalette))
	}
	if c.Rules.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("rules.max_passes must be positive, got %d", c.Rules.MaxPasses))
	}

	a := c.Animation
	if a.SwapTicks < 0 || a.RemoveTicks < 0 || a.FallTicks < 0 || a.SpawnTicks < 0 {
		errs = append(errs, errors.New("animation ticks must not be negative"))
	}

	return errors.Join(errs...)
}

// ApplyMatch3Preset modifies the config based on a difficulty preset.
// Fixed and unknown presets leave the config unchanged.
func ApplyMatch3Preset(cfg *Match3Config, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		return
	}
	if n := PaletteSizeForPreset(preset); n > 0 {
		cfg.Board.Palette = n
	}
}
