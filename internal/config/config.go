// Package config provides YAML-based configuration loading and difficulty
// presets for the match-3 game.
package config

// Match3Config contains all configuration for the match-3 game.
type Match3Config struct {
	Board     BoardConfig     `yaml:"board"`
	Rules     RulesConfig     `yaml:"rules"`
	Animation AnimationConfig `yaml:"animation"`
}

// BoardConfig defines grid dimensions and the tile palette.
type BoardConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Palette int `yaml:"palette"` // Number of tile kinds, 3 to 7
}

// RulesConfig defines how swaps and cascades behave.
type RulesConfig struct {
	Refill      bool `yaml:"refill"`       // Fill emptied cells after each collapse
	StrictSwaps bool `yaml:"strict_swaps"` // Revert swaps that form no match
	MaxPasses   int  `yaml:"max_passes"`   // Cascade pass cap per swap
}

// AnimationConfig defines how many ticks each presentation phase lasts.
type AnimationConfig struct {
	SwapTicks   int `yaml:"swap_ticks"`
	RemoveTicks int `yaml:"remove_ticks"`
	FallTicks   int `yaml:"fall_ticks"`
	SpawnTicks  int `yaml:"spawn_ticks"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// PaletteSizeForPreset returns the number of tile kinds for a preset.
// More kinds means fewer accidental matches and a harder board.
// Returns 0 for fixed or unknown presets.
func PaletteSizeForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 4
	case DifficultyNormal:
		return 5
	case DifficultyHard:
		return 6
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset keeps the file's values.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
