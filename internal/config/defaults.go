package config

import (
	_ "embed"
)

//go:embed defaults/match3.yaml
var defaultMatch3YAML []byte

// DefaultMatch3Config returns the default match-3 configuration.
func DefaultMatch3Config() Match3Config {
	return Match3Config{
		Board: BoardConfig{
			Width:   8,
			Height:  8,
			Palette: 5,
		},
		Rules: RulesConfig{
			Refill:      true,
			StrictSwaps: false,
			MaxPasses:   100,
		},
		Animation: AnimationConfig{
			SwapTicks:   8,
			RemoveTicks: 10,
			FallTicks:   6,
			SpawnTicks:  6,
		},
	}
}
