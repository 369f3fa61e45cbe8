package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/platform/tui"
	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagLevel      string
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the given mode (default: classic).

Modes:
  classic  - Any adjacent swap is allowed, emptied cells refill
  strict   - Swaps that form no match are rejected
  deplete  - Nothing refills; play until no three tiles of a kind remain

Controls:
  Arrows/WASD/HJKL  - Move cursor
  Space/Enter       - Pick a tile, then a neighbour to swap
  Mouse             - Click two neighbouring tiles
  ?                 - Show a hint
  P                 - Pause
  R                 - New board
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - 4 tile kinds
  normal - 5 tile kinds
  hard   - 6 tile kinds
  fixed  - Keep the config file's palette

Examples:
  match3 play
  match3 play strict --difficulty hard
  match3 play deplete --level drop
  match3 play --seed 42
  match3 play --config ./my-match3.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	for _, cmd := range []*cobra.Command{playCmd, menuCmd} {
		cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom match-3 config YAML")
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
		cmd.Flags().StringVar(&flagLevel, "level", "", "Preset board ID (see 'match3 levels')")
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	name := string(match3.ModeClassic)
	if len(args) > 0 {
		name = args[0]
	}

	mode, ok := match3.ParseMode(name)
	if !ok || !registry.Exists(mode.ID()) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", name)
		fmt.Fprintln(os.Stderr, "Run 'match3 list' to see available modes.")
		os.Exit(1)
	}

	if err := applyGameFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := runtimeConfig()

	game, err := registry.Create(mode.ID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openJournal()

	runErr := tui.Run(game, store, cfg)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// applyGameFlags checks the game flags and hands them to the match-3 package.
func applyGameFlags() error {
	if flagDifficulty != "" && config.PaletteSizeForPreset(config.DifficultyPreset(flagDifficulty)) == 0 &&
		!config.IsFixedPreset(config.DifficultyPreset(flagDifficulty)) {
		return fmt.Errorf("unknown difficulty %q", flagDifficulty)
	}
	if flagConfig != "" {
		if _, err := config.LoadMatch3(flagConfig); err != nil {
			return err
		}
	}
	if flagLevel != "" {
		if _, err := levels.DefaultLoader().LoadByID(flagLevel); err != nil {
			return err
		}
	}

	match3.SetConfigPath(flagConfig)
	match3.SetDifficultyPreset(flagDifficulty)
	match3.SetLevel(flagLevel)
	return nil
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openJournal opens the journal database. Play continues without one.
func openJournal() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open journal database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}
