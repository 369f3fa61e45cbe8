// match3 is a terminal match-3 game built on a deterministic board engine.
//
// Usage:
//
//	match3 list                  - List available game modes
//	match3 play [mode]           - Play a mode (classic, strict, deplete)
//	match3 menu                  - Start menu to pick modes interactively
//	match3 levels                - List preset boards
//	match3 generate              - Print a generated board
//	match3 history [mode]        - Show journaled sessions
//	match3 replay <session>      - Re-apply a journaled session and verify it
//	match3 serve                 - Start SSH server for remote play
//	match3 ws                    - Start websocket server for shared boards
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible boards
//	--db <path>          - Set journal path (default: ~/.match3/journal.db)
//	--log-level <level>  - Set log level (debug, info, warn, error)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tui-match3/internal/games/match3"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	// Replaced once --log-level is parsed
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "match3"})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "match3",
	Short: "Match-3 - Swap tiles in your terminal",
	Long: `Match-3 is a terminal puzzle game: swap two neighbouring tiles to line up
three or more of a kind, then watch the cascade.

Available commands:
  list      - Show all game modes
  play      - Play a mode directly
  menu      - Interactive mode picker
  levels    - List preset boards
  generate  - Print a generated board without playing
  history   - View journaled sessions
  replay    - Verify a journaled session
  serve     - Start SSH server for remote play
  ws        - Start websocket server for shared boards

Examples:
  match3 list
  match3 play strict
  match3 play --level cascade
  match3 generate --seed 42
  match3 replay 3f2a`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "match3",
			Level:           level,
		})
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.match3/journal.db", "Path to journal database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(wsCmd)
}
