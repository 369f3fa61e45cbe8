package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [mode]",
	Short: "Show journaled sessions",
	Long: `Display the most recent journaled sessions, newest first.

Without a mode, sessions of every mode are listed.

Examples:
  match3 history
  match3 history strict
  match3 history --limit 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum number of sessions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	modeID := ""
	if len(args) > 0 {
		mode, ok := match3.ParseMode(args[0])
		if !ok {
			return fmt.Errorf("unknown mode %q", args[0])
		}
		modeID = mode.ID()
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer store.Close()

	sessions, err := store.Sessions(modeID, flagHistoryLimit)
	if err != nil {
		return err
	}

	printSessions(cmd, sessions)
	return nil
}

func printSessions(cmd *cobra.Command, sessions []storage.Session) {
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Play 'match3 play' to record the first one.")
		return
	}

	fmt.Fprintf(out, "  %-8s  %-14s  %-4s  %-7s  %-8s  %5s  %s\n", "Session", "Mode", "From", "Board", "Level", "Swaps", "Date")
	fmt.Fprintf(out, "  %-8s  %-14s  %-4s  %-7s  %-8s  %5s  %s\n", "-------", "----", "----", "-----", "-----", "-----", "----")
	for _, s := range sessions {
		level := s.LevelID
		if level == "" {
			level = "-"
		}
		fmt.Fprintf(out, "  %-8s  %-14s  %-4s  %-7s  %-8s  %5d  %s\n",
			shortID(s.ID),
			s.Mode,
			s.Source,
			fmt.Sprintf("%dx%d", s.Width, s.Height),
			level,
			s.Swaps,
			s.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
