package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var flagReplayBoard bool

var replayCmd = &cobra.Command{
	Use:   "replay <session>",
	Short: "Re-apply a journaled session and verify it",
	Long: `Rebuilds the board of a journaled session from its seed and rules,
re-applies every recorded swap and compares each resulting board with
the journal. A session ID prefix is enough when it is unique.

Examples:
  match3 replay 3f2a
  match3 replay 3f2a9c01 --board`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagReplayBoard, "board", false, "Print the final board")
}

func runReplay(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer store.Close()

	return replaySession(cmd, store, levels.DefaultLoader(), args[0])
}

// replaySession verifies one session and prints a line per swap.
func replaySession(cmd *cobra.Command, store *storage.Store, loader *levels.Loader, id string) error {
	out := cmd.OutOrStdout()

	sess, err := store.Session(id)
	if err != nil {
		return err
	}
	swaps, err := store.Swaps(sess.ID)
	if err != nil {
		return err
	}
	params, err := match3.ParamsFromSession(*sess, loader)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Session %s (%s, seed %d, %dx%d %s)\n", shortID(sess.ID), sess.Mode, sess.Seed, sess.Width, sess.Height, sess.Palette)
	fmt.Fprintln(out)

	board, steps, replayErr := match3.Replay(params, swaps)
	for _, step := range steps {
		status := "ok"
		if !step.OK() {
			status = "MISMATCH"
		}
		fmt.Fprintf(out, "  %3d  %v <-> %v  %3d events  %s  %s\n", step.Seq, step.A, step.B, step.Events, step.Fingerprint, status)
		if step.Err != nil {
			fmt.Fprintf(out, "       %v\n", step.Err)
		}
	}

	if flagReplayBoard && board != nil {
		fmt.Fprintln(out)
		printBoard(cmd, board)
	}

	if replayErr != nil {
		return replayErr
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d swaps verified\n", len(steps))
	return nil
}
