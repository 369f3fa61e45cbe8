package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
)

var (
	flagLevelsDir  string
	flagLevelsShow bool
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List preset boards",
	Long: `Lists the bundled preset boards plus any found in ~/.match3/levels.

Files that fail to parse are reported and skipped.

Examples:
  match3 levels
  match3 levels --show
  match3 levels --dir ./my-levels`,
	Args: cobra.NoArgs,
	RunE: runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&flagLevelsDir, "dir", "", "Additional directory of level files")
	levelsCmd.Flags().BoolVar(&flagLevelsShow, "show", false, "Print each layout")
}

func levelLoader() *levels.Loader {
	if flagLevelsDir != "" {
		return levels.NewLoader(levels.Builtin(), os.DirFS(flagLevelsDir))
	}
	return levels.DefaultLoader()
}

func runLevels(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	loader := levelLoader()

	all, err := loader.LoadAll()
	if err != nil {
		return err
	}
	for _, p := range loader.Skipped() {
		logger.Warn("skipped level file", "file", p)
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No levels found.")
		return nil
	}

	maxIDLen := 2
	for _, l := range all {
		maxIDLen = max(maxIDLen, len(l.ID))
	}

	fmt.Fprintf(out, "  %-*s  %-7s  %-7s  %s\n", maxIDLen, "ID", "Size", "Palette", "Name")
	fmt.Fprintf(out, "  %-*s  %-7s  %-7s  %s\n", maxIDLen, "--", "----", "-------", "----")
	for _, l := range all {
		size := fmt.Sprintf("%dx%d", l.Width(), l.Height())
		fmt.Fprintf(out, "  %-*s  %-7s  %-7s  %s\n", maxIDLen, l.ID, size, l.Palette.String(), l.Name)
		if flagLevelsShow {
			fmt.Fprintln(out)
			fmt.Fprintln(out, indent(strings.Join(l.Rows, "\n"), "      "))
			fmt.Fprintln(out)
		}
	}
	return nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
