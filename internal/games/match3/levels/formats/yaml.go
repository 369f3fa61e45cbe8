// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Palette  string            `yaml:"palette"`
	Seed     int64             `yaml:"seed,omitempty"`
	Rows     []string          `yaml:"rows"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// Level represents a parsed level ready for use.
type Level struct {
	ID       string
	Name     string
	Palette  core.Palette
	Seed     int64
	Rows     []string // Top row first
	Metadata map[string]string
}

// ParseYAML parses a YAML level file.
// The layout is validated against the palette so a bad file fails here
// rather than when the board is built.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if yl.ID == "" {
		return Level{}, fmt.Errorf("level has no id")
	}

	palette, ok := core.ParsePalette(yl.Palette)
	if !ok {
		return Level{}, fmt.Errorf("level %s: invalid palette %q", yl.ID, yl.Palette)
	}

	level := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		Palette:  palette,
		Seed:     yl.Seed,
		Rows:     yl.Rows,
		Metadata: yl.Metadata,
	}
	if level.Name == "" {
		level.Name = level.ID
	}

	if err := validateLayout(level); err != nil {
		return Level{}, fmt.Errorf("level %s: %w", yl.ID, err)
	}

	return level, nil
}

// MarshalYAML encodes a level back to its file format.
func MarshalYAML(l Level) ([]byte, error) {
	return yaml.Marshal(YAMLLevel{
		ID:       l.ID,
		Name:     l.Name,
		Palette:  l.Palette.String(),
		Seed:     l.Seed,
		Rows:     l.Rows,
		Metadata: l.Metadata,
	})
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

// validateLayout checks that the rows describe a settled board: every row
// uses the palette, no triple is already lined up and no tile sits above a
// hole in its column.
func validateLayout(l Level) error {
	b, err := core.NewBoardFromRows(l.Rows, l.Palette, core.NewRand(l.Seed), core.DefaultRules())
	if err != nil {
		return err
	}
	if matches := b.FindMatches(); len(matches) > 0 {
		return fmt.Errorf("layout starts with a match at %v", matches.Sorted()[0])
	}
	for x := range b.Width() {
		hole := false
		for y := range b.Height() {
			_, filled, _ := b.TileAt(core.C(x, y))
			if !filled {
				hole = true
				continue
			}
			if hole {
				return fmt.Errorf("tile at %v floats above a hole", core.C(x, y))
			}
		}
	}
	return nil
}
