// Package levels provides preset board loading for the match-3 game.
// This package depends on core but core does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels/formats"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Level represents a complete preset board definition.
type Level struct {
	ID       string
	Name     string
	Palette  core.Palette
	Seed     int64
	Rows     []string
	Metadata map[string]string
	FilePath string
}

// Width returns the number of columns in the layout.
func (l *Level) Width() int {
	if len(l.Rows) == 0 {
		return 0
	}
	return len([]rune(l.Rows[0]))
}

// Height returns the number of rows in the layout.
func (l *Level) Height() int {
	return len(l.Rows)
}

// NewBoard builds a board from the level with the given rules.
// A non-zero seed overrides the level's refill seed.
func (l *Level) NewBoard(rules core.Rules, seed int64) (*core.Board, error) {
	if seed == 0 {
		seed = l.Seed
	}
	return core.NewBoardFromRows(l.Rows, l.Palette, core.NewRand(seed), rules)
}

// Loader handles loading levels from one or more file systems.
// Later sources override earlier ones when IDs collide.
type Loader struct {
	sources []fs.FS
	skipped []string
}

// NewLoader creates a loader over the given file systems.
func NewLoader(sources ...fs.FS) *Loader {
	return &Loader{sources: sources}
}

// NewDirLoader creates a loader for a directory on disk.
func NewDirLoader(root string) *Loader {
	return NewLoader(os.DirFS(root))
}

// Builtin returns the file system holding the bundled levels.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		// Static embed path; cannot fail.
		panic(err)
	}
	return sub
}

// DefaultLoader returns a loader over the bundled levels and, when present,
// the user's ~/.match3/levels directory.
func DefaultLoader() *Loader {
	sources := []fs.FS{Builtin()}
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".match3", "levels")
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			sources = append(sources, os.DirFS(dir))
		}
	}
	return NewLoader(sources...)
}

// LoadAll scans every source and loads all level files.
// Invalid files are skipped and reported by Skipped.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	byID := make(map[string]Level)
	l.skipped = nil

	for _, src := range l.sources {
		err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			ext := strings.ToLower(path.Ext(p))
			if !isSupportedExtension(ext) {
				return nil
			}

			level, err := loadFile(src, p)
			if err != nil {
				l.skipped = append(l.skipped, p)
				return nil
			}

			byID[level.ID] = level
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking levels: %w", err)
		}
	}

	levels := make([]Level, 0, len(byID))
	for _, lvl := range byID {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// Skipped returns the paths rejected by the last LoadAll.
func (l *Loader) Skipped() []string {
	return l.skipped
}

// loadFile loads a single level file from a source.
func loadFile(src fs.FS, p string) (Level, error) {
	data, err := fs.ReadFile(src, p)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", p, err)
	}

	return Level{
		ID:       parsed.ID,
		Name:     parsed.Name,
		Palette:  parsed.Palette,
		Seed:     parsed.Seed,
		Rows:     parsed.Rows,
		Metadata: parsed.Metadata,
		FilePath: p,
	}, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
