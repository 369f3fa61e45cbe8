// Package storage provides the SQLite-backed replay journal.
// Every game session records its seed, board parameters and each accepted
// swap together with a fingerprint of the board after resolution, so a
// session can be re-simulated and checked later.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when no session matches the requested ID.
var ErrNotFound = errors.New("storage: session not found")

// Journal receives session headers and accepted swaps.
// *Store satisfies it; games accept any implementation.
type Journal interface {
	StartSession(sess Session) (string, error)
	RecordSwap(r SwapRecord) error
}

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// Session describes how a board was created.
type Session struct {
	ID        string
	Mode      string // Registry mode ID, e.g. "match3_strict"
	Source    string // "tui", "ssh" or "ws"
	Seed      int64
	Width     int
	Height    int
	Palette   string // Tile letters, e.g. "RGBYP"
	Refill    bool
	Strict    bool
	MaxPasses int
	LevelID   string // Empty for generated boards
	Swaps     int    // Number of recorded swaps (filled by queries)
	CreatedAt time.Time
}

// SwapRecord is one accepted swap in a session.
type SwapRecord struct {
	SessionID   string
	Seq         int // 1-based order within the session
	AX, AY      int
	BX, BY      int
	Events      int    // Events produced, including the swap itself
	Fingerprint string // Board fingerprint after resolution
	Error       string // Resolution error text, empty on success
}

// ModeStats contains aggregated journal statistics for one mode.
type ModeStats struct {
	Mode       string
	Sessions   int
	Swaps      int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'tui',
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			palette TEXT NOT NULL,
			refill INTEGER NOT NULL,
			strict_swaps INTEGER NOT NULL,
			max_passes INTEGER NOT NULL,
			level_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);

		CREATE TABLE IF NOT EXISTS swaps (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			a_x INTEGER NOT NULL,
			a_y INTEGER NOT NULL,
			b_x INTEGER NOT NULL,
			b_y INTEGER NOT NULL,
			events INTEGER NOT NULL,
			fingerprint TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, seq)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartSession records a new session and returns its ID.
// A fresh UUID is assigned when sess.ID is empty.
func (s *Store) StartSession(sess Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Source == "" {
		sess.Source = "tui"
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions
		 (id, mode, source, seed, width, height, palette, refill, strict_swaps, max_passes, level_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Mode, sess.Source, sess.Seed, sess.Width, sess.Height,
		sess.Palette, sess.Refill, sess.Strict, sess.MaxPasses, sess.LevelID,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot start session: %w", err)
	}
	return sess.ID, nil
}

// RecordSwap appends a swap to its session.
func (s *Store) RecordSwap(r SwapRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO swaps (session_id, seq, a_x, a_y, b_x, b_y, events, fingerprint, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Seq, r.AX, r.AY, r.BX, r.BY, r.Events, r.Fingerprint, r.Error,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record swap %d of %s: %w", r.Seq, r.SessionID, err)
	}
	return nil
}

const sessionColumns = `s.id, s.mode, s.source, s.seed, s.width, s.height, s.palette,
	s.refill, s.strict_swaps, s.max_passes, s.level_id, s.created_at,
	(SELECT COUNT(*) FROM swaps w WHERE w.session_id = s.id)`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var sess Session
	var createdAt any
	err := r.Scan(
		&sess.ID, &sess.Mode, &sess.Source, &sess.Seed, &sess.Width, &sess.Height,
		&sess.Palette, &sess.Refill, &sess.Strict, &sess.MaxPasses, &sess.LevelID,
		&createdAt, &sess.Swaps,
	)
	if err != nil {
		return Session{}, err
	}
	sess.CreatedAt = parseTime(createdAt)
	return sess, nil
}

// Sessions retrieves the most recent sessions, newest first.
// An empty mode returns sessions of every mode.
func (s *Store) Sessions(mode string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions s
		 WHERE ? = '' OR s.mode = ?
		 ORDER BY s.created_at DESC, s.rowid DESC
		 LIMIT ?`,
		mode, mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Session retrieves a session by its full ID or a unique ID prefix.
func (s *Store) Session(idOrPrefix string) (*Session, error) {
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions s
		 WHERE s.id = ? OR s.id LIKE ? || '%'
		 LIMIT 2`,
		idOrPrefix, idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	defer rows.Close()

	var found []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if sess.ID == idOrPrefix {
			return &sess, nil
		}
		found = append(found, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("storage: session prefix %q is ambiguous", idOrPrefix)
	}
}

// Swaps retrieves every swap of a session in order.
func (s *Store) Swaps(sessionID string) ([]SwapRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, seq, a_x, a_y, b_x, b_y, events, fingerprint, error
		 FROM swaps
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query swaps: %w", err)
	}
	defer rows.Close()

	var swaps []SwapRecord
	for rows.Next() {
		var r SwapRecord
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.AX, &r.AY, &r.BX, &r.BY, &r.Events, &r.Fingerprint, &r.Error); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		swaps = append(swaps, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return swaps, nil
}

// DeleteSession removes a session and its swaps.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.Exec("DELETE FROM swaps WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete swaps: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	return tx.Commit()
}

// AllModeStats retrieves statistics for every mode that has been played.
func (s *Store) AllModeStats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT s.mode, COUNT(*), COALESCE(SUM(
		        (SELECT COUNT(*) FROM swaps w WHERE w.session_id = s.id)), 0),
		        MAX(s.created_at)
		 FROM sessions s
		 GROUP BY s.mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var m ModeStats
		var lastPlayed any
		if err := rows.Scan(&m.Mode, &m.Sessions, &m.Swaps, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.LastPlayed = parseTime(lastPlayed)
		stats[m.Mode] = &m
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
