// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Outcomes stored with a run.
const (
	OutcomeWon  = "won"
	OutcomeDied = "died"
	OutcomeQuit = "quit"
)

// Run is one finished attempt at a scene.
type Run struct {
	ID        string // ULID assigned by the session
	Scene     string
	Player    string
	Outcome   string // "won", "died" or "quit"
	Pills     int
	Frames    uint64
	Seed      int64
	CreatedAt time.Time
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

	// Open database
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

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scene_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			pills INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scene_id ON runs(scene_id);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(scene_id, outcome, pills DESC, frames ASC);
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

// SaveRun records a finished run.
func (s *Store) SaveRun(run Run) error {
	if run.ID == "" {
		return errors.New("storage: run has no id")
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, scene_id, player, outcome, pills, frames, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scene, run.Player, run.Outcome, run.Pills, int64(run.Frames), run.Seed,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run: %w", err)
	}
	return nil
}

// rankOrder puts wins first, then more pills, then fewer frames.
const rankOrder = `ORDER BY (outcome = 'won') DESC, pills DESC, frames ASC, created_at ASC`

const runColumns = `id, scene_id, player, outcome, pills, frames, seed, created_at`

// TopRuns retrieves the best N runs for the given scene.
func (s *Store) TopRuns(sceneID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE scene_id = ?
		 `+rankOrder+`
		 LIMIT ?`,
		sceneID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// BestRun returns the best run for the given scene, or nil if none exist.
func (s *Store) BestRun(sceneID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE scene_id = ? `+rankOrder+` LIMIT 1`,
		sceneID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RunByID retrieves a run by its ID, or nil if it does not exist.
func (s *Store) RunByID(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearRuns deletes all runs for the given scene.
func (s *Store) ClearRuns(sceneID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE scene_id = ?", sceneID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// SceneStats contains aggregated statistics for a scene.
type SceneStats struct {
	Scene      string
	Runs       int
	Wins       int
	BestPills  int
	AvgPills   float64
	LastPlayed time.Time
}

// Stats retrieves aggregated statistics for a specific scene.
func (s *Store) Stats(sceneID string) (*SceneStats, error) {
	stats := &SceneStats{Scene: sceneID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(outcome = 'won'), 0), COALESCE(MAX(pills), 0),
		        COALESCE(AVG(pills), 0), MAX(created_at)
		 FROM runs WHERE scene_id = ?`,
		sceneID,
	).Scan(&stats.Runs, &stats.Wins, &stats.BestPills, &stats.AvgPills, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scene stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllStats retrieves statistics for every scene that has been played.
func (s *Store) AllStats() (map[string]*SceneStats, error) {
	rows, err := s.db.Query(
		`SELECT scene_id, COUNT(*), SUM(outcome = 'won'), MAX(pills), AVG(pills), MAX(created_at)
		 FROM runs
		 GROUP BY scene_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all scene stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SceneStats)
	for rows.Next() {
		var st SceneStats
		var lastPlayed any
		if err := rows.Scan(&st.Scene, &st.Runs, &st.Wins, &st.BestPills, &st.AvgPills, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Scene] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var frames int64
	var createdAt any
	err := row.Scan(&r.ID, &r.Scene, &r.Player, &r.Outcome, &r.Pills, &frames, &r.Seed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	r.Frames = uint64(frames)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and the string form SQLite may return.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
