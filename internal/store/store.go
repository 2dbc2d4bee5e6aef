// Package store persists the per-action execution log to SQLite so the
// host UI can show history across sessions. Purely observational: dispatch
// works identically with no store attached.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Epawse/geocommander/internal/logging"
)

// Entry is one recorded action execution.
type Entry struct {
	ID        string
	Action    string
	Success   bool
	Error     string
	LatencyMs int64
	CreatedAt time.Time
}

// ActionLog is a SQLite-backed execution log.
type ActionLog struct {
	db *sql.DB
}

// Open creates (or opens) the action log database at path.
func Open(path string) (*ActionLog, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}

	s := &ActionLog{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ActionLog) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS action_log (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			action_id TEXT NOT NULL,
			action TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			latency_ms INTEGER,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create action_log schema: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_action_log_created ON action_log(created_at)`)
	if err != nil {
		return fmt.Errorf("create action_log index: %w", err)
	}
	return nil
}

// Record appends one entry. Failures are logged, not fatal: losing a log
// row must never affect dispatch.
func (s *ActionLog) Record(e Entry) {
	success := 0
	if e.Success {
		success = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO action_log (action_id, action, success, error, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, success, e.Error, e.LatencyMs, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Warn("record action %s: %v", e.ID, err)
	}
}

// Recent returns the latest n entries, newest first.
func (s *ActionLog) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT action_id, action, success, error, latency_ms, created_at
		 FROM action_log ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query action log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			success int
			created string
		)
		if err := rows.Scan(&e.ID, &e.Action, &success, &e.Error, &e.LatencyMs, &created); err != nil {
			return nil, fmt.Errorf("scan action log row: %w", err)
		}
		e.Success = success != 0
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff and returns the count
// removed.
func (s *ActionLog) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM action_log WHERE created_at < ?`,
		before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune action log: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (s *ActionLog) Close() error {
	return s.db.Close()
}
