// Package audit records mutating storage operations in a local SQLite
// database so operators can answer "what wrote or deleted this path, and
// when" without backend-side logging.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded operation.
type Entry struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Backend   string    `json:"backend"`
	Path      string    `json:"path"`
	Locator   string    `json:"locator,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder appends operation entries to the audit database.
type Recorder struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	op TEXT NOT NULL,
	backend TEXT NOT NULL,
	path TEXT NOT NULL,
	locator TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_operations_path ON operations(path);
`

// Open opens (or creates) the audit database at dsn.
func Open(dsn string) (*Recorder, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Record appends one operation entry.
func (r *Recorder) Record(ctx context.Context, op, backend, path, locator string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operations (op, backend, path, locator, created_at) VALUES (?, ?, ?, ?, ?)`,
		op, backend, path, locator, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record operation: %w", err)
	}
	return nil
}

// Recent returns the newest limit entries, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, op, backend, path, locator, created_at
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Op, &e.Backend, &e.Path, &e.Locator, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
