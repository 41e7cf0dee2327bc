// Package journal persists per-file processing outcomes to SQLite.
//
// The journal is an observability record, not a cache: the pipeline never
// consults it to decide whether a file needs work, and reprocessing a file
// appends a new row rather than updating an old one.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rivelin/scribe/dbopen"
	"github.com/rivelin/scribe/idgen"
)

// Entry statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Entry is one recorded processing outcome.
type Entry struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Type        string `json:"type,omitempty"`
	Output      string `json:"output,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	ProcessedAt int64  `json:"processed_at"` // unix milliseconds
}

// Summary aggregates the journal by status.
type Summary struct {
	Total   int64 `json:"total"`
	OK      int64 `json:"ok"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
	LastAt  int64 `json:"last_at"` // processed_at of the newest row, 0 when empty
}

// Schema for the journal_entries table. Applied by Open; embed it in your
// own schema management when wrapping an existing database with New.
const Schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id           TEXT PRIMARY KEY,
    path         TEXT NOT NULL,
    doc_type     TEXT NOT NULL DEFAULT '',
    output       TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    error        TEXT NOT NULL DEFAULT '',
    duration_ms  INTEGER NOT NULL DEFAULT 0,
    processed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_time ON journal_entries(processed_at DESC);
CREATE INDEX IF NOT EXISTS idx_journal_status ON journal_entries(status);
`

// Journal records processing outcomes to a SQLite database.
type Journal struct {
	db  *sql.DB
	ids idgen.Generator
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator overrides the entry ID strategy.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.ids = gen }
}

// Open opens (creating if needed) the journal database at path and applies
// the schema. Parent directories are created as required.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return New(db, opts...), nil
}

// New wraps an already-opened database. The caller is responsible for having
// applied Schema (dbopen.WithSchema or a manual Exec).
func New(db *sql.DB, opts ...Option) *Journal {
	j := &Journal{
		db:  db,
		ids: idgen.Prefixed("evt_", idgen.Default),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record inserts an entry, filling ID, ProcessedAt and Status when unset.
// An entry carrying an Error defaults to StatusFailed, otherwise StatusOK.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = j.ids()
	}
	if e.ProcessedAt == 0 {
		e.ProcessedAt = time.Now().UnixMilli()
	}
	if e.Status == "" {
		if e.Error != "" {
			e.Status = StatusFailed
		} else {
			e.Status = StatusOK
		}
	}
	_, err := dbopen.Exec(ctx, j.db,
		`INSERT INTO journal_entries (id, path, doc_type, output, status, error, duration_ms, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Type, e.Output, e.Status, e.Error, e.DurationMS, e.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Path, err)
	}
	return nil
}

// Recent returns journal entries, newest first. limit <= 0 means 50.
func (j *Journal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, path, doc_type, output, status, error, duration_ms, processed_at
		FROM journal_entries
		ORDER BY processed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.Type, &e.Output,
			&e.Status, &e.Error, &e.DurationMS, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// Summary returns aggregate counters for the journal.
func (j *Journal) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&s.Total)
	if err != nil {
		return nil, fmt.Errorf("journal: summary: %w", err)
	}
	err = j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE status = ?`, StatusOK).Scan(&s.OK)
	if err != nil {
		return nil, fmt.Errorf("journal: summary: %w", err)
	}
	err = j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE status = ?`, StatusSkipped).Scan(&s.Skipped)
	if err != nil {
		return nil, fmt.Errorf("journal: summary: %w", err)
	}
	err = j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE status = ?`, StatusFailed).Scan(&s.Failed)
	if err != nil {
		return nil, fmt.Errorf("journal: summary: %w", err)
	}
	err = j.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(processed_at), 0) FROM journal_entries`).Scan(&s.LastAt)
	if err != nil {
		return nil, fmt.Errorf("journal: summary: %w", err)
	}
	return &s, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
