// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver
)

// SQLiteStore persists jobs in a single-file sqlite database. The job body
// is stored as JSON with the status and enqueue time mirrored into columns
// for ordering and filtering.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	enqueued_at TEXT NOT NULL,
	data        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite job store: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create jobs schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Put inserts or replaces the job.
func (s *SQLiteStore) Put(ctx context.Context, job *Job) error {
	buf, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO jobs (id, status, enqueued_at, data) VALUES (?, ?, ?, ?)`,
		// fixed-width fraction keeps lexicographic order chronological
		job.ID.String(), string(job.Status), job.EnqueuedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"), buf,
	)
	if err != nil {
		return fmt.Errorf("put job: %w", err)
	}
	return nil
}

// Get returns the job or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	var buf []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM jobs WHERE id = ?`, id.String()).Scan(&buf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(buf, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Update applies fn inside a sqlite transaction.
func (s *SQLiteStore) Update(ctx context.Context, id uuid.UUID, fn func(*Job) error) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var buf []byte
	err = tx.QueryRowContext(ctx, `SELECT data FROM jobs WHERE id = ?`, id.String()).Scan(&buf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(buf, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if err := fn(&job); err != nil {
		return nil, err
	}
	out, err := json.Marshal(&job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, data = ? WHERE id = ?`,
		string(job.Status), out, id.String(),
	); err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &job, nil
}

// List returns all jobs ordered by enqueue time, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM jobs ORDER BY enqueued_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Job
	for rows.Next() {
		var buf []byte
		if err := rows.Scan(&buf); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		var job Job
		if err := json.Unmarshal(buf, &job); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
