// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of harvest runs and the outcome of
// every file in them.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is one row of the runs table with its counts.
type RunRecord struct {
	ID         string
	IndexURL   string
	DestDir    string
	Started    time.Time
	Finished   time.Time
	Downloaded int
	Skipped    int
	Failed     int
}

// FileRecord is one row of the files table.
type FileRecord struct {
	URL      string
	Filename string
	Path     string
	Bytes    int64
	Status   types.DownloadStatus
	Error    string
}

// Ledger is an open run history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			index_url TEXT NOT NULL,
			dest_dir TEXT NOT NULL,
			started TEXT NOT NULL,
			finished TEXT NOT NULL,
			downloaded INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			url TEXT NOT NULL,
			filename TEXT NOT NULL,
			path TEXT,
			bytes INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started)`,
		`CREATE INDEX IF NOT EXISTS idx_files_url ON files(url)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and all of its results in one transaction.
func (l *Ledger) Record(ctx context.Context, s types.Summary) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, index_url, dest_dir, started, finished, downloaded, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.IndexURL, s.DestDir,
		s.Started.UTC().Format(timeLayout), s.Finished.UTC().Format(timeLayout),
		s.Downloaded(), s.Skipped(), s.Failed(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, seq, url, filename, path, bytes, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range s.Results {
		_, err := stmt.ExecContext(ctx,
			s.RunID, i, r.Link.URL, r.Link.Filename, r.Path, r.Bytes, string(r.Status), r.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", r.Link.URL, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, index_url, dest_dir, started, finished, downloaded, skipped, failed
		 FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &r.IndexURL, &r.DestDir, &started, &finished,
			&r.Downloaded, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Started, _ = time.Parse(timeLayout, started)
		r.Finished, _ = time.Parse(timeLayout, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the results recorded for a run in link order.
func (l *Ledger) Files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT url, filename, COALESCE(path, ''), bytes, status, COALESCE(error, '')
		 FROM files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var status string
		if err := rows.Scan(&f.URL, &f.Filename, &f.Path, &f.Bytes, &status, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.Status = types.DownloadStatus(status)
		files = append(files, f)
	}
	return files, rows.Err()
}
