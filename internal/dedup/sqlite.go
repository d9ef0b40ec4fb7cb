// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docufetch/pkg/types"
)

// SQLiteStore keeps entries in a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

// NewSQLiteStore opens or creates the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dedup_entries (
			identity_key TEXT PRIMARY KEY,
			first_seen_source TEXT NOT NULL,
			first_seen_at TEXT NOT NULL,
			downloaded_path TEXT NOT NULL DEFAULT '',
			downloaded_at TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			pdf_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			keyword TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dedup_downloaded ON dedup_entries(downloaded_path)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Contains(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM dedup_entries WHERE identity_key = ?`, key,
	).Scan(&n)
	if err != nil {
		return false, &StoreError{Op: "contains", Key: key, Err: err}
	}
	return n > 0, nil
}

func (s *SQLiteStore) RecordSeen(ctx context.Context, e types.DedupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO dedup_entries
		(identity_key, first_seen_source, first_seen_at, title, url, pdf_url, category, keyword, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO NOTHING`,
		e.IdentityKey, e.FirstSeenSource, formatTime(e.FirstSeenAt),
		e.Title, e.URL, e.PDFURL, string(e.Category), e.Keyword, e.RunID,
	)
	if err != nil {
		return &StoreError{Op: "record seen", Key: e.IdentityKey, Err: err}
	}
	return nil
}

func (s *SQLiteStore) MarkDownloaded(ctx context.Context, key, path string) error {
	if err := checkPath(key, path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE dedup_entries SET downloaded_path = ?, downloaded_at = ? WHERE identity_key = ?`,
		path, formatTime(time.Now()), key,
	)
	if err != nil {
		return &StoreError{Op: "mark downloaded", Key: key, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "mark downloaded", Key: key, Err: err}
	}
	if n == 0 {
		return &StoreError{Op: "mark downloaded", Key: key, Err: ErrUnknownKey}
	}
	return nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity_key FROM dedup_entries`)
	if err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &StoreError{Op: "load", Err: err}
		}
		keys[k] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	return keys, nil
}

func (s *SQLiteStore) Entries(ctx context.Context) ([]types.DedupEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity_key, first_seen_source, first_seen_at,
		downloaded_path, downloaded_at, title, url, pdf_url, category, keyword, run_id
		FROM dedup_entries ORDER BY first_seen_at, identity_key`)
	if err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}
	defer rows.Close()

	var entries []types.DedupEntry
	for rows.Next() {
		var (
			e                    types.DedupEntry
			seenAt, downloadedAt string
			category             string
		)
		if err := rows.Scan(&e.IdentityKey, &e.FirstSeenSource, &seenAt,
			&e.DownloadedPath, &downloadedAt, &e.Title, &e.URL, &e.PDFURL,
			&category, &e.Keyword, &e.RunID); err != nil {
			return nil, &StoreError{Op: "entries", Err: err}
		}
		e.FirstSeenAt = parseTime(seenAt)
		e.DownloadedAt = parseTime(downloadedAt)
		e.Category = types.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}
	return entries, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dedup_entries`); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	return nil
}

// formatTime renders t in a form that sorts lexically in time order.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
