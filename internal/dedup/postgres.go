// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdiddy/docufetch/pkg/types"
)

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps entries in a PostgreSQL table.
type PostgresStore struct {
	pool pgxPool
	mu   sync.Mutex // serializes writes
}

// NewPostgresStore connects to dsn and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store: no dsn configured")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the entries table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dedup_entries (
			identity_key      TEXT PRIMARY KEY,
			first_seen_source TEXT        NOT NULL,
			first_seen_at     TIMESTAMPTZ NOT NULL,
			downloaded_path   TEXT        NOT NULL DEFAULT '',
			downloaded_at     TIMESTAMPTZ,
			title             TEXT        NOT NULL DEFAULT '',
			url               TEXT        NOT NULL DEFAULT '',
			pdf_url           TEXT        NOT NULL DEFAULT '',
			category          TEXT        NOT NULL DEFAULT '',
			keyword           TEXT        NOT NULL DEFAULT '',
			run_id            TEXT        NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Contains(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM dedup_entries WHERE identity_key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, &StoreError{Op: "contains", Key: key, Err: err}
	}
	return exists, nil
}

func (s *PostgresStore) RecordSeen(ctx context.Context, e types.DedupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.pool.Exec(ctx, `INSERT INTO dedup_entries
		(identity_key, first_seen_source, first_seen_at, title, url, pdf_url, category, keyword, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (identity_key) DO NOTHING`,
		e.IdentityKey, e.FirstSeenSource, e.FirstSeenAt.UTC(),
		e.Title, e.URL, e.PDFURL, string(e.Category), e.Keyword, e.RunID,
	)
	if err != nil {
		return &StoreError{Op: "record seen", Key: e.IdentityKey, Err: err}
	}
	return nil
}

func (s *PostgresStore) MarkDownloaded(ctx context.Context, key, path string) error {
	if err := checkPath(key, path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.pool.Exec(ctx,
		`UPDATE dedup_entries SET downloaded_path = $1, downloaded_at = $2 WHERE identity_key = $3`,
		path, time.Now().UTC(), key,
	)
	if err != nil {
		return &StoreError{Op: "mark downloaded", Key: key, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &StoreError{Op: "mark downloaded", Key: key, Err: ErrUnknownKey}
	}
	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT identity_key FROM dedup_entries`)
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

func (s *PostgresStore) Entries(ctx context.Context) ([]types.DedupEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT identity_key, first_seen_source, first_seen_at,
		downloaded_path, downloaded_at, title, url, pdf_url, category, keyword, run_id
		FROM dedup_entries ORDER BY first_seen_at, identity_key`)
	if err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}
	defer rows.Close()

	var entries []types.DedupEntry
	for rows.Next() {
		var (
			e            types.DedupEntry
			downloadedAt *time.Time
			category     string
		)
		if err := rows.Scan(&e.IdentityKey, &e.FirstSeenSource, &e.FirstSeenAt,
			&e.DownloadedPath, &downloadedAt, &e.Title, &e.URL, &e.PDFURL,
			&category, &e.Keyword, &e.RunID); err != nil {
			return nil, &StoreError{Op: "entries", Err: err}
		}
		if downloadedAt != nil {
			e.DownloadedAt = *downloadedAt
		}
		e.Category = types.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}
	return entries, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.pool.Exec(ctx, `DELETE FROM dedup_entries`); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	return nil
}
