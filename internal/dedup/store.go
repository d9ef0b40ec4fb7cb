// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup persists the identity keys docufetch has already seen, so
// that a document is planned for download at most once across runs.
//
// A key is recorded when its document first enters a download plan and is
// marked downloaded only after the file has been written. Entries without a
// download path stay out of future plans but remain eligible for retry.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// ErrUnknownKey is returned by MarkDownloaded for keys never recorded.
var ErrUnknownKey = errors.New("unknown identity key")

// ErrEmptyPath is returned by MarkDownloaded when no download path is given.
var ErrEmptyPath = errors.New("empty download path")

// checkPath rejects a blank download path.
func checkPath(key, path string) error {
	if strings.TrimSpace(path) == "" {
		return &StoreError{Op: "mark downloaded", Key: key, Err: ErrEmptyPath}
	}
	return nil
}

// StoreError reports a store operation that did not complete.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("dedup %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("dedup %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is a durable set of identity keys with one entry per key.
// Implementations are safe for concurrent use and serialize their writes.
type Store interface {
	// Contains reports whether key has been recorded.
	Contains(ctx context.Context, key string) (bool, error)

	// RecordSeen stores entry if its key is new. Recording a known key is a
	// no-op that leaves the existing entry untouched.
	RecordSeen(ctx context.Context, entry types.DedupEntry) error

	// MarkDownloaded sets the download path of a recorded key.
	MarkDownloaded(ctx context.Context, key, path string) error

	// LoadAll returns every recorded key.
	LoadAll(ctx context.Context) (map[string]struct{}, error)

	// Entries returns every entry ordered by first-seen time.
	Entries(ctx context.Context) ([]types.DedupEntry, error)

	// Clear deletes every entry.
	Clear(ctx context.Context) error

	Close() error
}

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case types.StoreSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store: no database path configured")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		return NewSQLiteStore(cfg.Path)
	case types.StoreRedis:
		return NewRedisStore(ctx, cfg)
	case types.StorePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case types.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Pending returns the entries that were seen but never downloaded.
func Pending(ctx context.Context, s Store) ([]types.DedupEntry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	var pending []types.DedupEntry
	for _, e := range entries {
		if !e.Downloaded() {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// Snapshot copies every entry of s into a new MemoryStore. Previews run
// against a snapshot so they never write to the real store.
func Snapshot(ctx context.Context, s Store) (*MemoryStore, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	m := NewMemoryStore()
	for _, e := range entries {
		m.entries[e.IdentityKey] = e
	}
	return m, nil
}

func sortEntries(entries []types.DedupEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FirstSeenAt.Equal(entries[j].FirstSeenAt) {
			return entries[i].IdentityKey < entries[j].IdentityKey
		}
		return entries[i].FirstSeenAt.Before(entries[j].FirstSeenAt)
	})
}
