// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/pkg/types"
)

// storeFactories builds every store backend that runs without external
// services.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dedup.db"))
			require.NoError(t, err)
			return s
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			return NewRedisStoreWithClient(rdb, "test")
		},
	}
}

func entry(key, source string, at time.Time) types.DedupEntry {
	return types.DedupEntry{
		IdentityKey:     key,
		FirstSeenSource: source,
		FirstSeenAt:     at,
		Title:           "Title " + key,
		URL:             "https://example.org/" + key,
		Category:        types.CategoryAcademic,
		Keyword:         "graphs",
		RunID:           "run-1",
	}
}

func TestStoreContract(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer s.Close()

			ok, err := s.Contains(ctx, "k1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.RecordSeen(ctx, entry("k1", "arxiv", base)))
			require.NoError(t, s.RecordSeen(ctx, entry("k2", "crossref", base.Add(time.Minute))))

			ok, err = s.Contains(ctx, "k1")
			require.NoError(t, err)
			assert.True(t, ok)

			// Recording a known key keeps the first entry.
			require.NoError(t, s.RecordSeen(ctx, entry("k1", "semantic_scholar", base.Add(time.Hour))))

			keys, err := s.LoadAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]struct{}{"k1": {}, "k2": {}}, keys)

			entries, err := s.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "k1", entries[0].IdentityKey)
			assert.Equal(t, "arxiv", entries[0].FirstSeenSource)
			assert.True(t, base.Equal(entries[0].FirstSeenAt))
			assert.Equal(t, "https://example.org/k1", entries[0].URL)
			assert.Equal(t, types.CategoryAcademic, entries[0].Category)
			assert.False(t, entries[0].Downloaded())

			err = s.MarkDownloaded(ctx, "k1", "  ")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyPath))
			entries, err = s.Entries(ctx)
			require.NoError(t, err)
			assert.False(t, entries[0].Downloaded(), "rejected path leaves the entry pending")

			require.NoError(t, s.MarkDownloaded(ctx, "k1", "academic/k1.pdf"))

			pending, err := Pending(ctx, s)
			require.NoError(t, err)
			require.Len(t, pending, 1)
			assert.Equal(t, "k2", pending[0].IdentityKey)

			entries, err = s.Entries(ctx)
			require.NoError(t, err)
			assert.Equal(t, "academic/k1.pdf", entries[0].DownloadedPath)
			assert.False(t, entries[0].DownloadedAt.IsZero())

			err = s.MarkDownloaded(ctx, "missing", "x.pdf")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownKey))
			var se *StoreError
			assert.True(t, errors.As(err, &se))

			require.NoError(t, s.Clear(ctx))
			keys, err = s.LoadAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStoreConcurrentRecordSeen(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer s.Close()

			var wg sync.WaitGroup
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < 20; i++ {
						// Workers overlap on every key.
						key := fmt.Sprintf("k%02d", i)
						assert.NoError(t, s.RecordSeen(ctx, entry(key, fmt.Sprintf("w%d", w), time.Now())))
					}
				}(w)
			}
			wg.Wait()

			keys, err := s.LoadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, keys, 20)
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dedup.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordSeen(ctx, entry("k1", "arxiv", time.Now())))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Contains(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshotIsIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.RecordSeen(ctx, entry("k1", "arxiv", time.Now())))

	snap, err := Snapshot(ctx, s)
	require.NoError(t, err)
	require.NoError(t, snap.RecordSeen(ctx, entry("k2", "arxiv", time.Now())))

	ok, err := s.Contains(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = snap.Contains(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.StoreConfig{Backend: types.StoreSQLite, Path: filepath.Join(t.TempDir(), "nested", "dedup.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, types.StoreConfig{Backend: types.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, types.StoreConfig{Backend: "cassandra"})
	assert.Error(t, err)

	_, err = Open(ctx, types.StoreConfig{Backend: types.StoreSQLite})
	assert.Error(t, err)
}
