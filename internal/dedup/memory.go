// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/docufetch/pkg/types"
)

// MemoryStore keeps entries in a map. It does not survive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]types.DedupEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]types.DedupEntry)}
}

func (m *MemoryStore) Contains(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok, nil
}

func (m *MemoryStore) RecordSeen(_ context.Context, entry types.DedupEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.IdentityKey]; !ok {
		m.entries[entry.IdentityKey] = entry
	}
	return nil
}

func (m *MemoryStore) MarkDownloaded(_ context.Context, key, path string) error {
	if err := checkPath(key, path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return &StoreError{Op: "mark downloaded", Key: key, Err: ErrUnknownKey}
	}
	e.DownloadedPath = path
	e.DownloadedAt = time.Now().UTC()
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) LoadAll(_ context.Context) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make(map[string]struct{}, len(m.entries))
	for k := range m.entries {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (m *MemoryStore) Entries(_ context.Context) ([]types.DedupEntry, error) {
	m.mu.RLock()
	entries := make([]types.DedupEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()
	sortEntries(entries)
	return entries, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]types.DedupEntry)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
