// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/docufetch/pkg/types"
)

const defaultRedisPrefix = "docufetch"

// recordScript adds the key to the index set and writes the entry hash
// only when the key was not already a member.
var recordScript = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[2], unpack(ARGV, 2))
	return 1
end
return 0
`)

// markScript sets the download fields of a recorded key and returns 0 for
// unknown keys.
var markScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], 'downloaded_path', ARGV[2], 'downloaded_at', ARGV[3])
return 1
`)

// RedisStore keeps entries in Redis so several hosts can share one history.
// Each entry is a hash; a set indexes the known keys.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	mu     sync.Mutex // serializes writes from this process
}

// NewRedisStore connects to the server named in cfg and pings it.
func NewRedisStore(ctx context.Context, cfg types.StoreConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisStoreWithClient(rdb, cfg.RedisPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) indexKey() string { return s.prefix + ":keys" }
func (s *RedisStore) entryKey(key string) string { return s.prefix + ":entry:" + key }

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) Contains(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.indexKey(), key).Result()
	if err != nil {
		return false, &StoreError{Op: "contains", Key: key, Err: err}
	}
	return ok, nil
}

func (s *RedisStore) RecordSeen(ctx context.Context, e types.DedupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := []any{
		e.IdentityKey,
		"identity_key", e.IdentityKey,
		"first_seen_source", e.FirstSeenSource,
		"first_seen_at", formatTime(e.FirstSeenAt),
		"title", e.Title,
		"url", e.URL,
		"pdf_url", e.PDFURL,
		"category", string(e.Category),
		"keyword", e.Keyword,
		"run_id", e.RunID,
	}
	err := recordScript.Run(ctx, s.rdb, []string{s.indexKey(), s.entryKey(e.IdentityKey)}, args...).Err()
	if err != nil {
		return &StoreError{Op: "record seen", Key: e.IdentityKey, Err: err}
	}
	return nil
}

func (s *RedisStore) MarkDownloaded(ctx context.Context, key, path string) error {
	if err := checkPath(key, path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := markScript.Run(ctx, s.rdb, []string{s.indexKey(), s.entryKey(key)},
		key, path, formatTime(time.Now())).Int()
	if err != nil {
		return &StoreError{Op: "mark downloaded", Key: key, Err: err}
	}
	if n == 0 {
		return &StoreError{Op: "mark downloaded", Key: key, Err: ErrUnknownKey}
	}
	return nil
}

func (s *RedisStore) LoadAll(ctx context.Context) (map[string]struct{}, error) {
	members, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	keys := make(map[string]struct{}, len(members))
	for _, m := range members {
		keys[m] = struct{}{}
	}
	return keys, nil
}

func (s *RedisStore) Entries(ctx context.Context) ([]types.DedupEntry, error) {
	members, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = p.HGetAll(ctx, s.entryKey(m))
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Op: "entries", Err: err}
	}

	entries := make([]types.DedupEntry, 0, len(members))
	for i, cmd := range cmds {
		h := cmd.Val()
		entries = append(entries, types.DedupEntry{
			IdentityKey:     members[i],
			FirstSeenSource: h["first_seen_source"],
			FirstSeenAt:     parseTime(h["first_seen_at"]),
			DownloadedPath:  h["downloaded_path"],
			DownloadedAt:    parseTime(h["downloaded_at"]),
			Title:           h["title"],
			URL:             h["url"],
			PDFURL:          h["pdf_url"],
			Category:        types.Category(h["category"]),
			Keyword:         h["keyword"],
			RunID:           h["run_id"],
		})
	}
	sortEntries(entries)
	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, s.entryKey(m))
	}
	keys = append(keys, s.indexKey())
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	return nil
}
