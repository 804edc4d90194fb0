package store

import (
	"context"
	"encoding/json"
	"fmt"

	"briefcast/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey      = "queue:harvest"
	recentKey     = "list:recent"
	digestListKey = "list:digests"
	recentCap     = 199 // keep the last 200 items
	digestCap     = 49
)

// HybridStore combines Redis (metadata, recency lists, job queue) and Badger
// (heavy archived article content).
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
}

// NewHybridStore initializes databases.
// Pass badgerPath="" to run in "Redis-Only" mode (for CLI tools).
func NewHybridStore(redisAddr string, badgerPath string) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// SaveItem writes item metadata to Redis and archived content, if any, to
// Badger. Newly extracted items are prepended to the recency list.
func (s *HybridStore) SaveItem(ctx context.Context, item *model.Item) error {
	meta := *item
	meta.Content = ""

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("item:%s", item.ID)
	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, key, data, 0)

	// First save of an item lands it on the recency list; re-saves
	// (status flips, archived content) must not duplicate it.
	if exists == 0 {
		pipe.LPush(ctx, recentKey, item.ID.String())
		pipe.LTrim(ctx, recentKey, 0, recentCap)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if item.Content != "" {
		if s.db == nil {
			return fmt.Errorf("cannot save content: badgerdb is not initialized")
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(item.ID.String()), []byte(item.Content))
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// GetItem combines metadata from Redis with archived content from Badger.
func (s *HybridStore) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	val, err := s.rdb.Get(ctx, fmt.Sprintf("item:%s", id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var item model.Item
	if err := json.Unmarshal(val, &item); err != nil {
		return nil, err
	}

	if s.db != nil {
		err = s.db.View(func(txn *badger.Txn) error {
			entry, err := txn.Get([]byte(id.String()))
			if err != nil {
				return err
			}
			return entry.Value(func(val []byte) error {
				item.Content = string(val)
				return nil
			})
		})

		if err != nil && err != badger.ErrKeyNotFound {
			return nil, err
		}
	}

	return &item, nil
}

// ListItems fetches the most recently extracted items from Redis.
func (s *HybridStore) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	ids, err := s.rdb.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var items []model.Item
	for _, idStr := range ids {
		val, err := s.rdb.Get(ctx, fmt.Sprintf("item:%s", idStr)).Bytes()
		if err == redis.Nil {
			continue
		}

		var it model.Item
		if err := json.Unmarshal(val, &it); err == nil {
			items = append(items, it)
		}
	}

	return items, nil
}

// UpdateStatus is a helper to just flip the status flag in Redis
func (s *HybridStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ItemStatus) error {
	val, err := s.rdb.Get(ctx, fmt.Sprintf("item:%s", id)).Bytes()
	if err != nil {
		return err
	}

	var item model.Item
	if err := json.Unmarshal(val, &item); err != nil {
		return err
	}

	item.Status = status
	return s.SaveItem(ctx, &item)
}

// SaveDigest stores a per-day synthesis keyed by feed and date.
func (s *HybridStore) SaveDigest(ctx context.Context, digest *model.Digest) error {
	data, err := json.Marshal(digest)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("digest:%s:%s", digest.Feed, digest.Date)
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.LPush(ctx, digestListKey, fmt.Sprintf("%s:%s", digest.Feed, digest.Date))
	pipe.LTrim(ctx, digestListKey, 0, digestCap)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *HybridStore) GetDigest(ctx context.Context, feed, date string) (*model.Digest, error) {
	val, err := s.rdb.Get(ctx, fmt.Sprintf("digest:%s:%s", feed, date)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var digest model.Digest
	if err := json.Unmarshal(val, &digest); err != nil {
		return nil, err
	}
	return &digest, nil
}

func (s *HybridStore) ListDigests(ctx context.Context, limit int) ([]model.Digest, error) {
	keys, err := s.rdb.LRange(ctx, digestListKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var digests []model.Digest
	for _, k := range keys {
		val, err := s.rdb.Get(ctx, "digest:"+k).Bytes()
		if err == redis.Nil {
			continue
		}

		var d model.Digest
		if err := json.Unmarshal(val, &d); err == nil {
			digests = append(digests, d)
		}
	}

	return digests, nil
}

// EnqueueFeed pushes a feed slug onto the harvest queue.
func (s *HybridStore) EnqueueFeed(ctx context.Context, slug string) error {
	return s.rdb.LPush(ctx, queueKey, slug).Err()
}

// PopFeed waits for a job in the Redis queue (Blocking)
func (s *HybridStore) PopFeed(ctx context.Context) (string, error) {
	// 0 means wait forever until an item arrives
	result, err := s.rdb.BRPop(ctx, 0, queueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}
