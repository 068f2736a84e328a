package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"nekocare/internal/care"

	"github.com/redis/go-redis/v9"
)

const (
	keySnapshot = "care:snapshot:"
	keyVersion  = "care:snapshot:ver:"
)

// FeedCache caches the per-household care snapshot the feed is computed from.
// The feed itself depends on the request time and the caller's overlay, so
// only the raw rows are cached.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache returns a new FeedCache.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{rdb: rdb, ttl: ttl}
}

func snapshotKey(householdID int64) string {
	return keySnapshot + strconv.FormatInt(householdID, 10)
}

func versionKey(householdID int64) string {
	return keyVersion + strconv.FormatInt(householdID, 10)
}

// Get returns the cached snapshot; ok is false on a miss.
func (c *FeedCache) Get(ctx context.Context, householdID int64) (snap care.Snapshot, ok bool, err error) {
	b, err := c.rdb.Get(ctx, snapshotKey(householdID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return care.Snapshot{}, false, nil
	}
	if err != nil {
		return care.Snapshot{}, false, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return care.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Version returns the household's write counter. Read it before loading a
// snapshot and pass it to Set.
func (c *FeedCache) Version(ctx context.Context, householdID int64) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(householdID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores the snapshot unless the household was invalidated after
// version was read. stored is false when the snapshot was stale.
func (c *FeedCache) Set(ctx context.Context, snap care.Snapshot, version int64) (stored bool, err error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}
	vkey := versionKey(snap.HouseholdID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, snapshotKey(snap.HouseholdID), b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate drops the household's snapshot and bumps its version so that
// loads already in flight do not store what they read.
func (c *FeedCache) Invalidate(ctx context.Context, householdID int64) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, versionKey(householdID))
		p.Del(ctx, snapshotKey(householdID))
		return nil
	})
	return err
}
