package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peter-mghendi/clicker/internal/status"
)

const cacheKey = "clicker:status:latest"

// StatusCache persists the latest snapshot to Redis so a restarting hub can
// answer status queries before the first agent report arrives. All failures
// are soft: the hub degrades to "no cached status", never an error state.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatusCache connects to Redis at addr. The TTL bounds how stale a
// warm-started snapshot can be.
func NewStatusCache(addr string, ttl time.Duration) *StatusCache {
	return &StatusCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// Ping verifies the Redis connection.
func (c *StatusCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Save stores the snapshot under the cache key with the configured TTL.
func (c *StatusCache) Save(ctx context.Context, st status.PlaybackStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", cacheKey, err)
	}
	return nil
}

// Load returns the cached snapshot, or nil if none is stored.
func (c *StatusCache) Load(ctx context.Context) (*status.PlaybackStatus, error) {
	data, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", cacheKey, err)
	}
	var st status.PlaybackStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal cached status: %w", err)
	}
	return &st, nil
}

func (c *StatusCache) Close() error {
	return c.rdb.Close()
}
