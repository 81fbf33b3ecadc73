package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReplayCache implements ports.ReplayCache using Redis SET NX. It is the
// fast path for duplicate webhook suppression; the database transaction
// remains authoritative when Redis is unavailable or the key has expired.
type ReplayCache struct {
	client *goredis.Client
	prefix string
}

// NewReplayCache creates a new Redis-backed replay cache.
func NewReplayCache(client *goredis.Client) *ReplayCache {
	return &ReplayCache{
		client: client,
		prefix: "webhook:",
	}
}

// Seen reports whether the delivery key has already been processed.
func (c *ReplayCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis replay check: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the delivery key for ttl.
func (c *ReplayCache) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis replay mark: %w", err)
	}
	return nil
}
