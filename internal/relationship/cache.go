package relationship

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dueboard/backend/internal/models"
)

// StatusCache is a read-through redis cache for pair statuses. The store
// invalidates the pair's key on every mutation, so a stale status can survive
// at most one concurrent read. A nil *StatusCache is a valid no-op cache.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a cache over client. A nil client yields a nil
// cache, which disables caching entirely.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if client == nil {
		return nil
	}
	return &StatusCache{client: client, ttl: ttl}
}

func cacheKey(lo, hi uint) string {
	return fmt.Sprintf("relstatus:%d:%d", lo, hi)
}

// Get returns the cached status for the pair and whether it was present.
func (c *StatusCache) Get(ctx context.Context, userA, userB uint) (models.RelationshipStatus, bool) {
	if c == nil {
		return models.RelationshipNone, false
	}
	lo, hi := NormalizePair(userA, userB)
	val, err := c.client.Get(ctx, cacheKey(lo, hi)).Result()
	if err != nil {
		return models.RelationshipNone, false
	}
	return models.RelationshipStatus(val), true
}

// Set stores the pair's status, including the implicit "none" status so that
// repeated lookups for unrelated users also avoid the database.
func (c *StatusCache) Set(ctx context.Context, userA, userB uint, status models.RelationshipStatus) {
	if c == nil {
		return
	}
	lo, hi := NormalizePair(userA, userB)
	c.client.Set(ctx, cacheKey(lo, hi), string(status), c.ttl)
}

// Invalidate drops the pair's cached status.
func (c *StatusCache) Invalidate(ctx context.Context, userA, userB uint) {
	if c == nil {
		return
	}
	lo, hi := NormalizePair(userA, userB)
	c.client.Del(ctx, cacheKey(lo, hi))
}
