package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EnrichmentCache memoizes résumé excerpts per identity so chat requests
// do not reread the store or disk on every message. A nil client disables
// caching entirely.
type EnrichmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEnrichmentCache(client *redis.Client, ttl time.Duration) *EnrichmentCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &EnrichmentCache{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return "enrichment:" + id.String()
}

func (c *EnrichmentCache) Get(ctx context.Context, id uuid.UUID) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) || err != nil {
		return "", false
	}
	return val, true
}

func (c *EnrichmentCache) Set(ctx context.Context, id uuid.UUID, snippet string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key(id), snippet, c.ttl).Err()
}

// Invalidate drops a cached excerpt; the extraction worker calls this
// after filling in resume_text.
func (c *EnrichmentCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key(id)).Err()
}
