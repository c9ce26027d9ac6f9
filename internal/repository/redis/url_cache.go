package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DestinationCache keeps shortId -> destination lookups for the redirect path.
type DestinationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDestinationCache(client *redis.Client, ttl time.Duration) *DestinationCache {
	return &DestinationCache{client: client, ttl: ttl}
}

func key(shortID string) string {
	return fmt.Sprintf("url:%s", shortID)
}

// GetDestination reports ok=false on a miss. Any other failure is returned
// so the caller can fall back to the store.
func (c *DestinationCache) GetDestination(ctx context.Context, shortID string) (string, bool, error) {
	dest, err := c.client.Get(ctx, key(shortID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return dest, true, nil
}

func (c *DestinationCache) SetDestination(ctx context.Context, shortID, destination string) error {
	return c.client.Set(ctx, key(shortID), destination, c.ttl).Err()
}
