package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crmhub/crm-system/internal/core/ports"
)

const statsPrefix = "crm:"

// StatsCache stores analytics snapshots as JSON strings with a TTL.
// Key format: crm:analytics:<name>
type StatsCache struct {
	client redis.UniversalClient
}

var _ ports.StatsCache = (*StatsCache)(nil)

func NewStatsCache(client redis.UniversalClient) *StatsCache {
	return &StatsCache{client: client}
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *StatsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, statsPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stats cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("stats cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("stats cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, statsPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}
