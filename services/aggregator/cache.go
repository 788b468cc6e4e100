package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice/models"

	"github.com/go-redis/redis/v8"
)

// ResultCache stores the merged, unfiltered items of a pass. Search, sort and
// pagination always run on top of the cached items.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.UnifiedItem, bool, error)
	Set(ctx context.Context, key string, items []models.UnifiedItem) error
}

const cacheKeyPrefix = "aggregation:v1:"

// cacheKey covers everything that changes what the sources return.
func cacheKey(filters models.FilterState) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, filters.Kind, filters.StatusFilter())
}

// RedisResultCache keeps merged results in Redis for a fixed TTL.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func (c *RedisResultCache) Get(ctx context.Context, key string) ([]models.UnifiedItem, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []models.UnifiedItem
	if err := json.Unmarshal(val, &items); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next Set.
		return nil, false, nil
	}
	return items, true, nil
}

func (c *RedisResultCache) Set(ctx context.Context, key string, items []models.UnifiedItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
