package utils

import (
	"context"
	"log"
	"time"

	"backoffice/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs the aggregation result cache.
	CacheClient *redis.Client
	// PubSubClient carries notification fan-out between API instances.
	PubSubClient *redis.Client
)

func newRedisClient(db int, purpose string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", purpose, err)
	}
	return client
}

// InitRedis initializes every Redis client used by the API.
func InitRedis() {
	GetCacheClient()
	GetPubSubClient()
}

// GetCacheClient returns the aggregation cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetPubSubClient returns the notification pub/sub client.
func GetPubSubClient() *redis.Client {
	if PubSubClient == nil {
		PubSubClient = newRedisClient(config.AppConfig.RedisPubSubDB, "PubSub")
	}
	return PubSubClient
}
