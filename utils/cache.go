package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"voicecal/config"
)

var (
	// SessionCacheClient backs the Redis dialogue-session store.
	SessionCacheClient *redis.Client
	// RateCacheClient backs the shared rate-governor counters.
	RateCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// GetSessionCacheClient returns the Redis client for dialogue sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB)
	}
	return SessionCacheClient
}

// GetRateCacheClient returns the Redis client for rate counters.
func GetRateCacheClient() *redis.Client {
	if RateCacheClient == nil {
		RateCacheClient = newRedisClient(config.AppConfig.RedisRateDB)
	}
	return RateCacheClient
}
