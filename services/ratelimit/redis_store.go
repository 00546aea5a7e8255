package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCounterStore shares window counters across processes.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func key(identity string, bucket int64) string {
	return fmt.Sprintf("rate:%s:%d", identity, bucket)
}

func (s *RedisCounterStore) Incr(ctx context.Context, identity string, bucket int64, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key(identity, bucket))
	pipe.Expire(ctx, key(identity, bucket), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to bump rate counter: %w", err)
	}
	return incr.Val(), nil
}

func (s *RedisCounterStore) Get(ctx context.Context, identity string, bucket int64) (int64, error) {
	val, err := s.client.Get(ctx, key(identity, bucket)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rate counter: %w", err)
	}
	return val, nil
}
