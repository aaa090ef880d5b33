package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the dedup store with Redis key existence.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: rdb}, nil
}

func seenKey(url string) string {
	return fmt.Sprintf("seen:%s", url)
}

// Exists reports whether url has a seen record.
func (s *RedisStore) Exists(ctx context.Context, url string) (bool, error) {
	n, err := s.client.Exists(ctx, seenKey(url)).Result()
	if err != nil {
		return false, fmt.Errorf("query seen record: %w", err)
	}
	return n == 1, nil
}

// Insert records url as seen. Records never expire: a listing stays seen.
func (s *RedisStore) Insert(ctx context.Context, url string) error {
	if err := s.client.Set(ctx, seenKey(url), "1", 0).Err(); err != nil {
		return fmt.Errorf("insert seen record: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
