package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "player_state:"

// redisClient is the subset of redis.Cmdable the store needs
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisStore implements StateStore on Redis with a sliding TTL per key
type redisStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed state store; ttl <= 0 keeps keys forever
func NewRedisStore(client redisClient, ttl time.Duration) *redisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the value of key
func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key and refreshes its TTL
func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}
