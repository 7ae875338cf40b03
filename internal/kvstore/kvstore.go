// Package kvstore defines the shared counter/lock store consumed by the
// purchase safety components. Five primitives are sufficient; any key-value
// store offering them is interchangeable, the store handle is passed
// explicitly through component constructors.
package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal key-value surface backing locks and counters.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetIfAbsent writes the key only when it does not exist, with a TTL.
	// Returns true when the write happened.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// IncrBy atomically adds delta and returns the post-increment value.
	// Missing keys start at zero.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	// Expire sets the key TTL; returns false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Del removes the key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
}

// RedisStore implements Store on go-redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return s.client.IncrBy(ctx, key, delta).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.Expire(ctx, key, ttl).Result()
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
