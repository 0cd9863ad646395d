package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// profileTTL caps how long an idle profile's state survives. Every write
// refreshes it, so active shoppers never lose state.
const profileTTL = 90 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(profileID, key string) string {
	return "profile:" + profileID + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, profileID, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, redisKey(profileID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, profileID, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(profileID, key), value, profileTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, profileID, key string) error {
	if err := s.client.Del(ctx, redisKey(profileID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
