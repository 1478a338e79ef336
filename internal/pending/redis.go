package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending-order:"

// RedisStore keeps markers as JSON values that expire after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Save(ctx context.Context, m Marker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode pending order: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(m.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save pending order: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Marker, error) {
	raw, err := s.rdb.Get(ctx, redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Marker{}, ErrNotFound
		}
		return Marker{}, fmt.Errorf("get pending order: %w", err)
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return Marker{}, fmt.Errorf("decode pending order: %w", err)
	}
	return m, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete pending order: %w", err)
	}
	return nil
}
