package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSlotStore struct {
	rdb        *redis.Client
	sessionKey string
	ttl        time.Duration
}

// NewRedisSlotStore returns a slot store whose value expires after ttl, so the
// slot lives as long as the end user's session and no longer.
func NewRedisSlotStore(rdb *redis.Client, sessionKey string, ttl time.Duration) SlotStore {
	return &redisSlotStore{rdb: rdb, sessionKey: sessionKey, ttl: ttl}
}

func (r *redisSlotStore) slotKey() string {
	return fmt.Sprintf("zezin:session:%s:active_thread", r.sessionKey)
}

func (r *redisSlotStore) Get(ctx context.Context) (string, error) {
	value, err := r.rdb.Get(ctx, r.slotKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("could not read session slot: %w", err)
	}
	return value, nil
}

func (r *redisSlotStore) Set(ctx context.Context, value string) error {
	if err := r.rdb.Set(ctx, r.slotKey(), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("could not write session slot: %w", err)
	}
	return nil
}

func (r *redisSlotStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.slotKey()).Err(); err != nil {
		return fmt.Errorf("could not clear session slot: %w", err)
	}
	return nil
}
