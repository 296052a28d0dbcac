// Package cache menyimpan daftar task per user di Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"todo-web/internal/models"
)

const (
	keyPrefix  = "tasks:user:"
	DefaultTTL = time.Hour
)

// RedisTaskCache menyimpan hasil ListGroupedByCategory sebagai JSON.
type RedisTaskCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTaskCache(client *redis.Client, ttl time.Duration) *RedisTaskCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTaskCache{client: client, ttl: ttl}
}

func key(userID int) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Get mengembalikan ok=false bila entry belum ada.
func (c *RedisTaskCache) Get(ctx context.Context, userID int) (models.TaskGroups, bool, error) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get task cache: %w", err)
	}

	var groups models.TaskGroups
	if err := json.Unmarshal(raw, &groups); err != nil {
		// Entry rusak dibuang supaya dibangun ulang dari database.
		c.client.Del(ctx, key(userID))
		return nil, false, fmt.Errorf("decode task cache: %w", err)
	}
	return groups, true, nil
}

func (c *RedisTaskCache) Set(ctx context.Context, userID int, groups models.TaskGroups) error {
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode task cache: %w", err)
	}
	if err := c.client.Set(ctx, key(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set task cache: %w", err)
	}
	return nil
}

func (c *RedisTaskCache) Invalidate(ctx context.Context, userID int) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate task cache: %w", err)
	}
	return nil
}

// InvalidateAll menghapus cache semua user, dipakai saat kategori baru dibuat.
func (c *RedisTaskCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan task cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate task cache: %w", err)
	}
	return nil
}
