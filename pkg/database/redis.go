package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"todo-web/configs"
)

// ConnectRedis mengembalikan nil tanpa error bila REDIS_ADDR kosong.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
