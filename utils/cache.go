package utils

import (
	"context"
	"fmt"
	"time"

	"slotbook/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient opens a client on the given logical database and checks
// it with a ping.
func NewRedisClient(ctx context.Context, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}

// NewCacheClient returns the client used for read caches.
func NewCacheClient(ctx context.Context) (*redis.Client, error) {
	return NewRedisClient(ctx, config.AppConfig.RedisCacheDB)
}
