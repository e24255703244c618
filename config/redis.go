package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// ConnectRedis initializes Redis connection
func ConnectRedis() {
	addr := GetEnv("REDIS_HOST", "localhost") + ":" + GetEnv("REDIS_PORT", "6379")
	password := GetEnv("REDIS_PASSWORD", "")

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx := context.Background()
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis connection failed, continuing without caching", "addr", addr, "err", err)
		RedisClient = nil // Set to nil so we can check availability
	} else {
		slog.Info("redis connected", "addr", addr)
	}
}

// GetRedis returns the Redis client instance
func GetRedis() *redis.Client {
	return RedisClient
}
