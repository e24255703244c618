package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"coral-embed-be/config"
)

// Cache TTL constants
const (
	CacheTTLEmbedCode   = 24 * time.Hour
	CacheTTLSettings    = 1 * time.Hour
	CacheTTLReportsList = 2 * time.Minute
	CacheTTLStoryDetail = 15 * time.Minute
	CacheTTLCommentList = 30 * time.Second
)

var ErrCacheUnavailable = errors.New("redis not available")

// IsRedisAvailable checks if Redis client is connected
func IsRedisAvailable() bool {
	return config.GetRedis() != nil
}

// CacheGet retrieves cached data and unmarshals it into dest
func CacheGet(ctx context.Context, key string, dest interface{}) error {
	if !IsRedisAvailable() {
		return ErrCacheUnavailable
	}

	val, err := config.GetRedis().Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// CacheSet stores data in cache with TTL
func CacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !IsRedisAvailable() {
		return ErrCacheUnavailable
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return config.GetRedis().Set(ctx, key, jsonData, ttl).Err()
}

// CacheDelete removes a single cache key
func CacheDelete(ctx context.Context, key string) error {
	if !IsRedisAvailable() {
		return nil // Silently skip if Redis not available
	}

	return config.GetRedis().Del(ctx, key).Err()
}

// CacheDeletePattern removes all keys matching pattern (e.g., "reports:*")
func CacheDeletePattern(ctx context.Context, pattern string) error {
	if !IsRedisAvailable() {
		return nil // Silently skip if Redis not available
	}

	client := config.GetRedis()

	var cursor uint64
	var keys []string
	for {
		scanKeys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		keys = append(keys, scanKeys...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		return client.Del(ctx, keys...).Err()
	}
	return nil
}

// BuildCacheKey builds a cache key from parts
func BuildCacheKey(parts ...interface{}) string {
	strs := make([]string, len(parts))
	for i, part := range parts {
		strs[i] = fmt.Sprintf("%v", part)
	}
	return strings.Join(strs, ":")
}

// EmbedCacheKey keys embed code by comment id and the update times of the
// rows it was built from
func EmbedCacheKey(commentID string, versions ...time.Time) string {
	parts := []interface{}{"embed", commentID}
	for _, v := range versions {
		parts = append(parts, v.UnixNano())
	}
	return BuildCacheKey(parts...)
}
