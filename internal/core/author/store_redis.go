// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package author

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/encre-app/encre/internal/platform/constants"
)

// RedisCache implements [Cache] using Redis strings.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a Redis-backed author cache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(userID string) string {
	return constants.RedisPrefixAuthor + userID
}

/*
Get returns the cached author ID for userID.

Returns:
  - string: Author ID, or "" when absent or expired
  - error: Connectivity errors
*/
func (cache *RedisCache) Get(context context.Context, userID string) (string, error) {
	authorID, err := cache.client.Get(context, cacheKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_author_get_failed: %w", err)
	}
	return authorID, nil
}

// Set caches the mapping with a TTL.
func (cache *RedisCache) Set(context context.Context, userID, authorID string, ttl time.Duration) error {
	if err := cache.client.Set(context, cacheKey(userID), authorID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_author_set_failed: %w", err)
	}
	return nil
}
