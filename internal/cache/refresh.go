package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// refreshTokenPrefix is the Redis key prefix for refresh tokens.
const refreshTokenPrefix = "refresh:"

// StoreRefreshToken maps an opaque refresh token to a user ID with a TTL.
func (c *Cache) StoreRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	key := refreshTokenPrefix + token
	if err := c.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken atomically looks up and deletes a refresh token,
// returning the user ID it belonged to. Tokens are single use: the
// caller is expected to issue a replacement on success. Returns an
// empty string for unknown or expired tokens.
func (c *Cache) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	key := refreshTokenPrefix + token

	userID, err := c.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("consume refresh token: %w", err)
	}

	return userID, nil
}

// RevokeRefreshToken removes a refresh token before its TTL expires.
func (c *Cache) RevokeRefreshToken(ctx context.Context, token string) error {
	return c.client.Del(ctx, refreshTokenPrefix+token).Err()
}
