package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func revokedKey(jti string) string { return "revoked:" + jti }

// Revoke 把 token id 放进黑名单直到 token 过期
func (c *Cache) Revoke(ctx context.Context, jti string, until time.Time) error {
	if !c.enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return c.RDB.Set(ctx, c.key(revokedKey(jti)), "1", ttl).Err()
}

func (c *Cache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !c.enabled() || jti == "" {
		return false, nil
	}
	err := c.RDB.Get(ctx, c.key(revokedKey(jti))).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
