package routecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// RedisCache stores routes as plain string values with a server-side TTL,
// shared by every resolver process.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a route cache over an existing redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func routeKey(key string) string {
	return "sitepress:route:" + key
}

func (c *RedisCache) Upsert(ctx context.Context, key, websiteID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, routeKey(key), websiteID, ttl).Err(); err != nil {
		return sperrors.WrapRetryable(err, sperrors.CategoryCache, sperrors.SeverityError, "write route")
	}
	return nil
}

func (c *RedisCache) Resolve(ctx context.Context, key string) (string, error) {
	websiteID, err := c.client.Get(ctx, routeKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrRouteNotFound(key)
		}
		return "", sperrors.WrapRetryable(err, sperrors.CategoryCache, sperrors.SeverityError, "resolve route")
	}
	return websiteID, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, routeKey(key)).Err(); err != nil {
		return sperrors.WrapRetryable(err, sperrors.CategoryCache, sperrors.SeverityError, "invalidate route")
	}
	return nil
}
