package lease

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// RedisLocker implements Locker with SET NX, giving exclusion across
// multiple publisher processes. The key's server-side TTL doubles as the
// crash recovery bound.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a locker over an existing redis client.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func leaseKey(websiteID string) string {
	return "sitepress:lease:" + websiteID
}

func (l *RedisLocker) Acquire(ctx context.Context, websiteID string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, leaseKey(websiteID), "1", ttl).Result()
	if err != nil {
		return sperrors.WrapRetryable(err, sperrors.CategoryStorage, sperrors.SeverityError, "acquire publish lease")
	}
	if !ok {
		return ErrHeld(websiteID)
	}
	return nil
}

func (l *RedisLocker) Release(ctx context.Context, websiteID string) error {
	if err := l.client.Del(ctx, leaseKey(websiteID)).Err(); err != nil {
		return sperrors.WrapRetryable(err, sperrors.CategoryStorage, sperrors.SeverityError, "release publish lease")
	}
	return nil
}
