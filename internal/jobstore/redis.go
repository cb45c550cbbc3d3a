package jobstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// RedisStore persists jobs as JSON values with a server-side TTL, so
// expiry needs no janitor and records survive process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a job store over an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(jobID string) string {
	return "sitepress:job:" + jobID
}

func (s *RedisStore) Write(ctx context.Context, job *PublishJob, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return sperrors.Wrap(err, sperrors.CategoryInternal, sperrors.SeverityError, "marshal job")
	}
	if err := s.client.Set(ctx, jobKey(job.ID), data, ttl).Err(); err != nil {
		return sperrors.WrapRetryable(err, sperrors.CategoryStorage, sperrors.SeverityError, "write job")
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, jobID string) (*PublishJob, error) {
	data, err := s.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrJobNotFound(jobID)
		}
		return nil, sperrors.WrapRetryable(err, sperrors.CategoryStorage, sperrors.SeverityError, "read job")
	}
	var job PublishJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "decode job")
	}
	return &job, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
