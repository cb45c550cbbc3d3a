// Package jobstore tracks publish jobs by id. Jobs are short-lived status
// records, not a work queue: the pipeline writes checkpoints as it runs and
// clients poll until the job reaches a terminal state. Records expire after
// a TTL; an expired job is indistinguishable from one that never existed.
package jobstore

import (
	"context"
	"time"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// Status is the lifecycle state of a publish job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the status absorbs further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PublishJob is the externally visible state of one publish request.
type PublishJob struct {
	ID            string    `json:"id"`
	WebsiteID     string    `json:"website_id"`
	Status        Status    `json:"status"`
	Progress      int       `json:"progress"`
	Message       string    `json:"message"`
	DeploymentURL string    `json:"deployment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists publish jobs with a TTL.
type Store interface {
	// Write upserts the job and refreshes its TTL.
	Write(ctx context.Context, job *PublishJob, ttl time.Duration) error

	// Read returns the job, or a not-found error if it never existed
	// or has expired.
	Read(ctx context.Context, jobID string) (*PublishJob, error)

	// Close releases any resources held by the store.
	Close() error
}

// ErrJobNotFound builds the canonical not-found error for a job id.
func ErrJobNotFound(jobID string) error {
	return sperrors.NotFoundError("job not found: " + jobID)
}
