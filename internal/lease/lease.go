// Package lease serializes publishes per website. A publish holds the
// website's lease for the duration of the pipeline; a second publish
// request for the same website while the lease is held is rejected up
// front instead of racing the first one in the object store.
package lease

import (
	"context"
	"time"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// Locker grants exclusive per-website publish leases.
type Locker interface {
	// Acquire takes the lease for a website. Returns a conflict error if
	// another publish already holds it. The TTL bounds how long a crashed
	// pipeline can block subsequent publishes.
	Acquire(ctx context.Context, websiteID string, ttl time.Duration) error

	// Release frees the lease. Releasing an unheld lease is a no-op.
	Release(ctx context.Context, websiteID string) error
}

// ErrHeld builds the canonical conflict error for a held lease.
func ErrHeld(websiteID string) error {
	return sperrors.ConflictError("publish already in progress for website " + websiteID)
}
