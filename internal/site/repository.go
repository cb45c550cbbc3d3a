package site

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a website does not exist.
var ErrNotFound = errors.New("website not found")

// Route is one routing cache binding derived from a published website.
type Route struct {
	Key       string // "domain:<host>" or "subdomain:<name>"
	WebsiteID string
}

// Repository is the persistence surface the publish pipeline depends on.
// Reads are snapshot-shaped; the only write is the post-publish status flip.
type Repository interface {
	// GetWebsite returns the website record, or ErrNotFound.
	GetWebsite(ctx context.Context, id string) (*Website, error)

	// Snapshot returns the full publish input for a website, or ErrNotFound.
	Snapshot(ctx context.Context, websiteID string) (*Snapshot, error)

	// MarkPublished sets status=published and the publish timestamp. Called
	// only after artifacts are confirmed uploaded.
	MarkPublished(ctx context.Context, websiteID string, at time.Time) error

	// ListRoutes returns the routing bindings of every published website
	// (verified custom domains and subdomains). Used by the cache janitor.
	ListRoutes(ctx context.Context) ([]Route, error)
}

// RouteKeyDomain builds the routing cache key for a custom domain.
func RouteKeyDomain(host string) string { return "domain:" + host }

// RouteKeySubdomain builds the routing cache key for a platform subdomain.
func RouteKeySubdomain(name string) string { return "subdomain:" + name }
