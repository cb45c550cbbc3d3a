// Package routecache maps hostnames to website ids for the serving edge.
// Entries are written on publish and refreshed by the janitor; last writer
// wins. An explicit Invalidate hook lets domain management evict a route
// immediately instead of waiting for the TTL.
package routecache

import (
	"context"
	"time"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// Cache resolves route keys (see site.RouteKeyDomain and
// site.RouteKeySubdomain) to website ids.
type Cache interface {
	// Upsert writes a route, replacing any existing mapping for the key.
	Upsert(ctx context.Context, key, websiteID string, ttl time.Duration) error

	// Resolve returns the website id for a route key, or a not-found
	// error on miss.
	Resolve(ctx context.Context, key string) (string, error)

	// Invalidate removes a route. Removing an absent route is a no-op.
	Invalidate(ctx context.Context, key string) error
}

// ErrRouteNotFound builds the canonical miss error for a route key.
func ErrRouteNotFound(key string) error {
	return sperrors.NotFoundError("no route for " + key)
}
