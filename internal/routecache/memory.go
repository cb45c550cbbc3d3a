package routecache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache for single-node deployments and
// tests. Expiry is checked lazily on Resolve.
type MemoryCache struct {
	mu     sync.RWMutex
	routes map[string]memoryRoute

	now func() time.Time
}

type memoryRoute struct {
	websiteID string
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory route cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		routes: make(map[string]memoryRoute),
		now:    time.Now,
	}
}

func (c *MemoryCache) Upsert(_ context.Context, key, websiteID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[key] = memoryRoute{websiteID: websiteID, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Resolve(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	route, ok := c.routes[key]
	c.mu.RUnlock()
	if !ok || c.now().After(route.expiresAt) {
		return "", ErrRouteNotFound(key)
	}
	return route.websiteID, nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.routes, key)
	return nil
}

// SetClock overrides the time source for expiry tests.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
