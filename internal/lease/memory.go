package lease

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker for single-node deployments and
// tests. Expired leases are reaped lazily on Acquire.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time

	now func() time.Time
}

// NewMemoryLocker creates an empty in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		leases: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, websiteID string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, ok := l.leases[websiteID]; ok && l.now().Before(expiry) {
		return ErrHeld(websiteID)
	}
	l.leases[websiteID] = l.now().Add(ttl)
	return nil
}

func (l *MemoryLocker) Release(_ context.Context, websiteID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, websiteID)
	return nil
}

// SetClock overrides the time source for expiry tests.
func (l *MemoryLocker) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
