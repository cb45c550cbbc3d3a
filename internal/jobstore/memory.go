package jobstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for single-process deployments and
// tests. Expiry is checked lazily on read.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]memoryEntry

	// now is injectable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	job       PublishJob
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryStore) Write(_ context.Context, job *PublishJob, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = memoryEntry{job: *job, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Read(_ context.Context, jobID string) (*PublishJob, error) {
	m.mu.RLock()
	entry, ok := m.jobs[jobID]
	m.mu.RUnlock()
	if !ok || m.now().After(entry.expiresAt) {
		return nil, ErrJobNotFound(jobID)
	}
	job := entry.job
	return &job, nil
}

func (m *MemoryStore) Close() error { return nil }

// SetClock overrides the time source for expiry tests.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
