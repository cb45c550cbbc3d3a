package site

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by tests and local
// development seeds.
type MemoryRepository struct {
	mu       sync.RWMutex
	websites map[string]*Website
	pages    map[string][]Page
	domains  map[string][]DomainBinding
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		websites: make(map[string]*Website),
		pages:    make(map[string][]Page),
		domains:  make(map[string][]DomainBinding),
	}
}

// PutWebsite inserts or replaces a website with its pages and domains.
func (r *MemoryRepository) PutWebsite(w Website, pages []Page, domains []DomainBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := w
	r.websites[w.ID] = &cp
	r.pages[w.ID] = append([]Page(nil), pages...)
	r.domains[w.ID] = append([]DomainBinding(nil), domains...)
}

func (r *MemoryRepository) GetWebsite(_ context.Context, id string) (*Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.websites[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryRepository) Snapshot(_ context.Context, websiteID string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.websites[websiteID]
	if !ok {
		return nil, ErrNotFound
	}
	return &Snapshot{
		Website: *w,
		Pages:   append([]Page(nil), r.pages[websiteID]...),
		Domains: append([]DomainBinding(nil), r.domains[websiteID]...),
	}, nil
}

func (r *MemoryRepository) MarkPublished(_ context.Context, websiteID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.websites[websiteID]
	if !ok {
		return ErrNotFound
	}
	w.Status = StatusPublished
	w.PublishedAt = &at
	w.UpdatedAt = at
	return nil
}

func (r *MemoryRepository) ListRoutes(_ context.Context) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []Route
	for id, w := range r.websites {
		if w.Status != StatusPublished {
			continue
		}
		if w.Subdomain != "" {
			routes = append(routes, Route{Key: RouteKeySubdomain(w.Subdomain), WebsiteID: id})
		}
		for _, d := range r.domains[id] {
			if d.Verified {
				routes = append(routes, Route{Key: RouteKeyDomain(d.Domain), WebsiteID: id})
			}
		}
	}
	return routes, nil
}
