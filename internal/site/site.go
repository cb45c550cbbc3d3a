// Package site holds the website domain model consumed by the publish
// pipeline, and the repository surface for snapshot reads and publish-status
// writes. The editor and CRUD layers own these records; the pipeline only
// reads snapshots and flips publish status.
package site

import (
	"encoding/json"
	"fmt"
	"time"
)

// PublishStatus is the externally persisted lifecycle state of a website.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
)

// Website is the top-level site record.
type Website struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Subdomain   string        `json:"subdomain,omitempty"`
	CustomCSS   string        `json:"custom_css,omitempty"`
	CustomJS    string        `json:"custom_js,omitempty"`
	Status      PublishStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Page is a single page of a website with its component tree.
type Page struct {
	ID              string      `json:"id"`
	WebsiteID       string      `json:"website_id"`
	Slug            string      `json:"slug"` // "/" for the home page, "/about" otherwise
	Title           string      `json:"title,omitempty"`
	MetaDescription string      `json:"meta_description,omitempty"`
	Components      []Component `json:"components"`
}

// Component is one node of a page's component tree. Props are opaque to the
// pipeline; only the renderer for the concrete type interprets them.
type Component struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Component    `json:"children,omitempty"`
}

// DomainBinding associates a custom hostname with a website. Verification is
// owned by the external domain-verification service; the pipeline only reads
// the flag.
type DomainBinding struct {
	Domain    string `json:"domain"`
	WebsiteID string `json:"website_id"`
	Verified  bool   `json:"verified"`
}

// Snapshot is the read-only input to one publish: the website, all of its
// pages, and its domain bindings, captured at request time. The pipeline must
// never mutate it.
type Snapshot struct {
	Website Website         `json:"website"`
	Pages   []Page          `json:"pages"`
	Domains []DomainBinding `json:"domains"`
}

// VerifiedDomain returns the binding for the given hostname if it exists and
// is verified.
func (s *Snapshot) VerifiedDomain(host string) (DomainBinding, bool) {
	for _, d := range s.Domains {
		if d.Domain == host && d.Verified {
			return d, true
		}
	}
	return DomainBinding{}, false
}

// HasDomain reports whether the hostname is bound to the website at all,
// verified or not.
func (s *Snapshot) HasDomain(host string) bool {
	for _, d := range s.Domains {
		if d.Domain == host {
			return true
		}
	}
	return false
}

// DecodeComponents parses a serialized component tree.
func DecodeComponents(raw []byte) ([]Component, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var components []Component
	if err := json.Unmarshal(raw, &components); err != nil {
		return nil, fmt.Errorf("decode component tree: %w", err)
	}
	return components, nil
}

// EncodeComponents serializes a component tree for persistence.
func EncodeComponents(components []Component) ([]byte, error) {
	data, err := json.Marshal(components)
	if err != nil {
		return nil, fmt.Errorf("encode component tree: %w", err)
	}
	return data, nil
}
