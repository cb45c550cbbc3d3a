package generator

import (
	"encoding/json"
	"fmt"
)

// IslandEntry records one dynamic component occurrence: its type, the page
// slug it appears on, and the props the hydration endpoint will receive.
type IslandEntry struct {
	Type  string         `json:"type"`
	Page  string         `json:"page"`
	Props map[string]any `json:"props"`
}

// IslandManifest is the per-deployment index of every dynamic island across
// all pages, in page order then DOM order. It is derived output only and is
// never read back during generation.
type IslandManifest struct {
	Entries []IslandEntry
}

// Append records an island occurrence.
func (m *IslandManifest) Append(entry IslandEntry) {
	m.Entries = append(m.Entries, entry)
}

// Count returns the total number of island occurrences.
func (m *IslandManifest) Count() int {
	return len(m.Entries)
}

// CountForPage returns the number of islands on a single page.
func (m *IslandManifest) CountForPage(slug string) int {
	n := 0
	for _, e := range m.Entries {
		if e.Page == slug {
			n++
		}
	}
	return n
}

// ToJSON serializes the manifest as the deployed /_dynamic.json document.
// An empty manifest serializes as an empty array, not null.
func (m *IslandManifest) ToJSON() ([]byte, error) {
	entries := m.Entries
	if entries == nil {
		entries = []IslandEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal island manifest: %w", err)
	}
	return data, nil
}
