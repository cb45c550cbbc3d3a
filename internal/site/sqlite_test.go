package site

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWebsite() (Website, []Page, []DomainBinding) {
	now := time.Unix(1700000000, 0).UTC()
	w := Website{
		ID:        "w1",
		OwnerID:   "u1",
		Name:      "Acme",
		Subdomain: "acme",
		CustomCSS: ".hero { color: red }",
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pages := []Page{
		{
			ID: "p1", WebsiteID: "w1", Slug: "/", Title: "Home",
			Components: []Component{
				{Type: "hero", Props: map[string]any{"heading": "Welcome"}},
				{Type: "product-list", Props: map[string]any{"category": "shoes"}},
			},
		},
		{ID: "p2", WebsiteID: "w1", Slug: "/about", Title: "About"},
	}
	domains := []DomainBinding{
		{Domain: "shop.example.com", WebsiteID: "w1", Verified: true},
		{Domain: "pending.example.com", WebsiteID: "w1", Verified: false},
	}
	return w, pages, domains
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	w, pages, domains := testWebsite()
	require.NoError(t, repo.SaveWebsite(ctx, w, pages, domains))

	snap, err := repo.Snapshot(ctx, "w1")
	require.NoError(t, err)

	assert.Equal(t, "Acme", snap.Website.Name)
	require.Len(t, snap.Pages, 2)
	assert.Equal(t, "/", snap.Pages[0].Slug)
	require.Len(t, snap.Pages[0].Components, 2)
	assert.Equal(t, "product-list", snap.Pages[0].Components[1].Type)
	assert.Equal(t, "shoes", snap.Pages[0].Components[1].Props["category"])
	require.Len(t, snap.Domains, 2)
}

func TestSQLiteGetWebsiteNotFound(t *testing.T) {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.GetWebsite(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteMarkPublished(t *testing.T) {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	w, pages, domains := testWebsite()
	require.NoError(t, repo.SaveWebsite(ctx, w, pages, domains))

	at := time.Unix(1700001000, 0).UTC()
	require.NoError(t, repo.MarkPublished(ctx, "w1", at))

	got, err := repo.GetWebsite(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, at, *got.PublishedAt)

	assert.ErrorIs(t, repo.MarkPublished(ctx, "ghost", at), ErrNotFound)
}

func TestSQLiteListRoutes(t *testing.T) {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	w, pages, domains := testWebsite()
	require.NoError(t, repo.SaveWebsite(ctx, w, pages, domains))

	// Unpublished websites contribute no routes.
	routes, err := repo.ListRoutes(ctx)
	require.NoError(t, err)
	assert.Empty(t, routes)

	require.NoError(t, repo.MarkPublished(ctx, "w1", time.Now()))
	routes, err = repo.ListRoutes(ctx)
	require.NoError(t, err)

	keys := make(map[string]string)
	for _, r := range routes {
		keys[r.Key] = r.WebsiteID
	}
	assert.Equal(t, "w1", keys["subdomain:acme"])
	assert.Equal(t, "w1", keys["domain:shop.example.com"])
	// Unverified domains never become routes.
	_, ok := keys["domain:pending.example.com"]
	assert.False(t, ok)
}

func TestSnapshotDomainHelpers(t *testing.T) {
	_, _, domains := testWebsite()
	snap := &Snapshot{Domains: domains}

	d, ok := snap.VerifiedDomain("shop.example.com")
	require.True(t, ok)
	assert.Equal(t, "w1", d.WebsiteID)

	_, ok = snap.VerifiedDomain("pending.example.com")
	assert.False(t, ok)
	assert.True(t, snap.HasDomain("pending.example.com"))
	assert.False(t, snap.HasDomain("unknown.example.com"))
}
