package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/blob"
	"git.home.luguber.info/inful/sitepress/internal/config"
	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/generator"
	"git.home.luguber.info/inful/sitepress/internal/jobstore"
	"git.home.luguber.info/inful/sitepress/internal/lease"
	"git.home.luguber.info/inful/sitepress/internal/retry"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/site"
	"git.home.luguber.info/inful/sitepress/internal/uploader"
)

func fastPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 1)
}

type fixture struct {
	repo   *site.MemoryRepository
	store  *blob.MemoryStore
	jobs   *jobstore.MemoryStore
	leases *lease.MemoryLocker
	routes *routecache.MemoryCache
	events *captureEmitter
	pub    *Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   site.NewMemoryRepository(),
		store:  blob.NewMemoryStore(),
		jobs:   jobstore.NewMemoryStore(),
		leases: lease.NewMemoryLocker(),
		routes: routecache.NewMemoryCache(),
		events: &captureEmitter{},
	}
	gen := generator.New(nil, "https://api.sitepress.dev")
	up := uploader.New(f.store, uploader.Options{Policy: fastPolicy()})
	f.pub = New(f.repo, gen, up, f.jobs, f.leases, f.routes, Options{
		RootDomain: "sitepress.dev",
		Emitter:    f.events,
	})
	return f
}

func (f *fixture) seedWebsite(id, owner, subdomain string, domains ...site.DomainBinding) {
	f.repo.PutWebsite(site.Website{
		ID:        id,
		OwnerID:   owner,
		Name:      "Acme Store",
		Subdomain: subdomain,
		Status:    site.StatusDraft,
	}, []site.Page{
		{ID: "p1", WebsiteID: id, Slug: "/", Title: "Home", Components: []site.Component{
			{Type: "hero", Props: map[string]any{"heading": "Welcome"}},
			{Type: "product-list", Props: map[string]any{"category": "featured"}},
		}},
	}, domains)
}

func TestPublishToSubdomain(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")
	ctx := context.Background()

	result, err := f.pub.Publish(ctx, "w1", "u1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, "https://acme.sitepress.dev", result.DeploymentURL)

	f.pub.Wait()

	job, err := f.pub.JobStatus(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobstore.StatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "published", job.Message)
	assert.Equal(t, result.DeploymentURL, job.DeploymentURL)

	// Website flipped to published.
	w, err := f.repo.GetWebsite(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, site.StatusPublished, w.Status)
	require.NotNil(t, w.PublishedAt)

	// Route points at the website.
	got, err := f.routes.Resolve(ctx, site.RouteKeySubdomain("acme"))
	require.NoError(t, err)
	assert.Equal(t, "w1", got)

	// Release pointer is live.
	release, err := uploader.CurrentRelease(ctx, f.store, "w1")
	require.NoError(t, err)
	assert.NotEmpty(t, release.Paths)

	// started + completed events.
	types := f.events.types()
	assert.Equal(t, []events.EventType{events.EventPublishStarted, events.EventPublishCompleted}, types)
}

func TestPublishToVerifiedCustomDomain(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme",
		site.DomainBinding{Domain: "shop.example.com", WebsiteID: "w1", Verified: true})
	ctx := context.Background()

	result, err := f.pub.Publish(ctx, "w1", "u1", "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", result.DeploymentURL)

	f.pub.Wait()

	// Route key is the domain, not the subdomain.
	got, err := f.routes.Resolve(ctx, site.RouteKeyDomain("shop.example.com"))
	require.NoError(t, err)
	assert.Equal(t, "w1", got)
}

func TestPublishUnknownWebsite(t *testing.T) {
	f := newFixture(t)
	_, err := f.pub.Publish(context.Background(), "nope", "u1", "")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryNotFound))
}

func TestPublishNotOwned(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")

	_, err := f.pub.Publish(context.Background(), "w1", "intruder", "")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryNotFound))
	assert.Empty(t, f.events.types())
}

func TestPublishUnverifiedDomainRejected(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme",
		site.DomainBinding{Domain: "shop.example.com", WebsiteID: "w1", Verified: false})

	_, err := f.pub.Publish(context.Background(), "w1", "u1", "shop.example.com")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryDomain))
}

func TestPublishUnboundDomainRejected(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")

	_, err := f.pub.Publish(context.Background(), "w1", "u1", "other.example.com")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryDomain))
}

func TestPublishNoDeploymentTarget(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "") // no subdomain, no domains

	_, err := f.pub.Publish(context.Background(), "w1", "u1", "")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryValidation))
}

func TestPublishConcurrentRejectedByLease(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")
	ctx := context.Background()

	// Simulate an in-flight publish holding the lease.
	require.NoError(t, f.leases.Acquire(ctx, "w1", time.Minute))

	_, err := f.pub.Publish(ctx, "w1", "u1", "")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryConflict))

	// Other websites are unaffected.
	f.seedWebsite("w2", "u1", "beta")
	_, err = f.pub.Publish(ctx, "w2", "u1", "")
	require.NoError(t, err)
	f.pub.Wait()
}

func TestPublishLeaseReleasedAfterCompletion(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")
	ctx := context.Background()

	_, err := f.pub.Publish(ctx, "w1", "u1", "")
	require.NoError(t, err)
	f.pub.Wait()

	// Republish works immediately after the first completes.
	_, err = f.pub.Publish(ctx, "w1", "u1", "")
	require.NoError(t, err)
	f.pub.Wait()
}

func TestPublishFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t)
	f.seedWebsite("w1", "u1", "acme")
	ctx := context.Background()

	// Every upload fails; the pipeline stops at the upload stage.
	failing := &alwaysFailStore{}
	up := uploader.New(failing, uploader.Options{Policy: fastPolicy()})
	f.pub = New(f.repo, generator.New(nil, "https://api.sitepress.dev"), up,
		f.jobs, f.leases, f.routes, Options{RootDomain: "sitepress.dev", Emitter: f.events})

	result, err := f.pub.Publish(ctx, "w1", "u1", "")
	require.NoError(t, err)
	f.pub.Wait()

	job, err := f.pub.JobStatus(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobstore.StatusFailed, job.Status)
	assert.Equal(t, 40, job.Progress) // stuck at the upload checkpoint
	assert.NotEmpty(t, job.Message)
	assert.Empty(t, job.DeploymentURL)

	// Website stays draft, no route written.
	w, err := f.repo.GetWebsite(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, site.StatusDraft, w.Status)
	_, err = f.routes.Resolve(ctx, site.RouteKeySubdomain("acme"))
	require.Error(t, err)

	// Lease freed so the user can retry.
	_, err = f.pub.Publish(ctx, "w1", "u1", "")
	require.NoError(t, err)
	f.pub.Wait()

	types := f.events.types()
	assert.Contains(t, types, events.EventPublishFailed)
}

func TestJobStatusUnknownJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.pub.JobStatus(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryNotFound))
}

// captureEmitter records event types in order.
type captureEmitter struct {
	mu   sync.Mutex
	seen []events.EventType
}

func (c *captureEmitter) Emit(e *events.PublishEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, e.Type)
}

func (c *captureEmitter) Close() error { return nil }

func (c *captureEmitter) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.EventType(nil), c.seen...)
}

// alwaysFailStore rejects every write.
type alwaysFailStore struct{}

func (alwaysFailStore) Put(context.Context, string, []byte, blob.PutOptions) error {
	return assert.AnError
}
func (alwaysFailStore) Get(_ context.Context, key string) ([]byte, error) {
	return nil, blob.ErrNotFound{Key: key}
}
func (alwaysFailStore) List(context.Context, string) ([]string, error) { return nil, nil }
func (alwaysFailStore) Close() error                                   { return nil }
