package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/blob"
	"git.home.luguber.info/inful/sitepress/internal/generator"
	"git.home.luguber.info/inful/sitepress/internal/jobstore"
	"git.home.luguber.info/inful/sitepress/internal/lease"
	"git.home.luguber.info/inful/sitepress/internal/publisher"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/site"
	"git.home.luguber.info/inful/sitepress/internal/uploader"
)

type testEnv struct {
	repo   *site.MemoryRepository
	routes *routecache.MemoryCache
	pub    *publisher.Publisher
	srv    *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := site.NewMemoryRepository()
	routes := routecache.NewMemoryCache()
	gen := generator.New(nil, "https://api.sitepress.dev")
	up := uploader.New(blob.NewMemoryStore(), uploader.Options{})
	pub := publisher.New(repo, gen, up,
		jobstore.NewMemoryStore(), lease.NewMemoryLocker(), routes,
		publisher.Options{RootDomain: "sitepress.dev"})
	srv := New(pub, routes, Options{RootDomain: "sitepress.dev"})
	return &testEnv{repo: repo, routes: routes, pub: pub, srv: srv}
}

func (e *testEnv) seed(id, owner, subdomain string) {
	e.repo.PutWebsite(site.Website{
		ID:        id,
		OwnerID:   owner,
		Name:      "Acme Store",
		Subdomain: subdomain,
		Status:    site.StatusDraft,
	}, []site.Page{
		{ID: "p1", WebsiteID: id, Slug: "/", Components: []site.Component{
			{Type: "hero", Props: map[string]any{"heading": "Hi"}},
		}},
	}, nil)
}

func TestPublishEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seed("w1", "u1", "acme")
	handler := env.srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/websites/w1/publish", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp PublishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "https://acme.sitepress.dev", resp.DeploymentURL)

	env.pub.Wait()

	// Poll job status until terminal.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+resp.JobID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var job JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "completed", job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, resp.DeploymentURL, job.DeploymentURL)
}

func TestPublishEndpointRequiresUser(t *testing.T) {
	env := newTestEnv(t)
	env.seed("w1", "u1", "acme")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/websites/w1/publish", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishEndpointUnknownWebsite(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/websites/ghost/publish", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishEndpointUnverifiedDomain(t *testing.T) {
	env := newTestEnv(t)
	env.repo.PutWebsite(site.Website{ID: "w1", OwnerID: "u1", Subdomain: "acme"},
		[]site.Page{{ID: "p1", WebsiteID: "w1", Slug: "/"}},
		[]site.DomainBinding{{Domain: "shop.example.com", WebsiteID: "w1", Verified: false}})

	body := strings.NewReader(`{"custom_domain":"shop.example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/websites/w1/publish", body)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestJobEndpointUnknownJob(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/ghost", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	require.NoError(t, env.routes.Upsert(ctx, site.RouteKeySubdomain("acme"), "w1", time.Hour))
	require.NoError(t, env.routes.Upsert(ctx, site.RouteKeyDomain("shop.example.com"), "w2", time.Hour))
	handler := env.srv.Handler()

	// Platform subdomain.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolve?host=acme.sitepress.dev", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "w1", resp.WebsiteID)

	// Custom domain.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/resolve?host=shop.example.com", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "w2", resp.WebsiteID)
}

func TestResolveEndpointMiss(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolve?host=nobody.example.com", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveEndpointRequiresHost(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolve", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestAdminMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.srv.AdminHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
