// Package server exposes the publish pipeline over HTTP: publish
// requests, job status polling, and hostname resolution for the serving
// edge, plus an admin surface with health and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/publisher"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/site"
	"git.home.luguber.info/inful/sitepress/internal/version"
)

// Options configures the HTTP server.
type Options struct {
	Addr       string
	AdminAddr  string
	RootDomain string
	Recorder   metrics.Recorder
	Registry   *prom.Registry
	Logger     *slog.Logger
}

// Server hosts the public API and the admin surface.
type Server struct {
	pub     *publisher.Publisher
	routes  routecache.Cache
	adapter *sperrors.HTTPErrorAdapter
	logger  *slog.Logger

	addr       string
	adminAddr  string
	rootDomain string
	recorder   metrics.Recorder
	registry   *prom.Registry

	api   *http.Server
	admin *http.Server
}

// New wires the server from its collaborators.
func New(pub *publisher.Publisher, routes routecache.Cache, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		pub:        pub,
		routes:     routes,
		adapter:    sperrors.NewHTTPErrorAdapter(opts.Logger),
		logger:     opts.Logger,
		addr:       opts.Addr,
		adminAddr:  opts.AdminAddr,
		rootDomain: opts.RootDomain,
		recorder:   opts.Recorder,
		registry:   opts.Registry,
	}
}

// Handler builds the public API handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/websites/{id}/publish", s.handlePublish)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("GET /api/v1/resolve", s.handleResolve)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return chain(s.logger, s.adapter, mux)
}

// AdminHandler builds the admin handler with health and metrics.
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.HTTPHandler(s.registry))
	return mux
}

// Start runs both listeners until the context is cancelled, then shuts
// them down gracefully and waits for in-flight pipelines.
func (s *Server) Start(ctx context.Context) error {
	s.api = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("API server listening", "addr", s.addr)
		if err := s.api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if s.adminAddr != "" {
		s.admin = &http.Server{
			Addr:              s.adminAddr,
			Handler:           s.AdminHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			s.logger.Info("admin server listening", "addr", s.adminAddr)
			if err := s.admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.api.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("API shutdown error", "error", err)
	}
	if s.admin != nil {
		if err := s.admin.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("admin shutdown error", "error", err)
		}
	}
	s.pub.Wait()
	return nil
}

// publishRequest is the optional publish request body.
type publishRequest struct {
	CustomDomain string `json:"custom_domain,omitempty"`
}

// handlePublish accepts a publish request and returns the job handle.
// The caller's identity arrives via X-User-ID, injected by the platform
// gateway after authentication.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	websiteID := r.PathValue("id")
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		s.adapter.WriteErrorResponse(w, r, sperrors.ValidationError("missing X-User-ID header"))
		return
	}

	var req publishRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.adapter.WriteErrorResponse(w, r, sperrors.ValidationError("invalid request body"))
			return
		}
	}

	result, err := s.pub.Publish(r.Context(), websiteID, userID, req.CustomDomain)
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, PublishResponse{
		JobID:         result.JobID,
		DeploymentURL: result.DeploymentURL,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.pub.JobStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, JobResponse{
		ID:            job.ID,
		WebsiteID:     job.WebsiteID,
		Status:        string(job.Status),
		Progress:      job.Progress,
		Message:       job.Message,
		DeploymentURL: job.DeploymentURL,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	})
}

// handleResolve maps a hostname to a website id for the serving edge. A
// host under the platform root domain resolves by subdomain, anything
// else by custom domain.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	host := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("host")))
	if host == "" {
		s.adapter.WriteErrorResponse(w, r, sperrors.ValidationError("missing host parameter"))
		return
	}

	websiteID, err := s.routes.Resolve(r.Context(), s.routeKeyFor(host))
	if err != nil {
		s.recorder.IncRouteResolve(false)
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	s.recorder.IncRouteResolve(true)

	writeJSON(w, http.StatusOK, ResolveResponse{Host: host, WebsiteID: websiteID})
}

func (s *Server) routeKeyFor(host string) string {
	if suffix := "." + s.rootDomain; strings.HasSuffix(host, suffix) {
		return site.RouteKeySubdomain(strings.TrimSuffix(host, suffix))
	}
	return site.RouteKeyDomain(host)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
