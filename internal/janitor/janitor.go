// Package janitor periodically rebuilds the route cache from the website
// repository. Publishes keep routes fresh on their own; the janitor
// backstops entries that expired without a republish and repairs the
// cache after a cold start or a Redis flush.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/site"
)

// Janitor owns the periodic route refresh job.
type Janitor struct {
	scheduler gocron.Scheduler
	repo      site.Repository
	routes    routecache.Cache
	routeTTL  time.Duration
	logger    *slog.Logger
}

// New creates a janitor refreshing routes every interval.
func New(repo site.Repository, routes routecache.Cache, interval, routeTTL time.Duration, logger *slog.Logger) (*Janitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	j := &Janitor{
		scheduler: s,
		repo:      repo,
		routes:    routes,
		routeTTL:  routeTTL,
		logger:    logger,
	}

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.refresh),
		gocron.WithName("route-refresh"),
	); err != nil {
		return nil, fmt.Errorf("create route refresh job: %w", err)
	}

	return j, nil
}

// Start begins the scheduler.
func (j *Janitor) Start() {
	j.logger.Info("route janitor started", slog.Duration("route_ttl", j.routeTTL))
	j.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (j *Janitor) Stop() error {
	j.logger.Info("route janitor stopping")
	return j.scheduler.Shutdown()
}

// Refresh rebuilds all routes once. Exposed so startup can warm the
// cache before the first tick.
func (j *Janitor) Refresh(ctx context.Context) error {
	routes, err := j.repo.ListRoutes(ctx)
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}

	var failed int
	for _, route := range routes {
		if err := j.routes.Upsert(ctx, route.Key, route.WebsiteID, j.routeTTL); err != nil {
			failed++
			j.logger.Warn("route refresh write failed",
				logfields.Host(route.Key),
				logfields.WebsiteID(route.WebsiteID),
				logfields.Error(err))
		}
	}

	j.logger.Info("routes refreshed",
		slog.Int("total", len(routes)),
		slog.Int("failed", failed))
	return nil
}

func (j *Janitor) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := j.Refresh(ctx); err != nil {
		j.logger.Error("scheduled route refresh failed", logfields.Error(err))
	}
}
