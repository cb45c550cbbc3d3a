package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"git.home.luguber.info/inful/sitepress/internal/blob"
	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/generator"
	"git.home.luguber.info/inful/sitepress/internal/janitor"
	"git.home.luguber.info/inful/sitepress/internal/jobstore"
	"git.home.luguber.info/inful/sitepress/internal/lease"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/publisher"
	"git.home.luguber.info/inful/sitepress/internal/retry"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/server"
	"git.home.luguber.info/inful/sitepress/internal/site"
	"git.home.luguber.info/inful/sitepress/internal/uploader"
	"git.home.luguber.info/inful/sitepress/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Run the publish API and admin servers"`

	Publish struct {
		Website string `arg:"" help:"Website id to publish"`
		User    string `short:"u" required:"" help:"Acting user id"`
		Domain  string `short:"d" help:"Publish to this verified custom domain"`
	} `cmd:"" help:"Publish one website and wait for the pipeline to finish"`

	Resolve struct {
		Host string `arg:"" help:"Hostname to resolve"`
	} `cmd:"" help:"Resolve a hostname to the website serving it"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		if err := runServe(logger); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "publish <website>":
		if err := runPublish(logger); err != nil {
			slog.Error("Publish failed", "error", err)
			os.Exit(1)
		}
	case "resolve <host>":
		if err := runResolve(); err != nil {
			slog.Error("Resolve failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitepress %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

// stack holds the wired pipeline collaborators and their cleanup.
type stack struct {
	cfg      *config.Config
	repo     site.Repository
	routes   routecache.Cache
	pub      *publisher.Publisher
	registry *prom.Registry
	recorder metrics.Recorder
	closers  []func() error
}

func (s *stack) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("Cleanup failed", "error", err)
		}
	}
}

// buildStack wires the pipeline from configuration: sqlite repository,
// redis-or-memory coordination stores, s3-or-fs artifact storage.
func buildStack(ctx context.Context, logger *slog.Logger) (*stack, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}

	s := &stack{cfg: cfg}

	repo, err := site.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open website database: %w", err)
	}
	s.repo = repo
	s.closers = append(s.closers, repo.Close)

	var jobs jobstore.Store
	var leases lease.Locker
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			s.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		jobs = jobstore.NewRedisStore(client)
		leases = lease.NewRedisLocker(client)
		s.routes = routecache.NewRedisCache(client)
		s.closers = append(s.closers, client.Close)
		logger.Info("Using redis coordination", "addr", cfg.Redis.Addr)
	} else {
		jobs = jobstore.NewMemoryStore()
		leases = lease.NewMemoryLocker()
		s.routes = routecache.NewMemoryCache()
		logger.Warn("Redis not configured, using in-process coordination stores")
	}

	var store blob.Store
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		store, err = blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
	case config.StorageBackendFS:
		store, err = blob.NewFSStore(cfg.Storage.Directory)
	default:
		err = fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
	if err != nil {
		s.close()
		return nil, err
	}
	s.closers = append(s.closers, store.Close)

	s.registry = prom.NewRegistry()
	s.recorder = metrics.NewPrometheusRecorder(s.registry)

	var emitter events.Emitter = events.NoopEmitter{}
	if cfg.Events.Enabled {
		natsEmitter, err := events.NewNATSEmitter(cfg.Events.URL, cfg.Events.Subject, logger)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect events: %w", err)
		}
		emitter = natsEmitter
		s.closers = append(s.closers, natsEmitter.Close)
	}

	gen := generator.New(nil, cfg.Platform.APIBaseURL)
	uploads := uploader.New(store, uploader.Options{
		Concurrency: cfg.Publish.UploadConcurrency,
		Policy:      retry.FromConfig(cfg.Publish),
		Recorder:    s.recorder,
		Logger:      logger,
	})

	s.pub = publisher.New(repo, gen, uploads, jobs, leases, s.routes, publisher.Options{
		RootDomain: cfg.Platform.RootDomain,
		JobTTL:     cfg.Publish.JobTTL,
		LeaseTTL:   cfg.Publish.LeaseTTL,
		RouteTTL:   cfg.Publish.RouteTTL,
		Emitter:    emitter,
		Recorder:   s.recorder,
		Logger:     logger,
	})

	return s, nil
}

func runServe(logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := buildStack(ctx, logger)
	if err != nil {
		return err
	}
	defer s.close()

	if s.cfg.Janitor.Enabled {
		j, err := janitor.New(s.repo, s.routes, s.cfg.Janitor.Interval, s.cfg.Publish.RouteTTL, logger)
		if err != nil {
			return fmt.Errorf("create janitor: %w", err)
		}
		// Warm the cache before serving resolution traffic.
		if err := j.Refresh(ctx); err != nil {
			logger.Warn("Initial route refresh failed", "error", err)
		}
		j.Start()
		defer func() {
			if err := j.Stop(); err != nil {
				logger.Warn("Janitor stop failed", "error", err)
			}
		}()
	}

	srv := server.New(s.pub, s.routes, server.Options{
		Addr:       s.cfg.Server.Addr,
		AdminAddr:  s.cfg.Server.AdminAddr,
		RootDomain: s.cfg.Platform.RootDomain,
		Recorder:   s.recorder,
		Registry:   s.registry,
		Logger:     logger,
	})

	logger.Info("Starting sitepress", "version", version.Version)
	return srv.Start(ctx)
}

func runPublish(logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := buildStack(ctx, logger)
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.pub.Publish(ctx, CLI.Publish.Website, CLI.Publish.User, CLI.Publish.Domain)
	if err != nil {
		return err
	}
	logger.Info("Publish accepted", "job_id", result.JobID, "deployment_url", result.DeploymentURL)

	s.pub.Wait()

	job, err := s.pub.JobStatus(ctx, result.JobID)
	if err != nil {
		return err
	}
	logger.Info("Publish finished",
		"job_id", job.ID,
		"status", job.Status,
		"progress", job.Progress,
		"message", job.Message)
	if job.Status != jobstore.StatusCompleted {
		return fmt.Errorf("publish %s: %s", job.Status, job.Message)
	}
	fmt.Println(result.DeploymentURL)
	return nil
}

func runResolve() error {
	ctx := context.Background()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	repo, err := site.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open website database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	host := strings.ToLower(strings.TrimSpace(CLI.Resolve.Host))
	key := site.RouteKeyDomain(host)
	if suffix := "." + cfg.Platform.RootDomain; strings.HasSuffix(host, suffix) {
		key = site.RouteKeySubdomain(strings.TrimSuffix(host, suffix))
	}

	routes, err := repo.ListRoutes(ctx)
	if err != nil {
		return err
	}
	for _, route := range routes {
		if route.Key == key {
			fmt.Println(route.WebsiteID)
			return nil
		}
	}
	return fmt.Errorf("no website serves %s", host)
}
