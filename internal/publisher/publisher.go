// Package publisher orchestrates the publish pipeline: it validates the
// request synchronously, then runs generation, upload, and metadata
// updates in a detached pipeline while clients poll job status.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/generator"
	"git.home.luguber.info/inful/sitepress/internal/jobstore"
	"git.home.luguber.info/inful/sitepress/internal/lease"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/routecache"
	"git.home.luguber.info/inful/sitepress/internal/site"
	"git.home.luguber.info/inful/sitepress/internal/uploader"
)

// Result is the synchronous response to a publish request. The pipeline
// continues asynchronously; clients track it via the job id.
type Result struct {
	JobID         string `json:"job_id"`
	DeploymentURL string `json:"deployment_url"`
}

// Options tunes publisher behavior. Zero values fall back to defaults.
type Options struct {
	RootDomain string
	JobTTL     time.Duration
	LeaseTTL   time.Duration
	RouteTTL   time.Duration
	Emitter    events.Emitter
	Recorder   metrics.Recorder
	Logger     *slog.Logger

	// PipelineTimeout bounds one detached pipeline run.
	PipelineTimeout time.Duration
}

// Publisher coordinates one publish end to end.
type Publisher struct {
	repo     site.Repository
	gen      *generator.Generator
	uploads  *uploader.Uploader
	jobs     jobstore.Store
	leases   lease.Locker
	routes   routecache.Cache
	emitter  events.Emitter
	recorder metrics.Recorder
	logger   *slog.Logger

	rootDomain      string
	jobTTL          time.Duration
	leaseTTL        time.Duration
	routeTTL        time.Duration
	pipelineTimeout time.Duration

	wg sync.WaitGroup
}

// New wires a publisher from its collaborators.
func New(repo site.Repository, gen *generator.Generator, uploads *uploader.Uploader,
	jobs jobstore.Store, leases lease.Locker, routes routecache.Cache, opts Options) *Publisher {
	if opts.JobTTL <= 0 {
		opts.JobTTL = time.Hour
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 10 * time.Minute
	}
	if opts.RouteTTL <= 0 {
		opts.RouteTTL = 24 * time.Hour
	}
	if opts.PipelineTimeout <= 0 {
		opts.PipelineTimeout = 5 * time.Minute
	}
	if opts.Emitter == nil {
		opts.Emitter = events.NoopEmitter{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Publisher{
		repo:            repo,
		gen:             gen,
		uploads:         uploads,
		jobs:            jobs,
		leases:          leases,
		routes:          routes,
		emitter:         opts.Emitter,
		recorder:        opts.Recorder,
		logger:          opts.Logger,
		rootDomain:      opts.RootDomain,
		jobTTL:          opts.JobTTL,
		leaseTTL:        opts.LeaseTTL,
		routeTTL:        opts.RouteTTL,
		pipelineTimeout: opts.PipelineTimeout,
	}
}

// deployTarget is the resolved hostname a publish will serve from.
type deployTarget struct {
	url      string
	routeKey string
}

// Publish validates the request and, if it passes, creates a job and
// starts the detached pipeline. Validation failures return an error and
// create no job.
func (p *Publisher) Publish(ctx context.Context, websiteID, userID, customDomain string) (*Result, error) {
	snapshot, err := p.repo.Snapshot(ctx, websiteID)
	if err != nil {
		if errors.Is(err, site.ErrNotFound) {
			return nil, sperrors.NotFoundError("website not found: " + websiteID)
		}
		return nil, sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "load website snapshot")
	}
	// Not-owned reads the same as not-existing so callers can't probe for
	// other users' websites.
	if snapshot.Website.OwnerID != userID {
		return nil, sperrors.NotFoundError("website not found: " + websiteID)
	}

	target, err := p.resolveTarget(snapshot, customDomain)
	if err != nil {
		return nil, err
	}

	if err := p.leases.Acquire(ctx, websiteID, p.leaseTTL); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		_ = p.leases.Release(ctx, websiteID)
		return nil, sperrors.Wrap(err, sperrors.CategoryInternal, sperrors.SeverityError, "generate job id")
	}

	now := time.Now().UTC()
	job := &jobstore.PublishJob{
		ID:        id.String(),
		WebsiteID: websiteID,
		Status:    jobstore.StatusQueued,
		Progress:  0,
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.jobs.Write(ctx, job, p.jobTTL); err != nil {
		_ = p.leases.Release(ctx, websiteID)
		return nil, err
	}

	p.logger.Info("publish accepted",
		logfields.JobID(job.ID),
		logfields.WebsiteID(websiteID),
		logfields.UserID(userID),
		logfields.Host(target.routeKey))
	p.emitter.Emit(&events.PublishEvent{
		Type:      events.EventPublishStarted,
		JobID:     job.ID,
		WebsiteID: websiteID,
		UserID:    userID,
	})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runPipeline(job, snapshot, target, userID)
	}()

	return &Result{JobID: job.ID, DeploymentURL: target.url}, nil
}

// resolveTarget picks the hostname a publish serves from: an explicitly
// requested verified custom domain, else the platform subdomain.
func (p *Publisher) resolveTarget(snapshot *site.Snapshot, customDomain string) (deployTarget, error) {
	if customDomain != "" {
		if !snapshot.HasDomain(customDomain) {
			return deployTarget{}, sperrors.DomainError("domain not bound to website: " + customDomain)
		}
		if _, ok := snapshot.VerifiedDomain(customDomain); !ok {
			return deployTarget{}, sperrors.DomainError("domain not verified: " + customDomain)
		}
		return deployTarget{
			url:      "https://" + customDomain,
			routeKey: site.RouteKeyDomain(customDomain),
		}, nil
	}
	if snapshot.Website.Subdomain != "" {
		return deployTarget{
			url:      fmt.Sprintf("https://%s.%s", snapshot.Website.Subdomain, p.rootDomain),
			routeKey: site.RouteKeySubdomain(snapshot.Website.Subdomain),
		}, nil
	}
	return deployTarget{}, sperrors.ValidationError("website has no deployment target: assign a subdomain or verified domain")
}

// JobStatus returns the current state of a publish job.
func (p *Publisher) JobStatus(ctx context.Context, jobID string) (*jobstore.PublishJob, error) {
	return p.jobs.Read(ctx, jobID)
}

// Wait blocks until all in-flight pipelines finish. Used on shutdown and
// in tests.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

// runPipeline executes the detached stages. It owns the job record from
// here on and always releases the lease.
func (p *Publisher) runPipeline(job *jobstore.PublishJob, snapshot *site.Snapshot, target deployTarget, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.pipelineTimeout)
	defer cancel()
	defer func() { _ = p.leases.Release(ctx, job.WebsiteID) }()

	started := time.Now()
	err := p.runStages(ctx, job, snapshot, target)
	elapsed := time.Since(started)
	p.recorder.ObservePublishDuration(elapsed)

	if err != nil {
		p.recorder.IncPublishOutcome(string(jobstore.StatusFailed))
		p.failJob(ctx, job, err)
		p.emitter.Emit(&events.PublishEvent{
			Type:      events.EventPublishFailed,
			JobID:     job.ID,
			WebsiteID: job.WebsiteID,
			UserID:    userID,
			Error:     err.Error(),
		})
		p.logger.Error("publish failed",
			logfields.JobID(job.ID),
			logfields.WebsiteID(job.WebsiteID),
			logfields.DurationMS(float64(elapsed.Milliseconds())),
			logfields.Error(err))
		return
	}

	p.recorder.IncPublishOutcome(string(jobstore.StatusCompleted))
	p.emitter.Emit(&events.PublishEvent{
		Type:          events.EventPublishCompleted,
		JobID:         job.ID,
		WebsiteID:     job.WebsiteID,
		UserID:        userID,
		DeploymentURL: target.url,
	})
	p.logger.Info("publish completed",
		logfields.JobID(job.ID),
		logfields.WebsiteID(job.WebsiteID),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
}

func (p *Publisher) runStages(ctx context.Context, job *jobstore.PublishJob, snapshot *site.Snapshot, target deployTarget) error {
	p.checkpoint(ctx, job, 10, "generating")

	genStart := time.Now()
	result, err := p.gen.Generate(snapshot)
	p.recorder.ObserveStageDuration(metrics.StageGenerate, time.Since(genStart))
	if err != nil {
		p.recorder.IncStageResult(metrics.StageGenerate, metrics.ResultFailed)
		return sperrors.Wrap(err, sperrors.CategoryGeneration, sperrors.SeverityError, "site generation failed")
	}
	p.recorder.IncStageResult(metrics.StageGenerate, metrics.ResultSuccess)

	p.checkpoint(ctx, job, 40, "uploading")

	upStart := time.Now()
	release, err := p.uploads.Upload(ctx, job.WebsiteID, result.Artifacts)
	p.recorder.ObserveStageDuration(metrics.StageUpload, time.Since(upStart))
	if err != nil {
		p.recorder.IncStageResult(metrics.StageUpload, metrics.ResultFailed)
		return err
	}
	p.recorder.IncStageResult(metrics.StageUpload, metrics.ResultSuccess)

	p.checkpoint(ctx, job, 70, "updating metadata")

	metaStart := time.Now()
	if err := p.repo.MarkPublished(ctx, job.WebsiteID, time.Now().UTC()); err != nil {
		p.recorder.ObserveStageDuration(metrics.StageMetadata, time.Since(metaStart))
		p.recorder.IncStageResult(metrics.StageMetadata, metrics.ResultFailed)
		return sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "mark website published")
	}
	if err := p.routes.Upsert(ctx, target.routeKey, job.WebsiteID, p.routeTTL); err != nil {
		p.recorder.ObserveStageDuration(metrics.StageMetadata, time.Since(metaStart))
		p.recorder.IncStageResult(metrics.StageMetadata, metrics.ResultFailed)
		return err
	}
	p.recorder.ObserveStageDuration(metrics.StageMetadata, time.Since(metaStart))
	p.recorder.IncStageResult(metrics.StageMetadata, metrics.ResultSuccess)

	job.DeploymentURL = target.url
	job.Status = jobstore.StatusCompleted
	job.Progress = 100
	job.Message = "published"
	job.UpdatedAt = time.Now().UTC()
	if err := p.jobs.Write(ctx, job, p.jobTTL); err != nil {
		p.logger.Warn("completed job write failed",
			logfields.JobID(job.ID),
			logfields.Error(err))
	}

	p.logger.Debug("release recorded",
		logfields.JobID(job.ID),
		logfields.Release(release.ID))
	return nil
}

// checkpoint advances a non-terminal job. Terminal states absorb: once a
// job completes or fails, no later write may change it.
func (p *Publisher) checkpoint(ctx context.Context, job *jobstore.PublishJob, progress int, message string) {
	if job.Status.IsTerminal() {
		return
	}
	job.Status = jobstore.StatusProcessing
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	if err := p.jobs.Write(ctx, job, p.jobTTL); err != nil {
		p.logger.Warn("job checkpoint write failed",
			logfields.JobID(job.ID),
			logfields.Progress(progress),
			logfields.Error(err))
	}
	p.logger.Info("publish progress",
		logfields.JobID(job.ID),
		logfields.JobStatus(string(job.Status)),
		logfields.Progress(progress),
		logfields.Stage(message))
}

// failJob marks the job failed with the stage's error text. Progress stays
// at the last checkpoint so callers can see where the pipeline stopped.
func (p *Publisher) failJob(ctx context.Context, job *jobstore.PublishJob, cause error) {
	if job.Status.IsTerminal() {
		return
	}
	job.Status = jobstore.StatusFailed
	job.Message = cause.Error()
	job.UpdatedAt = time.Now().UTC()
	if err := p.jobs.Write(ctx, job, p.jobTTL); err != nil {
		p.logger.Warn("failed job write failed",
			logfields.JobID(job.ID),
			logfields.Error(err))
	}
}
