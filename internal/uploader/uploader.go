// Package uploader writes generated artifacts to the object store as
// immutable releases. Each publish stages a fresh release under its own
// prefix and only after every object is written and verified does the
// site pointer move, so serving infrastructure never observes a
// half-written deployment.
package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitepress/internal/artifact"
	"git.home.luguber.info/inful/sitepress/internal/blob"
	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/retry"
)

// Release describes a completed upload.
type Release struct {
	ID        string    `json:"release_id"`
	SiteID    string    `json:"site_id"`
	Paths     []string  `json:"paths"`
	CreatedAt time.Time `json:"created_at"`
}

// ReleasePrefix returns the object-store prefix a release is staged under.
func ReleasePrefix(siteID, releaseID string) string {
	return fmt.Sprintf("sites/%s/releases/%s", siteID, releaseID)
}

// PointerKey returns the key of the per-site pointer object that names the
// currently live release.
func PointerKey(siteID string) string {
	return fmt.Sprintf("sites/%s/release.json", siteID)
}

// Options tunes uploader behavior. Zero values fall back to defaults.
type Options struct {
	Concurrency int
	Policy      retry.Policy
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// Uploader stages artifact sets into the object store.
type Uploader struct {
	store       blob.Store
	concurrency int
	policy      retry.Policy
	recorder    metrics.Recorder
	logger      *slog.Logger
}

const defaultConcurrency = 8

// New creates an uploader over the given store.
func New(store blob.Store, opts Options) *Uploader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Policy.Validate() != nil {
		opts.Policy = retry.DefaultPolicy()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Uploader{
		store:       store,
		concurrency: opts.Concurrency,
		policy:      opts.Policy,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
}

// Upload stages all artifacts under a new release prefix, verifies the
// staged set, then swaps the site pointer. If any artifact fails after
// retries the pointer is left untouched and the previous release keeps
// serving.
func (u *Uploader) Upload(ctx context.Context, siteID string, artifacts []artifact.Artifact) (*Release, error) {
	if len(artifacts) == 0 {
		return nil, sperrors.New(sperrors.CategoryUpload, sperrors.SeverityError, "no artifacts to upload")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, sperrors.Wrap(err, sperrors.CategoryInternal, sperrors.SeverityError, "generate release id")
	}
	releaseID := id.String()
	prefix := ReleasePrefix(siteID, releaseID)

	u.recorder.SetUploadConcurrency(u.concurrency)
	u.logger.Info("staging release",
		logfields.WebsiteID(siteID),
		logfields.Release(releaseID),
		slog.Int("artifacts", len(artifacts)))

	if err := u.putAll(ctx, prefix, artifacts); err != nil {
		return nil, err
	}

	if err := u.verifyStaged(ctx, prefix, len(artifacts)); err != nil {
		return nil, err
	}

	release := &Release{
		ID:        releaseID,
		SiteID:    siteID,
		CreatedAt: time.Now().UTC(),
	}
	for _, a := range artifacts {
		release.Paths = append(release.Paths, a.Path)
	}

	if err := u.writePointer(ctx, siteID, release); err != nil {
		return nil, err
	}

	u.recorder.ObserveReleaseArtifacts(len(artifacts))
	u.logger.Info("release live",
		logfields.WebsiteID(siteID),
		logfields.Release(releaseID))
	return release, nil
}

// putAll uploads artifacts concurrently, bounded by the configured
// concurrency. The first error wins; remaining workers drain.
func (u *Uploader) putAll(ctx context.Context, prefix string, artifacts []artifact.Artifact) error {
	sem := make(chan struct{}, u.concurrency)
	errCh := make(chan error, len(artifacts))

	for _, a := range artifacts {
		sem <- struct{}{}
		go func(a artifact.Artifact) {
			defer func() { <-sem }()
			errCh <- u.putWithRetry(ctx, prefix+a.Path, a)
		}(a)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}

	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) putWithRetry(ctx context.Context, key string, a artifact.Artifact) error {
	opts := blob.PutOptions{
		ContentType:  a.ContentType,
		CacheControl: artifact.CacheControlFor(a.Path),
	}

	var lastErr error
	for attempt := 0; attempt <= u.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			u.recorder.IncUploadRetry()
			u.logger.Warn("retrying artifact upload",
				logfields.Path(a.Path),
				slog.Int("attempt", attempt),
				logfields.Error(lastErr))
			select {
			case <-time.After(u.policy.Delay(attempt)):
			case <-ctx.Done():
				return sperrors.Wrap(ctx.Err(), sperrors.CategoryUpload, sperrors.SeverityError, "upload cancelled")
			}
		}
		lastErr = u.store.Put(ctx, key, a.Content, opts)
		if lastErr == nil {
			return nil
		}
	}
	return sperrors.WrapRetryable(lastErr, sperrors.CategoryUpload, sperrors.SeverityError,
		fmt.Sprintf("upload %s failed after %d attempts", a.Path, u.policy.MaxRetries+1))
}

// verifyStaged confirms the staged prefix holds exactly the expected
// number of objects before the pointer moves.
func (u *Uploader) verifyStaged(ctx context.Context, prefix string, want int) error {
	keys, err := u.store.List(ctx, prefix+"/")
	if err != nil {
		return sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "verify staged release")
	}
	if len(keys) != want {
		return sperrors.New(sperrors.CategoryUpload, sperrors.SeverityError,
			fmt.Sprintf("staged release incomplete: %d of %d objects present", len(keys), want))
	}
	return nil
}

func (u *Uploader) writePointer(ctx context.Context, siteID string, release *Release) error {
	data, err := json.MarshalIndent(release, "", "  ")
	if err != nil {
		return sperrors.Wrap(err, sperrors.CategoryInternal, sperrors.SeverityError, "marshal release pointer")
	}
	opts := blob.PutOptions{
		ContentType:  "application/json",
		CacheControl: artifact.CacheControlShort,
	}
	if err := u.store.Put(ctx, PointerKey(siteID), data, opts); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "write release pointer")
	}
	return nil
}

// CurrentRelease reads the live release pointer for a site. Returns a
// not-found error if the site has never been published.
func CurrentRelease(ctx context.Context, store blob.Store, siteID string) (*Release, error) {
	data, err := store.Get(ctx, PointerKey(siteID))
	if err != nil {
		if blob.IsNotFound(err) {
			return nil, sperrors.NotFoundError("no live release for site " + siteID)
		}
		return nil, sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "read release pointer")
	}
	var release Release
	if err := json.Unmarshal(data, &release); err != nil {
		return nil, sperrors.Wrap(err, sperrors.CategoryStorage, sperrors.SeverityError, "decode release pointer")
	}
	return &release, nil
}
