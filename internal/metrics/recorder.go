package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Stage label values used across the pipeline.
const (
	StageGenerate = "generate"
	StageUpload   = "upload"
	StageMetadata = "metadata"
)

// Recorder defines observability hooks for publish and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObservePublishDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncPublishOutcome(outcome string) // outcome: completed|failed|rejected
	IncUploadRetry()
	SetUploadConcurrency(n int)
	ObserveReleaseArtifacts(n int)
	IncRouteResolve(hit bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObservePublishDuration(time.Duration)       {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishOutcome(string)                   {}
func (NoopRecorder) IncUploadRetry()                            {}
func (NoopRecorder) SetUploadConcurrency(int)                   {}
func (NoopRecorder) ObserveReleaseArtifacts(int)                {}
func (NoopRecorder) IncRouteResolve(bool)                       {}
