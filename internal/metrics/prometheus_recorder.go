package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	stageDuration     *prom.HistogramVec
	publishDuration   prom.Histogram
	stageResults      *prom.CounterVec
	publishOutcome    *prom.CounterVec
	uploadRetries     prom.Counter
	uploadConcurrency prom.Gauge
	releaseArtifacts  prom.Histogram
	routeResolves     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitepress",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual publish stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.publishDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitepress",
			Name:      "publish_duration_seconds",
			Help:      "Total publish pipeline duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepress",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepress",
			Name:      "publish_outcomes_total",
			Help:      "Publish outcomes by final status",
		}, []string{"outcome"})
		pr.uploadRetries = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitepress",
			Name:      "upload_retries_total",
			Help:      "Total artifact upload retries (transient failures)",
		})
		pr.uploadConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitepress",
			Name:      "upload_concurrency",
			Help:      "Configured parallel artifact upload limit",
		})
		pr.releaseArtifacts = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitepress",
			Name:      "release_artifacts",
			Help:      "Artifact count per uploaded release",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500},
		})
		pr.routeResolves = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepress",
			Name:      "route_resolves_total",
			Help:      "Routing cache resolutions by hit/miss",
		}, []string{"result"})
		reg.MustRegister(pr.stageDuration, pr.publishDuration, pr.stageResults,
			pr.publishOutcome, pr.uploadRetries, pr.uploadConcurrency,
			pr.releaseArtifacts, pr.routeResolves)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil || p.publishDuration == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome string) {
	if p == nil || p.publishOutcome == nil {
		return
	}
	p.publishOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncUploadRetry() {
	if p == nil || p.uploadRetries == nil {
		return
	}
	p.uploadRetries.Inc()
}

func (p *PrometheusRecorder) SetUploadConcurrency(n int) {
	if p == nil || p.uploadConcurrency == nil {
		return
	}
	p.uploadConcurrency.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveReleaseArtifacts(n int) {
	if p == nil || p.releaseArtifacts == nil {
		return
	}
	p.releaseArtifacts.Observe(float64(n))
}

func (p *PrometheusRecorder) IncRouteResolve(hit bool) {
	if p == nil || p.routeResolves == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.routeResolves.WithLabelValues(result).Inc()
}
