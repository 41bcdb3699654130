package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	pagesRendered *prom.CounterVec
	references    *prom.CounterVec
	collisions    prom.Counter
	assetsMapped  prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitemigrate",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitemigrate",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemigrate",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemigrate",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemigrate",
			Name:      "pages_rendered_total",
			Help:      "Rendered pages by kind",
		}, []string{"kind"})
		pr.references = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemigrate",
			Name:      "references_total",
			Help:      "Reference resolutions by outcome",
		}, []string{"result"})
		pr.collisions = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitemigrate",
			Name:      "slug_collisions_total",
			Help:      "Distinct documents whose computed slug collided",
		})
		pr.assetsMapped = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitemigrate",
			Name:      "assets_mapped",
			Help:      "Number of assets in the final asset map",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults,
			pr.buildOutcome, pr.pagesRendered, pr.references, pr.collisions, pr.assetsMapped)
	})
	return pr
}

// Registry returns the registry the recorder's metrics live in, for
// serving or dumping.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPageRendered(kind string) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) AddReferences(label ReferenceLabel, n int) {
	if p == nil || p.references == nil || n <= 0 {
		return
	}
	p.references.WithLabelValues(string(label)).Add(float64(n))
}

func (p *PrometheusRecorder) IncSlugCollision() {
	if p == nil || p.collisions == nil {
		return
	}
	p.collisions.Inc()
}

func (p *PrometheusRecorder) SetAssetsMapped(n int) {
	if p == nil || p.assetsMapped == nil {
		return
	}
	p.assetsMapped.Set(float64(n))
}
