package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	acquisitionDuration *prom.HistogramVec
	acquisitionOutcome  *prom.CounterVec
	stageDuration       *prom.HistogramVec
	fetchResults        *prom.CounterVec
	bundleFiles         prom.Histogram
	bundleBytes         prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.acquisitionDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sourcebundle",
			Name:      "acquisition_duration_seconds",
			Help:      "End-to-end acquisition duration by locator kind",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"})
		pr.acquisitionOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sourcebundle",
			Name:      "acquisition_outcomes_total",
			Help:      "Acquisition outcomes by locator kind and final status",
		}, []string{"kind", "outcome"})
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sourcebundle",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.fetchResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sourcebundle",
			Name:      "fetch_results_total",
			Help:      "Per-candidate fetch outcomes",
		}, []string{"result"})
		pr.bundleFiles = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sourcebundle",
			Name:      "bundle_files",
			Help:      "Files included per assembled bundle",
			Buckets:   []float64{1, 2, 4, 8, 12, 16, 20},
		})
		pr.bundleBytes = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sourcebundle",
			Name:      "bundle_bytes",
			Help:      "Body bytes included per assembled bundle",
			Buckets:   prom.ExponentialBuckets(1024, 2, 10),
		})
		reg.MustRegister(pr.acquisitionDuration, pr.acquisitionOutcome, pr.stageDuration, pr.fetchResults, pr.bundleFiles, pr.bundleBytes)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveAcquisitionDuration(kind string, d time.Duration) {
	if p == nil || p.acquisitionDuration == nil {
		return
	}
	p.acquisitionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncAcquisitionOutcome(kind string, outcome OutcomeLabel) {
	if p == nil || p.acquisitionOutcome == nil {
		return
	}
	p.acquisitionOutcome.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(result FetchResultLabel) {
	if p == nil || p.fetchResults == nil {
		return
	}
	p.fetchResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBundleFiles(n int) {
	if p == nil || p.bundleFiles == nil {
		return
	}
	p.bundleFiles.Observe(float64(n))
}

func (p *PrometheusRecorder) ObserveBundleBytes(n int) {
	if p == nil || p.bundleBytes == nil {
		return
	}
	p.bundleBytes.Observe(float64(n))
}
