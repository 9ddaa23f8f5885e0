package metrics

import "time"

// OutcomeLabel enumerates terminal acquisition outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// FetchResultLabel enumerates per-candidate fetch outcomes.
type FetchResultLabel string

const (
	FetchIncluded        FetchResultLabel = "included"
	FetchSkippedStatus   FetchResultLabel = "skipped_status"
	FetchSkippedDecode   FetchResultLabel = "skipped_decode"
	FetchSkippedOversize FetchResultLabel = "skipped_oversize"
	FetchSkippedBudget   FetchResultLabel = "skipped_budget"
)

// Recorder defines observability hooks for acquisition and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveAcquisitionDuration(kind string, d time.Duration)
	IncAcquisitionOutcome(kind string, outcome OutcomeLabel)
	ObserveStageDuration(stage string, d time.Duration)
	IncFetchResult(result FetchResultLabel)
	ObserveBundleFiles(n int)
	ObserveBundleBytes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveAcquisitionDuration(string, time.Duration) {}
func (NoopRecorder) IncAcquisitionOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) IncFetchResult(FetchResultLabel)                  {}
func (NoopRecorder) ObserveBundleFiles(int)                           {}
func (NoopRecorder) ObserveBundleBytes(int)                           {}
