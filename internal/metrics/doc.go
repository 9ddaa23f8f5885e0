// Package metrics records acquisition pipeline measurements.
//
// Recorder is the single instrumentation interface. NoopRecorder is the
// default implementation, so callers never nil-check before recording;
// the daemon swaps in PrometheusRecorder when metrics are enabled:
//
//	reg := prometheus.NewRegistry()
//	svc := acquire.NewService(acquire.Options{
//	    Recorder: metrics.NewPrometheusRecorder(reg),
//	})
//
// Tests inject their own Recorder to assert on what the pipeline observed.
package metrics
