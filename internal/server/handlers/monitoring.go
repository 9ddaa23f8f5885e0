package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/server/responses"
	"git.home.luguber.info/inful/sourcebundle/internal/version"
)

// Runtime exposes the daemon state the monitoring endpoints report.
type Runtime interface {
	GetStatus() string
	GetStartTime() time.Time
	Counts() (completed, failed int)
}

// MonitoringHandlers serves health, readiness and status endpoints.
type MonitoringHandlers struct {
	runtime      Runtime
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers around the daemon runtime.
func NewMonitoringHandlers(runtime Runtime) *MonitoringHandlers {
	return &MonitoringHandlers{
		runtime:      runtime,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealth serves GET /healthz.
func (h *MonitoringHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	payload := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.runtime.GetStartTime()).Seconds(),
	}
	if err := writeJSON(w, http.StatusOK, payload); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write health response").Build())
	}
}

// HandleReady serves GET /readyz. The daemon is ready as soon as it serves
// traffic; acquisitions have no warm-up dependencies.
func (h *MonitoringHandlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus serves GET /api/v1/status.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			Build())
		return
	}

	completed, failed := h.runtime.Counts()
	payload := &responses.DaemonStatusResponse{
		Status:               h.runtime.GetStatus(),
		Version:              version.Version,
		StartTime:            h.runtime.GetStartTime(),
		Uptime:               time.Since(h.runtime.GetStartTime()).Seconds(),
		AcquisitionsComplete: completed,
		AcquisitionsFailed:   failed,
	}
	if err := writeJSON(w, http.StatusOK, payload); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write status response").Build())
	}
}
