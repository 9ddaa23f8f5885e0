// Package responses defines the JSON payload types served by the
// sourcebundle daemon API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
)

// BundleResponse is the result of one acquisition triggered over HTTP.
type BundleResponse struct {
	AcquisitionID string `json:"acquisition_id"`
	Kind          string `json:"kind"`
	Repository    string `json:"repository"`
	Files         int    `json:"files"`
	Bytes         int    `json:"bytes"`
	Truncated     bool   `json:"truncated"`
	TreeTruncated bool   `json:"tree_truncated,omitempty"`
	Bundle        string `json:"bundle"`
}

// AcquisitionListResponse is the bounded history view, newest first.
type AcquisitionListResponse struct {
	Acquisitions []*eventstore.AcquisitionSummary `json:"acquisitions"`
	Count        int                              `json:"count"`
	Timestamp    time.Time                        `json:"timestamp"`
}

// DaemonStatusResponse reports the daemon's operational state.
type DaemonStatusResponse struct {
	Status               string    `json:"status"`
	Version              string    `json:"version"`
	StartTime            time.Time `json:"start_time"`
	Uptime               float64   `json:"uptime"`
	AcquisitionsComplete int       `json:"acquisitions_completed"`
	AcquisitionsFailed   int       `json:"acquisitions_failed"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}
