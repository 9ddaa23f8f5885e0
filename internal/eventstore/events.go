package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// Event payloads carry acquisition metadata only: counts, durations,
// truncation flags, error categories. File contents and access tokens
// never enter the store.

// AcquisitionStartedMeta contains typed metadata for acquisition start events.
type AcquisitionStartedMeta struct {
	Kind          string `json:"kind"`                 // Locator kind ("repository", "blob", "gist")
	Repository    string `json:"repository,omitempty"` // "owner/repo" for repository locators
	Authenticated bool   `json:"authenticated"`        // Whether an access token was supplied
}

// AcquisitionStarted is emitted when an acquisition begins.
type AcquisitionStarted struct {
	BaseEvent
	Kind       string                 `json:"kind"`
	Repository string                 `json:"repository,omitempty"`
	Meta       AcquisitionStartedMeta `json:"meta"`
}

// NewAcquisitionStarted creates an AcquisitionStarted event with typed metadata.
func NewAcquisitionStarted(acquisitionID string, meta AcquisitionStartedMeta) (*AcquisitionStarted, error) {
	payload, err := json.Marshal(map[string]any{
		"kind":       meta.Kind,
		"repository": meta.Repository,
		"meta":       meta,
	})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal AcquisitionStarted payload").
			WithCause(err).
			WithContext("acquisition_id", acquisitionID).
			Build()
	}

	return &AcquisitionStarted{
		BaseEvent: BaseEvent{
			EventAcquisitionID: acquisitionID,
			EventType:          "AcquisitionStarted",
			EventTimestamp:     time.Now(),
			EventPayload:       payload,
		},
		Kind:       meta.Kind,
		Repository: meta.Repository,
		Meta:       meta,
	}, nil
}

// TreeEnumerated is emitted when a repository tree listing has been filtered.
type TreeEnumerated struct {
	BaseEvent
	Repository string `json:"repository"`
	TotalNodes int    `json:"total_nodes"`
	Candidates int    `json:"candidates"`
	Truncated  bool   `json:"truncated"`
}

// NewTreeEnumerated creates a TreeEnumerated event.
func NewTreeEnumerated(acquisitionID, repository string, totalNodes, candidates int, truncated bool) (*TreeEnumerated, error) {
	payload, err := json.Marshal(map[string]any{
		"repository":  repository,
		"total_nodes": totalNodes,
		"candidates":  candidates,
		"truncated":   truncated,
	})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal TreeEnumerated payload").
			WithCause(err).
			WithContext("acquisition_id", acquisitionID).
			WithContext("repository", repository).
			Build()
	}

	return &TreeEnumerated{
		BaseEvent: BaseEvent{
			EventAcquisitionID: acquisitionID,
			EventType:          "TreeEnumerated",
			EventTimestamp:     time.Now(),
			EventPayload:       payload,
		},
		Repository: repository,
		TotalNodes: totalNodes,
		Candidates: candidates,
		Truncated:  truncated,
	}, nil
}

// AcquisitionCompleted is emitted when an acquisition produces a bundle.
type AcquisitionCompleted struct {
	BaseEvent
	Kind       string        `json:"kind"`
	Repository string        `json:"repository,omitempty"`
	Files      int           `json:"files"`
	Bytes      int           `json:"bytes"`
	Truncated  bool          `json:"truncated"`
	Duration   time.Duration `json:"duration_ms"`
}

// NewAcquisitionCompleted creates an AcquisitionCompleted event.
func NewAcquisitionCompleted(acquisitionID, kind, repository string, files, byteCount int, truncated bool, duration time.Duration) (*AcquisitionCompleted, error) {
	payload, err := json.Marshal(map[string]any{
		"kind":        kind,
		"repository":  repository,
		"files":       files,
		"bytes":       byteCount,
		"truncated":   truncated,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal AcquisitionCompleted payload").
			WithCause(err).
			WithContext("acquisition_id", acquisitionID).
			Build()
	}

	return &AcquisitionCompleted{
		BaseEvent: BaseEvent{
			EventAcquisitionID: acquisitionID,
			EventType:          "AcquisitionCompleted",
			EventTimestamp:     time.Now(),
			EventPayload:       payload,
		},
		Kind:       kind,
		Repository: repository,
		Files:      files,
		Bytes:      byteCount,
		Truncated:  truncated,
		Duration:   duration,
	}, nil
}

// AcquisitionFailed is emitted when an acquisition fails.
type AcquisitionFailed struct {
	BaseEvent
	Stage    string        `json:"stage"`
	Category string        `json:"category"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration_ms"`
}

// NewAcquisitionFailed creates an AcquisitionFailed event.
func NewAcquisitionFailed(acquisitionID, stage, category, errorMsg string, duration time.Duration) (*AcquisitionFailed, error) {
	payload, err := json.Marshal(map[string]any{
		"stage":       stage,
		"category":    category,
		"error":       errorMsg,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal AcquisitionFailed payload").
			WithCause(err).
			WithContext("acquisition_id", acquisitionID).
			WithContext("stage", stage).
			Build()
	}

	return &AcquisitionFailed{
		BaseEvent: BaseEvent{
			EventAcquisitionID: acquisitionID,
			EventType:          "AcquisitionFailed",
			EventTimestamp:     time.Now(),
			EventPayload:       payload,
		},
		Stage:    stage,
		Category: category,
		Error:    errorMsg,
		Duration: duration,
	}, nil
}
