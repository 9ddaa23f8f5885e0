// Package eventstore provides event sourcing primitives for acquisition history.
package eventstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// AcquisitionSummary is a read model summarizing a completed or in-progress
// acquisition. It carries metadata only, never bundle content.
type AcquisitionSummary struct {
	AcquisitionID string        `json:"acquisition_id"`
	Kind          string        `json:"kind,omitempty"`
	Repository    string        `json:"repository,omitempty"`
	Status        string        `json:"status"` // "running", "completed", "failed"
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Candidates    int           `json:"candidates,omitempty"`
	Files         int           `json:"files,omitempty"`
	Bytes         int           `json:"bytes,omitempty"`
	Truncated     bool          `json:"truncated,omitempty"`
	ErrorStage    string        `json:"error_stage,omitempty"`
	ErrorCategory string        `json:"error_category,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// AcquisitionHistoryProjection maintains an in-memory view of acquisition
// history, reconstructed from events stored in the event store.
type AcquisitionHistoryProjection struct {
	mu           sync.RWMutex
	store        Store
	acquisitions map[string]*AcquisitionSummary // acquisitionID -> summary
	history      []*AcquisitionSummary          // ordered by start time, newest first
	maxSize      int
	completed    int
	failed       int
	lastSync     time.Time
}

// NewAcquisitionHistoryProjection creates a new projection backed by the given store.
func NewAcquisitionHistoryProjection(store Store, maxHistorySize int) *AcquisitionHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &AcquisitionHistoryProjection{
		store:        store,
		acquisitions: make(map[string]*AcquisitionSummary),
		history:      make([]*AcquisitionSummary, 0, maxHistorySize),
		maxSize:      maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
// This is typically called at daemon startup.
func (p *AcquisitionHistoryProjection) Rebuild(ctx context.Context) error {
	// Get all events from the beginning of time
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Reset state
	p.acquisitions = make(map[string]*AcquisitionSummary)
	p.history = make([]*AcquisitionSummary, 0, p.maxSize)
	p.completed = 0
	p.failed = 0

	// Apply each event
	for _, event := range events {
		p.applyEventLocked(event)
	}

	// Sort history by start time (newest first)
	p.sortHistoryLocked()

	// Trim to max size
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}

	// Prevent unbounded growth: keep only bounded history + any running acquisitions.
	p.pruneAcquisitionsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
// This is used for real-time updates when events are emitted.
func (p *AcquisitionHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

// applyEventLocked applies an event. Caller must hold p.mu.
func (p *AcquisitionHistoryProjection) applyEventLocked(event Event) {
	acquisitionID := event.AcquisitionID()
	if acquisitionID == "" || acquisitionID == "unknown" {
		return
	}

	summary, exists := p.acquisitions[acquisitionID]
	if !exists {
		summary = &AcquisitionSummary{
			AcquisitionID: acquisitionID,
			Status:        statusRunning,
			StartedAt:     event.Timestamp(),
		}
		p.acquisitions[acquisitionID] = summary
	}

	// Update summary based on event type
	switch event.Type() {
	case "AcquisitionStarted":
		summary.StartedAt = event.Timestamp()
		summary.Status = statusRunning
		var payload struct {
			Kind       string `json:"kind"`
			Repository string `json:"repository"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Kind = payload.Kind
			summary.Repository = payload.Repository
		}

	case "TreeEnumerated":
		var payload struct {
			Repository string `json:"repository"`
			Candidates int    `json:"candidates"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Candidates = payload.Candidates
			if summary.Repository == "" {
				summary.Repository = payload.Repository
			}
		}

	case "AcquisitionCompleted":
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		summary.Status = statusCompleted
		var payload struct {
			Kind       string `json:"kind"`
			Repository string `json:"repository"`
			Files      int    `json:"files"`
			Bytes      int    `json:"bytes"`
			Truncated  bool   `json:"truncated"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			if payload.Kind != "" {
				summary.Kind = payload.Kind
			}
			if payload.Repository != "" {
				summary.Repository = payload.Repository
			}
			summary.Files = payload.Files
			summary.Bytes = payload.Bytes
			summary.Truncated = payload.Truncated
		}
		p.completed++
		p.addToHistoryLocked(summary)

	case "AcquisitionFailed":
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		summary.Status = statusFailed
		var payload struct {
			Stage    string `json:"stage"`
			Category string `json:"category"`
			Error    string `json:"error"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorCategory = payload.Category
			summary.ErrorMessage = payload.Error
		}
		p.failed++
		p.addToHistoryLocked(summary)
	}
}

// addToHistoryLocked adds a finished acquisition to history if not already present.
func (p *AcquisitionHistoryProjection) addToHistoryLocked(summary *AcquisitionSummary) {
	for _, h := range p.history {
		if h.AcquisitionID == summary.AcquisitionID {
			return
		}
	}

	p.history = append([]*AcquisitionSummary{summary}, p.history...)

	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}

	// Prevent unbounded growth: keep only bounded history + any running acquisitions.
	p.pruneAcquisitionsLocked()
}

// pruneAcquisitionsLocked removes finished acquisitions not present in the
// bounded history. It keeps any acquisitions still marked as running.
// Caller must hold p.mu (write lock).
func (p *AcquisitionHistoryProjection) pruneAcquisitionsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		if h != nil {
			keep[h.AcquisitionID] = struct{}{}
		}
	}

	for id, summary := range p.acquisitions {
		if summary != nil && summary.Status == statusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.acquisitions, id)
		}
	}
}

// sortHistoryLocked sorts history by start time, newest first.
func (p *AcquisitionHistoryProjection) sortHistoryLocked() {
	// Simple insertion sort (history is usually small)
	for i := 1; i < len(p.history); i++ {
		for j := i; j > 0 && p.history[j].StartedAt.After(p.history[j-1].StartedAt); j-- {
			p.history[j], p.history[j-1] = p.history[j-1], p.history[j]
		}
	}
}

// GetHistory returns the acquisition history, newest first.
func (p *AcquisitionHistoryProjection) GetHistory() []*AcquisitionSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*AcquisitionSummary, len(p.history))
	copy(result, p.history)
	return result
}

// GetAcquisition returns the summary for a specific acquisition.
func (p *AcquisitionHistoryProjection) GetAcquisition(acquisitionID string) (*AcquisitionSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.acquisitions[acquisitionID]
	if !exists {
		return nil, false
	}

	// Return a copy
	cp := *summary
	return &cp, true
}

// Counts returns the number of completed and failed acquisitions observed
// since the last rebuild. Counters are monotonic and survive history pruning.
func (p *AcquisitionHistoryProjection) Counts() (completed, failed int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.completed, p.failed
}

// LastSyncTime returns when the projection was last synchronized.
func (p *AcquisitionHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
