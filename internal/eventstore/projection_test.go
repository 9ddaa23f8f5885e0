package eventstore

import (
	"context"
	"testing"
	"time"
)

func TestAcquisitionHistoryProjection_ApplyEvents(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	projection := NewAcquisitionHistoryProjection(store, 10)

	// Apply AcquisitionStarted event
	acquisitionID := "acq-123"
	startEvent, err := NewAcquisitionStarted(acquisitionID, AcquisitionStartedMeta{Kind: "repository", Repository: "golang/go"})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	projection.Apply(startEvent)

	// Check acquisition is tracked
	summary, exists := projection.GetAcquisition(acquisitionID)
	if !exists {
		t.Fatal("Expected acquisition to exist")
	}
	if summary.Status != "running" {
		t.Errorf("Expected status 'running', got %q", summary.Status)
	}
	if summary.Kind != "repository" {
		t.Errorf("Expected kind 'repository', got %q", summary.Kind)
	}
	if summary.Repository != "golang/go" {
		t.Errorf("Expected repository 'golang/go', got %q", summary.Repository)
	}

	// Apply TreeEnumerated event
	treeEvent, err := NewTreeEnumerated(acquisitionID, "golang/go", 4200, 38, false)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	projection.Apply(treeEvent)

	summary, _ = projection.GetAcquisition(acquisitionID)
	if summary.Candidates != 38 {
		t.Errorf("Expected candidate count 38, got %d", summary.Candidates)
	}

	// Apply AcquisitionCompleted event
	completeEvent, err := NewAcquisitionCompleted(acquisitionID, "repository", "golang/go", 20, 512000, true, 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	projection.Apply(completeEvent)

	summary, _ = projection.GetAcquisition(acquisitionID)
	if summary.Status != "completed" {
		t.Errorf("Expected status 'completed', got %q", summary.Status)
	}
	if summary.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
	if summary.Files != 20 {
		t.Errorf("Expected files 20, got %d", summary.Files)
	}
	if summary.Bytes != 512000 {
		t.Errorf("Expected bytes 512000, got %d", summary.Bytes)
	}
	if !summary.Truncated {
		t.Error("Expected truncated to be true")
	}

	// Check history
	history := projection.GetHistory()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	if history[0].AcquisitionID != acquisitionID {
		t.Errorf("Expected acquisition ID %q, got %q", acquisitionID, history[0].AcquisitionID)
	}

	completed, failed := projection.Counts()
	if completed != 1 || failed != 0 {
		t.Errorf("Expected counts (1, 0), got (%d, %d)", completed, failed)
	}
}

func TestAcquisitionHistoryProjection_AcquisitionFailed(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	projection := NewAcquisitionHistoryProjection(store, 10)

	acquisitionID := "acq-failed"
	startEvent, _ := NewAcquisitionStarted(acquisitionID, AcquisitionStartedMeta{Kind: "repository"})
	projection.Apply(startEvent)

	failEvent, _ := NewAcquisitionFailed(acquisitionID, "metadata", "auth", "bad credentials", time.Second)
	projection.Apply(failEvent)

	summary, exists := projection.GetAcquisition(acquisitionID)
	if !exists {
		t.Fatal("Expected acquisition to exist")
	}
	if summary.Status != "failed" {
		t.Errorf("Expected status 'failed', got %q", summary.Status)
	}
	if summary.ErrorStage != "metadata" {
		t.Errorf("Expected error stage 'metadata', got %q", summary.ErrorStage)
	}
	if summary.ErrorCategory != "auth" {
		t.Errorf("Expected error category 'auth', got %q", summary.ErrorCategory)
	}
	if summary.ErrorMessage != "bad credentials" {
		t.Errorf("Expected error message 'bad credentials', got %q", summary.ErrorMessage)
	}

	completed, failed := projection.Counts()
	if completed != 0 || failed != 1 {
		t.Errorf("Expected counts (0, 1), got (%d, %d)", completed, failed)
	}
}

func TestAcquisitionHistoryProjection_Rebuild(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	// Store some events directly
	acquisitionID := "acq-rebuild-test"
	startEvent, _ := NewAcquisitionStarted(acquisitionID, AcquisitionStartedMeta{Kind: "repository", Repository: "pkg/errors"})
	if err := store.Append(ctx, acquisitionID, startEvent.Type(), startEvent.Payload(), nil); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	treeEvent, _ := NewTreeEnumerated(acquisitionID, "pkg/errors", 40, 12, false)
	if err := store.Append(ctx, acquisitionID, treeEvent.Type(), treeEvent.Payload(), nil); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	completeEvent, _ := NewAcquisitionCompleted(acquisitionID, "repository", "pkg/errors", 12, 98000, false, 3*time.Second)
	if err := store.Append(ctx, acquisitionID, completeEvent.Type(), completeEvent.Payload(), nil); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	// Create a fresh projection and rebuild from store
	projection := NewAcquisitionHistoryProjection(store, 10)
	if err := projection.Rebuild(ctx); err != nil {
		t.Fatalf("Failed to rebuild: %v", err)
	}

	// Verify the projection state
	summary, exists := projection.GetAcquisition(acquisitionID)
	if !exists {
		t.Fatal("Expected acquisition to exist after rebuild")
	}
	if summary.Status != "completed" {
		t.Errorf("Expected status 'completed', got %q", summary.Status)
	}
	if summary.Candidates != 12 {
		t.Errorf("Expected candidate count 12, got %d", summary.Candidates)
	}

	// Verify history
	history := projection.GetHistory()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
}

func TestAcquisitionHistoryProjection_HistoryLimit(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	// Create projection with small max size
	projection := NewAcquisitionHistoryProjection(store, 3)

	// Add 5 completed acquisitions
	for i := 0; i < 5; i++ {
		acquisitionID := "acq-" + string(rune('a'+i))
		startEvent, _ := NewAcquisitionStarted(acquisitionID, AcquisitionStartedMeta{Kind: "repository"})
		projection.Apply(startEvent)

		completeEvent, _ := NewAcquisitionCompleted(acquisitionID, "repository", "", 1, 1000, false, time.Second)
		projection.Apply(completeEvent)
	}

	// History should be limited to 3
	history := projection.GetHistory()
	if len(history) != 3 {
		t.Errorf("Expected history length 3, got %d", len(history))
	}

	// Counters keep counting past the history bound
	completed, _ := projection.Counts()
	if completed != 5 {
		t.Errorf("Expected 5 completed, got %d", completed)
	}
}
