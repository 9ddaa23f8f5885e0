package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

// captureLogs redirects the default logger to a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestScopeAccessors(t *testing.T) {
	ctx := context.Background()
	if got := AcquisitionID(ctx); got != "" {
		t.Errorf("AcquisitionID on bare context = %q, want empty", got)
	}

	ctx = WithAcquisitionID(ctx, "acq-1")
	ctx = WithStage(ctx, "tree")
	if got := AcquisitionID(ctx); got != "acq-1" {
		t.Errorf("AcquisitionID = %q, want %q", got, "acq-1")
	}
	if got := Stage(ctx); got != "tree" {
		t.Errorf("Stage = %q, want %q", got, "tree")
	}
}

func TestWithStagePreservesAcquisitionID(t *testing.T) {
	ctx := WithAcquisitionID(context.Background(), "acq-2")
	ctx = WithStage(ctx, "fetch")
	if got := AcquisitionID(ctx); got != "acq-2" {
		t.Errorf("AcquisitionID after WithStage = %q, want %q", got, "acq-2")
	}
}

func TestInfoContextCarriesScopeFields(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithStage(WithAcquisitionID(context.Background(), "acq-3"), "metadata")
	InfoContext(ctx, "repository resolved", slog.String("repository", "acme/widgets"))

	entry := decodeLine(t, buf)
	if entry["msg"] != "repository resolved" {
		t.Errorf("msg = %v, want %q", entry["msg"], "repository resolved")
	}
	if entry["acquisition_id"] != "acq-3" {
		t.Errorf("acquisition_id = %v, want %q", entry["acquisition_id"], "acq-3")
	}
	if entry["stage"] != "metadata" {
		t.Errorf("stage = %v, want %q", entry["stage"], "metadata")
	}
	if entry["repository"] != "acme/widgets" {
		t.Errorf("repository = %v, want %q", entry["repository"], "acme/widgets")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(context.Context, string, ...slog.Attr)
		level string
	}{
		{"debug", DebugContext, "DEBUG"},
		{"info", InfoContext, "INFO"},
		{"warn", WarnContext, "WARN"},
		{"error", ErrorContext, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			tt.log(context.Background(), "message")
			entry := decodeLine(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %q", entry["level"], tt.level)
			}
		})
	}
}

func TestBareContextEmitsNoScopeFields(t *testing.T) {
	buf := captureLogs(t)
	InfoContext(context.Background(), "plain")
	entry := decodeLine(t, buf)
	if _, ok := entry["acquisition_id"]; ok {
		t.Errorf("unexpected acquisition_id field in %v", entry)
	}
	if _, ok := entry["stage"]; ok {
		t.Errorf("unexpected stage field in %v", entry)
	}
}
