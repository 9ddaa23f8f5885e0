// Package observability carries per-acquisition logging context and
// lightweight local spans through the pipeline.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sourcebundle/internal/logfields"
)

// logScope is the per-request logging state carried in a context. Every log
// line emitted through this package picks these fields up automatically.
type logScope struct {
	acquisitionID string
	stage         string
}

type scopeKeyType struct{}

var scopeKey scopeKeyType

// WithAcquisitionID returns a context whose log lines carry the acquisition ID.
func WithAcquisitionID(ctx context.Context, acquisitionID string) context.Context {
	sc := scopeFrom(ctx)
	sc.acquisitionID = acquisitionID
	return context.WithValue(ctx, scopeKey, sc)
}

// WithStage returns a context whose log lines carry the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	sc := scopeFrom(ctx)
	sc.stage = stage
	return context.WithValue(ctx, scopeKey, sc)
}

// AcquisitionID returns the acquisition ID carried by the context, or "".
func AcquisitionID(ctx context.Context) string {
	return scopeFrom(ctx).acquisitionID
}

// Stage returns the pipeline stage carried by the context, or "".
func Stage(ctx context.Context) string {
	return scopeFrom(ctx).stage
}

func scopeFrom(ctx context.Context) logScope {
	if sc, ok := ctx.Value(scopeKey).(logScope); ok {
		return sc
	}
	return logScope{}
}

func scopeAttrs(ctx context.Context) []slog.Attr {
	sc := scopeFrom(ctx)
	var attrs []slog.Attr
	if sc.acquisitionID != "" {
		attrs = append(attrs, logfields.AcquisitionID(sc.acquisitionID))
	}
	if sc.stage != "" {
		attrs = append(attrs, logfields.Stage(sc.stage))
	}
	return attrs
}

func logAttrs(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	slog.LogAttrs(ctx, level, msg, append(scopeAttrs(ctx), attrs...)...)
}

// DebugContext logs at debug level with the context's scope fields prepended.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs)
}

// InfoContext logs at info level with the context's scope fields prepended.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs at warn level with the context's scope fields prepended.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs at error level with the context's scope fields prepended.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs)
}
