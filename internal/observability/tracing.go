package observability

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/logfields"
)

// Span measures one unit of pipeline work. It is a local, log-backed
// stand-in for a distributed tracing span: End emits a single debug line
// with the duration and any attributes set along the way.
type Span struct {
	name  string
	start time.Time
	attrs []slog.Attr
	err   error
}

type spanKeyType struct{}

var spanKey spanKeyType

// StartSpan begins a span and stores it in the returned context.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{name: name, start: time.Now()}
	return context.WithValue(ctx, spanKey, span), span
}

// StartStageSpan begins a span for a pipeline stage and tags the context so
// log lines emitted during the stage carry its name.
func StartStageSpan(ctx context.Context, stage string) (context.Context, *Span) {
	ctx, span := StartSpan(WithStage(ctx, stage), "stage."+stage)
	return ctx, span
}

// SpanFromContext returns the innermost span stored in the context.
func SpanFromContext(ctx context.Context) (*Span, bool) {
	span, ok := ctx.Value(spanKey).(*Span)
	return span, ok
}

// SetAttribute attaches a key/value pair reported when the span ends.
func (s *Span) SetAttribute(key string, value any) {
	s.attrs = append(s.attrs, slog.Any(key, value))
}

// RecordError marks the span as failed. The last recorded error wins.
func (s *Span) RecordError(err error) {
	if err != nil {
		s.err = err
	}
}

// Name returns the span's name.
func (s *Span) Name() string {
	return s.name
}

// Err returns the error recorded on the span, if any.
func (s *Span) Err() error {
	return s.err
}

// End emits the span's summary log line. Failed spans log at warn level.
func (s *Span) End(ctx context.Context) {
	attrs := make([]slog.Attr, 0, len(s.attrs)+3)
	attrs = append(attrs, slog.String("span", s.name))
	attrs = append(attrs, s.attrs...)
	attrs = append(attrs, logfields.DurationMS(float64(time.Since(s.start).Milliseconds())))
	if s.err != nil {
		attrs = append(attrs, logfields.Error(s.err))
		logAttrs(ctx, slog.LevelWarn, "span failed", attrs)
		return
	}
	logAttrs(ctx, slog.LevelDebug, "span ended", attrs)
}
