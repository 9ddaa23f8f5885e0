// Package events publishes acquisition lifecycle notifications to NATS
// JetStream for downstream consumers. Publishing is strictly fire-and-forget
// from the pipeline's perspective: a lost event never fails an acquisition.
// Payloads carry metadata only; bundle content and credentials never leave
// the process through this path.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// CompletedEvent announces a finished acquisition.
type CompletedEvent struct {
	AcquisitionID string    `json:"acquisition_id"`
	Kind          string    `json:"kind"`
	Repository    string    `json:"repository,omitempty"`
	Files         int       `json:"files"`
	Bytes         int       `json:"bytes"`
	Truncated     bool      `json:"truncated"`
	Timestamp     time.Time `json:"timestamp"`
}

// FailedEvent announces an acquisition that ended in a classified failure.
type FailedEvent struct {
	AcquisitionID string    `json:"acquisition_id"`
	Kind          string    `json:"kind,omitempty"`
	Repository    string    `json:"repository,omitempty"`
	Stage         string    `json:"stage"`
	Category      string    `json:"category"`
	Error         string    `json:"error"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher delivers terminal acquisition notifications.
type Publisher interface {
	AcquisitionCompleted(ctx context.Context, ev CompletedEvent) error
	AcquisitionFailed(ctx context.Context, ev FailedEvent) error
	Close()
}

// Config carries the NATS connection settings.
type Config struct {
	URL           string
	SubjectPrefix string
}

const (
	defaultSubjectPrefix = "sourcebundle.acquisition"
	publishTimeout       = 5 * time.Second
)

// NATSPublisher publishes acquisition events over JetStream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and prepares a JetStream context.
// Connection failure is an error: a daemon configured for eventing should
// fail at startup, not drop events silently later.
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, errors.EventsError("could not connect to NATS").
			WithCause(err).
			WithContext("url", cfg.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.EventsError("could not create JetStream context").
			WithCause(err).
			Build()
	}

	subject := cfg.SubjectPrefix
	if subject == "" {
		subject = defaultSubjectPrefix
	}

	slog.Info("acquisition event publisher connected",
		slog.String("url", cfg.URL),
		slog.String("subject_prefix", subject))

	return &NATSPublisher{conn: conn, js: js, subject: subject}, nil
}

// AcquisitionCompleted publishes to <prefix>.completed.
func (p *NATSPublisher) AcquisitionCompleted(ctx context.Context, ev CompletedEvent) error {
	return p.publish(ctx, p.subject+".completed", ev)
}

// AcquisitionFailed publishes to <prefix>.failed.
func (p *NATSPublisher) AcquisitionFailed(ctx context.Context, ev FailedEvent) error {
	return p.publish(ctx, p.subject+".failed", ev)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	data, err := json.Marshal(v)
	if err != nil {
		return errors.EventsError("could not marshal acquisition event").
			WithCause(err).
			WithContext("subject", subject).
			Build()
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return errors.EventsError("could not publish acquisition event").
			WithCause(err).
			WithContext("subject", subject).
			Build()
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
