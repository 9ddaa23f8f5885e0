package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, acquisitionID, eventType string, payload []byte, metadata map[string]string) error

	// GetByAcquisitionID retrieves all events for a specific acquisition.
	GetByAcquisitionID(ctx context.Context, acquisitionID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
