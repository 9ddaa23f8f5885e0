package daemon

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
)

// trackingStore decorates an optional persistent store with live projection
// updates so the history endpoints reflect acquisitions as they finish, not
// only after a restart-time rebuild.
type trackingStore struct {
	inner      eventstore.Store // nil when persistence is disabled
	projection *eventstore.AcquisitionHistoryProjection
}

func (s *trackingStore) Append(ctx context.Context, acquisitionID, eventType string, payload []byte, metadata map[string]string) error {
	if s.inner != nil {
		if err := s.inner.Append(ctx, acquisitionID, eventType, payload, metadata); err != nil {
			return err
		}
	}
	s.projection.Apply(&eventstore.BaseEvent{
		EventAcquisitionID: acquisitionID,
		EventType:          eventType,
		EventTimestamp:     time.Now(),
		EventPayload:       payload,
		EventMetadata:      metadata,
	})
	return nil
}

func (s *trackingStore) GetByAcquisitionID(ctx context.Context, acquisitionID string) ([]eventstore.Event, error) {
	if s.inner == nil {
		return nil, nil
	}
	return s.inner.GetByAcquisitionID(ctx, acquisitionID)
}

func (s *trackingStore) GetRange(ctx context.Context, start, end time.Time) ([]eventstore.Event, error) {
	if s.inner == nil {
		return nil, nil
	}
	return s.inner.GetRange(ctx, start, end)
}

func (s *trackingStore) Close() error {
	if s.inner == nil {
		return nil
	}
	return s.inner.Close()
}
