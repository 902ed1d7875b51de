package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is an event waiting for delivery.
type OutboxEntry struct {
	ID        uuid.UUID
	Aggregate string
	Type      string
	Payload   json.RawMessage
	// Attempts counts failed deliveries so far.
	Attempts  int
	CreatedAt time.Time
}

// DeliveryHandler emits events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

// Fanout delivers an entry to every handler in order and fails on the first
// error, leaving the entry pending for the next poll.
type Fanout []DeliveryHandler

func (f Fanout) Handle(ctx context.Context, entry OutboxEntry) error {
	for _, h := range f {
		if h == nil {
			continue
		}
		if err := h.Handle(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Store persists events for reliable delivery. FetchPending returns entries
// that are neither delivered nor abandoned and whose retry time has passed.
type Store interface {
	Insert(ctx context.Context, aggregate string, eventType string, payload any) (uuid.UUID, error)
	FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkFailed records a failed attempt. A nil retryAt abandons the entry.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, retryAt *time.Time) error
}
