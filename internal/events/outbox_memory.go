package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	entry     OutboxEntry
	nextAt    time.Time
	lastError string
	delivered bool
	abandoned bool
}

// MemoryOutbox is an in-process Store for runs without a database.
type MemoryOutbox struct {
	mu      sync.Mutex
	order   []uuid.UUID
	entries map[uuid.UUID]*memoryEntry
	now     func() time.Time
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{
		entries: make(map[uuid.UUID]*memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryOutbox) Insert(ctx context.Context, aggregate string, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	id := uuid.New()
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	m.entries[id] = &memoryEntry{
		entry:  OutboxEntry{ID: id, Aggregate: aggregate, Type: eventType, Payload: data, CreatedAt: now},
		nextAt: now,
	}
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryOutbox) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var pending []OutboxEntry
	for _, id := range m.order {
		e := m.entries[id]
		if e.delivered || e.abandoned || e.nextAt.After(now) {
			continue
		}
		pending = append(pending, e.entry)
		if limit > 0 && len(pending) == int(limit) {
			break
		}
	}
	return pending, nil
}

func (m *MemoryOutbox) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.delivered {
		return false, nil
	}
	e.delivered = true
	return true, nil
}

func (m *MemoryOutbox) MarkFailed(ctx context.Context, id uuid.UUID, reason string, retryAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.delivered {
		return nil
	}
	e.entry.Attempts++
	e.lastError = reason
	if retryAt == nil {
		e.abandoned = true
	} else {
		e.nextAt = *retryAt
	}
	return nil
}

// Abandoned maps entries that exhausted their delivery attempts to the last
// error seen.
func (m *MemoryOutbox) Abandoned() map[uuid.UUID]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uuid.UUID]string)
	for id, e := range m.entries {
		if e.abandoned {
			out[id] = e.lastError
		}
	}
	return out
}
