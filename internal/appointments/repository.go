package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores appointments. Create and Reschedule enforce one
// appointment per clinic-local hour and report ErrSlotTaken.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	Reschedule(ctx context.Context, id string, at, slot time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps appointments in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Appointment
	slots map[int64]string
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:  make(map[string]*Appointment),
		slots: make(map[int64]string),
	}
}

func clone(a *Appointment) *Appointment {
	cp := *a
	cp.Treatments = append([]TreatmentRef(nil), a.Treatments...)
	return &cp
}

// Create stores appt unless its slot is taken.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := appt.SlotStart.Unix()
	if _, taken := r.slots[key]; taken {
		return ErrSlotTaken
	}
	r.byID[appt.ID] = clone(appt)
	r.slots[key] = appt.ID
	return nil
}

// Get returns one appointment.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return clone(appt), nil
}

// List returns appointments newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.byID))
	for _, appt := range r.byID {
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		out = append(out, clone(appt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Appointment{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Reschedule moves an appointment to a new time.
func (r *InMemoryRepository) Reschedule(ctx context.Context, id string, at, slot time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	key := slot.Unix()
	if owner, taken := r.slots[key]; taken && owner != id {
		return ErrSlotTaken
	}
	delete(r.slots, appt.SlotStart.Unix())
	appt.ScheduledAt = at
	appt.SlotStart = slot
	appt.UpdatedAt = time.Now().UTC()
	r.slots[key] = id
	return nil
}

// UpdateStatus sets the lifecycle status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes an appointment and frees its slot.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	delete(r.slots, appt.SlotStart.Unix())
	delete(r.byID, id)
	return nil
}
