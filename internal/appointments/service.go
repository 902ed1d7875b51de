package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var appointmentsTracer = otel.Tracer("vitaldent/appointments")

// CatalogLoader supplies the treatments requests are checked against.
type CatalogLoader interface {
	Load(ctx context.Context) []catalog.Treatment
}

// Publisher records domain events for later delivery.
type Publisher interface {
	Insert(ctx context.Context, aggregate string, eventType string, payload any) (uuid.UUID, error)
}

// EventRecorder is implemented by repositories that store an appointment and
// its outbox entry atomically. Service prefers it over Create plus Publisher.
type EventRecorder interface {
	CreateWithEvent(ctx context.Context, appt *Appointment, eventType string, payload any) error
}

// Observer records request outcomes.
type Observer interface {
	ObserveAppointmentRequest(outcome string)
}

// Service coordinates validation, slot checks, storage and event emission.
type Service struct {
	repo      Repository
	catalog   CatalogLoader
	publisher Publisher
	validator *Validator
	logger    *logging.Logger
	observer  Observer
	now       func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the appointment service. publisher may be nil.
func NewService(repo Repository, loader CatalogLoader, publisher Publisher, validator *Validator, logger *logging.Logger, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if validator == nil {
		validator = NewValidator(time.UTC)
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:      repo,
		catalog:   loader,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator returns the form validator.
func (s *Service) Validator() *Validator { return s.validator }

// Request validates a visitor request and stores it as PENDIENTE.
func (s *Service) Request(ctx context.Context, req Request) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.request")
	defer span.End()

	appt, err := s.request(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.observe(outcomeFor(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("appointment.id", appt.ID),
		attribute.Int("appointment.treatments", len(appt.Treatments)),
	)
	s.observe("ok")
	return appt, nil
}

func (s *Service) request(ctx context.Context, req Request) (*Appointment, error) {
	valid, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	refs := s.resolveTreatments(ctx, valid.TreatmentIDs)
	if len(refs) == 0 {
		return nil, &ValidationError{Field: "tratamiento", Message: MsgUnknownTreatments}
	}

	now := s.now().UTC()
	appt := &Appointment{
		ID:          uuid.New().String(),
		PatientName: strings.ToUpper(valid.Name),
		Phone:       valid.Phone,
		Email:       valid.Email,
		Treatments:  refs,
		ScheduledAt: valid.ScheduledAt,
		SlotStart:   SlotStart(valid.ScheduledAt, s.validator.Location()),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	requested := events.AppointmentRequestedV1{
		EventID:        uuid.NewString(),
		AppointmentID:  appt.ID,
		PatientName:    appt.PatientName,
		Phone:          appt.Phone,
		Email:          appt.Email,
		TreatmentIDs:   appt.TreatmentIDs(),
		TreatmentNames: appt.TreatmentNames(),
		ScheduledFor:   appt.ScheduledAt,
		RequestedAt:    now,
	}
	if err := s.create(ctx, appt, events.TypeAppointmentRequested, requested); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.logger.Info("appointment slot already booked", "slot", appt.SlotStart)
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: create: %w", err)
	}

	s.logger.Info("appointment requested",
		"id", appt.ID,
		"scheduled_at", appt.ScheduledAt.Format(time.RFC3339),
		"treatments", appt.TreatmentIDs(),
	)
	return appt, nil
}

// resolveTreatments keeps known ids, in submission order, at most MaxTreatments.
func (s *Service) resolveTreatments(ctx context.Context, ids []int) []TreatmentRef {
	var known []catalog.Treatment
	if s.catalog != nil {
		known = s.catalog.Load(ctx)
	}
	refs := make([]TreatmentRef, 0, MaxTreatments)
	for _, id := range ids {
		t, ok := catalog.FindByID(known, id)
		if !ok {
			continue
		}
		refs = append(refs, TreatmentRef{ID: t.ID, Name: t.Name})
		if len(refs) == MaxTreatments {
			break
		}
	}
	return refs
}

// List returns appointments for staff.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Reschedule moves an appointment; raw is parsed like the visitor form.
func (s *Service) Reschedule(ctx context.Context, id, raw string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.reschedule")
	defer span.End()

	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{Field: "fecha_cita", Message: MsgDateTimeRequired}
	}
	at, ok := s.validator.ParseDateTime(raw)
	if !ok {
		return nil, &ValidationError{Field: "fecha_cita", Message: MsgInvalidDateTime}
	}
	if err := s.repo.Reschedule(ctx, id, at, SlotStart(at, s.validator.Location())); err != nil {
		span.RecordError(err)
		return nil, err
	}
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, appt.ID, events.TypeAppointmentRescheduled, events.AppointmentRescheduledV1{
		EventID:       uuid.NewString(),
		AppointmentID: appt.ID,
		PatientName:   appt.PatientName,
		Email:         appt.Email,
		ScheduledFor:  appt.ScheduledAt,
		OccurredAt:    s.now().UTC(),
	})
	s.logger.Info("appointment rescheduled", "id", id, "scheduled_at", at.Format(time.RFC3339))
	return appt, nil
}

// SetStatus changes the lifecycle status.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info("appointment status changed", "id", id, "status", status)
	return nil
}

// MarkAttended sets the status to ATENDIDA.
func (s *Service) MarkAttended(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, StatusAttended)
}

// Delete removes an appointment.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", "id", id)
	return nil
}

// create stores appt with its event, in one transaction when the repository
// supports it.
func (s *Service) create(ctx context.Context, appt *Appointment, eventType string, payload any) error {
	if recorder, ok := s.repo.(EventRecorder); ok {
		return recorder.CreateWithEvent(ctx, appt, eventType, payload)
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return err
	}
	s.publish(ctx, appt.ID, eventType, payload)
	return nil
}

func aggregateFor(id string) string { return "appointment:" + id }

func (s *Service) publish(ctx context.Context, id, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Insert(ctx, aggregateFor(id), eventType, payload); err != nil {
		s.logger.Error("failed to record appointment event", "error", err, "id", id, "type", eventType)
	}
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveAppointmentRequest(outcome)
	}
}

func outcomeFor(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	default:
		return "error"
	}
}
