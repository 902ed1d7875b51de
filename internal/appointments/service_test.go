package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/events"
)

type staticCatalog []catalog.Treatment

func (s staticCatalog) Load(ctx context.Context) []catalog.Treatment { return s }

type outcomeRecorder struct{ outcomes []string }

func (o *outcomeRecorder) ObserveAppointmentRequest(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func newTestService(t *testing.T) (*Service, *InMemoryRepository, *events.MemoryOutbox, *outcomeRecorder) {
	t.Helper()
	repo := NewInMemoryRepository()
	outbox := events.NewMemoryOutbox()
	obs := &outcomeRecorder{}
	cat := staticCatalog{
		{ID: 1, Name: "Limpieza Dental"},
		{ID: 2, Name: "Blanqueamiento Dental"},
		{ID: 3, Name: "Resinas"},
	}
	svc := NewService(repo, cat, outbox, NewValidator(time.UTC), nil,
		WithObserver(obs),
		WithClock(func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }),
	)
	return svc, repo, outbox, obs
}

func TestRequestStoresPendingAppointment(t *testing.T) {
	svc, repo, outbox, obs := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Request(ctx, Request{
		Name:         "Ana López",
		Phone:        "8112345678",
		Email:        "ana@example.com",
		TreatmentIDs: []string{"99", "1"},
		DateTime:     "2026-11-03T10:30",
	})
	require.NoError(t, err)

	assert.Equal(t, "ANA LÓPEZ", appt.PatientName)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, []int{1}, appt.TreatmentIDs())
	assert.Equal(t, time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC), appt.SlotStart)

	stored, err := repo.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Limpieza Dental"}, stored.TreatmentNames())

	pending, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.TypeAppointmentRequested, pending[0].Type)
	assert.Equal(t, "appointment:"+appt.ID, pending[0].Aggregate)

	var payload events.AppointmentRequestedV1
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, "ana@example.com", payload.Email)

	assert.Equal(t, []string{"ok"}, obs.outcomes)
}

func TestRequestRejectsSameHour(t *testing.T) {
	svc, _, outbox, obs := newTestService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:05"})
	require.NoError(t, err)

	_, err = svc.Request(ctx, Request{Name: "Luis", Phone: "7654321", TreatmentIDs: []string{"2"}, DateTime: "2026-11-03T10:55"})
	assert.True(t, errors.Is(err, ErrSlotTaken))
	assert.EqualError(t, err, "Ya existe una cita en esa hora. Elija otro horario.")

	_, err = svc.Request(ctx, Request{Name: "Luis", Phone: "7654321", TreatmentIDs: []string{"2"}, DateTime: "2026-11-03T11:00"})
	assert.NoError(t, err)

	pending, _ := outbox.FetchPending(ctx, 10)
	assert.Len(t, pending, 2)
	assert.Equal(t, []string{"ok", "slot_taken", "ok"}, obs.outcomes)
}

func TestRequestValidationLeavesNoState(t *testing.T) {
	svc, repo, outbox, obs := newTestService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, Request{Name: "Ana", Phone: "12345", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:00"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgInvalidPhone, verr.Message)

	list, _ := repo.List(ctx, ListFilter{})
	assert.Empty(t, list)
	pending, _ := outbox.FetchPending(ctx, 10)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"invalid"}, obs.outcomes)
}

func TestRequestRejectsThreeTreatments(t *testing.T) {
	svc, repo, outbox, obs := newTestService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1", "2", "3"}, DateTime: "2026-11-03T10:00"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgTreatmentCount, verr.Message)

	list, _ := repo.List(ctx, ListFilter{})
	assert.Empty(t, list)
	pending, _ := outbox.FetchPending(ctx, 10)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"invalid"}, obs.outcomes)
}

func TestRequestUnknownTreatmentsOnly(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Request(context.Background(), Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"42", "abc"}, DateTime: "2026-11-03T10:00"})
	assert.EqualError(t, err, MsgUnknownTreatments)
}

func TestStaffOperations(t *testing.T) {
	svc, _, outbox, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Request(ctx, Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:00"})
	require.NoError(t, err)
	second, err := svc.Request(ctx, Request{Name: "Luis", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T12:00"})
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, second.ID, "2026-11-03T10:15")
	assert.ErrorIs(t, err, ErrSlotTaken)

	moved, err := svc.Reschedule(ctx, second.ID, "2026-11-04T09:00")
	require.NoError(t, err)
	assert.Equal(t, 4, moved.ScheduledAt.Day())

	_, err = svc.Reschedule(ctx, second.ID, "")
	assert.EqualError(t, err, MsgDateTimeRequired)
	_, err = svc.Reschedule(ctx, second.ID, "mañana")
	assert.EqualError(t, err, MsgInvalidDateTime)

	require.NoError(t, svc.MarkAttended(ctx, first.ID))
	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAttended, got.Status)

	attended, err := svc.List(ctx, ListFilter{Status: StatusAttended})
	require.NoError(t, err)
	assert.Len(t, attended, 1)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), ErrAppointmentNotFound)

	// The freed slot can be booked again.
	_, err = svc.Request(ctx, Request{Name: "Eva", Phone: "1234567", TreatmentIDs: []string{"3"}, DateTime: "2026-11-03T10:40"})
	assert.NoError(t, err)

	pending, _ := outbox.FetchPending(ctx, 10)
	types := map[string]int{}
	for _, p := range pending {
		types[p.Type]++
	}
	assert.Equal(t, 3, types[events.TypeAppointmentRequested])
	assert.Equal(t, 1, types[events.TypeAppointmentRescheduled])
}

type failingPublisher struct{}

func (failingPublisher) Insert(ctx context.Context, aggregate, eventType string, payload any) (uuid.UUID, error) {
	return uuid.Nil, errors.New("outbox down")
}

func TestRequestSurvivesOutboxFailure(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, staticCatalog{{ID: 1, Name: "Limpieza"}}, failingPublisher{}, NewValidator(time.UTC), nil)

	appt, err := svc.Request(context.Background(), Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:00"})
	require.NoError(t, err)
	_, err = repo.Get(context.Background(), appt.ID)
	assert.NoError(t, err)
}

func TestRequestWritesAppointmentAndEventInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), "ANA", "1234567", (*string)(nil), []int{1}, []string{"Limpieza"}, pgxmock.AnyArg(), pgxmock.AnyArg(), "PENDIENTE").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectExec(`INSERT INTO outbox`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), events.TypeAppointmentRequested, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := NewService(NewPostgresRepositoryWithDB(mock), staticCatalog{{ID: 1, Name: "Limpieza"}}, failingPublisher{}, NewValidator(time.UTC), nil)
	appt, err := svc.Request(context.Background(), Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:00"})
	require.NoError(t, err)
	assert.Equal(t, created, appt.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestFailsWhenEventCannotBeRecorded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO outbox`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("outbox down"))
	mock.ExpectRollback()

	obs := &outcomeRecorder{}
	svc := NewService(NewPostgresRepositoryWithDB(mock), staticCatalog{{ID: 1, Name: "Limpieza"}}, nil, NewValidator(time.UTC), nil, WithObserver(obs))
	_, err = svc.Request(context.Background(), Request{Name: "Ana", Phone: "1234567", TreatmentIDs: []string{"1"}, DateTime: "2026-11-03T10:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox down")
	assert.Equal(t, []string{"error"}, obs.outcomes)
	require.NoError(t, mock.ExpectationsWereMet())
}
