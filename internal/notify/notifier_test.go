package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithFormat("error", "text", io.Discard)
}

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func outboxEntry(t *testing.T, eventType string, payload any) events.OutboxEntry {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return events.OutboxEntry{ID: uuid.New(), Type: eventType, Payload: data, CreatedAt: time.Now()}
}

func mexicoCity(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	return loc
}

func requestedEvent(email string) events.AppointmentRequestedV1 {
	return events.AppointmentRequestedV1{
		EventID:        "evt-1",
		AppointmentID:  "apt-1",
		PatientName:    "ANA LÓPEZ",
		Phone:          "5512345678",
		Email:          email,
		TreatmentIDs:   []int{1, 4},
		TreatmentNames: []string{"LIMPIEZA DENTAL", "BLANQUEAMIENTO"},
		ScheduledFor:   time.Date(2025, 3, 3, 16, 0, 0, 0, time.UTC),
	}
}

func TestNotifierRequestedSendsClinicAndPatientEmails(t *testing.T) {
	sender := &recordingSender{}
	n := NewAppointmentNotifier(sender, events.NewMemoryProcessedStore(), NotifierConfig{
		ClinicEmail: "recepcion@vitaldent.mx",
		Location:    mexicoCity(t),
	}, testLogger())

	require.NoError(t, n.Handle(context.Background(), outboxEntry(t, events.TypeAppointmentRequested, requestedEvent("ana@example.com"))))
	require.Len(t, sender.sent, 2)

	clinic := sender.sent[0]
	assert.Equal(t, "recepcion@vitaldent.mx", clinic.To)
	assert.Contains(t, clinic.Subject, "ANA LÓPEZ")
	assert.Contains(t, clinic.Body, "LIMPIEZA DENTAL, BLANQUEAMIENTO")
	assert.Contains(t, clinic.Body, "lunes 3 de marzo de 2025, 10:00 h")
	assert.Contains(t, clinic.Body, "Correo: ana@example.com")

	patient := sender.sent[1]
	assert.Equal(t, "ana@example.com", patient.To)
	assert.Equal(t, "Solicitud de cita recibida", patient.Subject)
	assert.Contains(t, patient.Body, "5512345678")
	assert.Equal(t, "recepcion@vitaldent.mx", patient.ReplyTo)
	assert.Empty(t, clinic.ReplyTo)
}

func TestNotifierSkipsPatientWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewAppointmentNotifier(sender, nil, NotifierConfig{ClinicEmail: "recepcion@vitaldent.mx"}, testLogger())
	require.NoError(t, n.Handle(context.Background(), outboxEntry(t, events.TypeAppointmentRequested, requestedEvent(""))))
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].Body, "Correo:")
}

func TestNotifierIsIdempotent(t *testing.T) {
	sender := &recordingSender{}
	n := NewAppointmentNotifier(sender, events.NewMemoryProcessedStore(), NotifierConfig{ClinicEmail: "recepcion@vitaldent.mx"}, testLogger())
	entry := outboxEntry(t, events.TypeAppointmentRequested, requestedEvent(""))

	require.NoError(t, n.Handle(context.Background(), entry))
	require.NoError(t, n.Handle(context.Background(), entry))
	assert.Len(t, sender.sent, 1)
}

func TestNotifierSendFailureIsRetriable(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	processed := events.NewMemoryProcessedStore()
	n := NewAppointmentNotifier(sender, processed, NotifierConfig{ClinicEmail: "recepcion@vitaldent.mx"}, testLogger())
	entry := outboxEntry(t, events.TypeAppointmentRequested, requestedEvent(""))

	require.Error(t, n.Handle(context.Background(), entry))
	done, err := processed.AlreadyProcessed(context.Background(), NotifierConsumer, entry.ID.String())
	require.NoError(t, err)
	assert.False(t, done)

	sender.err = nil
	require.NoError(t, n.Handle(context.Background(), entry))
	assert.Len(t, sender.sent, 1)
}

func TestNotifierRescheduled(t *testing.T) {
	sender := &recordingSender{}
	n := NewAppointmentNotifier(sender, nil, NotifierConfig{Location: mexicoCity(t)}, testLogger())

	evt := events.AppointmentRescheduledV1{
		AppointmentID: "apt-1",
		PatientName:   "ANA",
		Email:         "ana@example.com",
		ScheduledFor:  time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC),
	}
	require.NoError(t, n.Handle(context.Background(), outboxEntry(t, events.TypeAppointmentRescheduled, evt)))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "miércoles 5 de marzo de 2025, 12:30 h")

	evt.Email = ""
	require.NoError(t, n.Handle(context.Background(), outboxEntry(t, events.TypeAppointmentRescheduled, evt)))
	assert.Len(t, sender.sent, 1)
}

func TestNotifierIgnoresUnknownAndRejectsBadPayload(t *testing.T) {
	sender := &recordingSender{}
	n := NewAppointmentNotifier(sender, nil, NotifierConfig{ClinicEmail: "x@y.mx"}, testLogger())

	assert.NoError(t, n.Handle(context.Background(), events.OutboxEntry{ID: uuid.New(), Type: "other.v1"}))
	assert.Error(t, n.Handle(context.Background(), events.OutboxEntry{ID: uuid.New(), Type: events.TypeAppointmentRequested, Payload: []byte("{")}))
	assert.Empty(t, sender.sent)
}
