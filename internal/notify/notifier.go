package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// NotifierConsumer identifies this consumer in the processed-events ledger.
const NotifierConsumer = "appointment-email"

// ProcessedTracker records which events a consumer has already handled.
type ProcessedTracker interface {
	AlreadyProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
}

// AppointmentNotifier emails the clinic inbox, and the patient when an
// address was given, for appointment outbox events.
type AppointmentNotifier struct {
	sender      EmailSender
	processed   ProcessedTracker
	clinicEmail string
	clinicName  string
	loc         *time.Location
	logger      *logging.Logger
}

// NotifierConfig configures AppointmentNotifier.
type NotifierConfig struct {
	ClinicEmail string
	ClinicName  string
	Location    *time.Location
}

func NewAppointmentNotifier(sender EmailSender, processed ProcessedTracker, cfg NotifierConfig, logger *logging.Logger) *AppointmentNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = DefaultFromName
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &AppointmentNotifier{
		sender:      sender,
		processed:   processed,
		clinicEmail: strings.TrimSpace(cfg.ClinicEmail),
		clinicName:  cfg.ClinicName,
		loc:         cfg.Location,
		logger:      logger,
	}
}

// Handle implements events.DeliveryHandler. Unknown event types are ignored.
func (n *AppointmentNotifier) Handle(ctx context.Context, entry events.OutboxEntry) error {
	eventID := entry.ID.String()
	if n.processed != nil {
		done, err := n.processed.AlreadyProcessed(ctx, NotifierConsumer, eventID)
		if err != nil {
			return fmt.Errorf("notify: check processed: %w", err)
		}
		if done {
			return nil
		}
	}

	var messages []EmailMessage
	switch entry.Type {
	case events.TypeAppointmentRequested:
		var evt events.AppointmentRequestedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		messages = n.requestedMessages(evt)
	case events.TypeAppointmentRescheduled:
		var evt events.AppointmentRescheduledV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		messages = n.rescheduledMessages(evt)
	default:
		return nil
	}

	for _, msg := range messages {
		if err := n.sender.Send(ctx, msg); err != nil {
			return err
		}
	}
	if n.processed != nil {
		if _, err := n.processed.MarkProcessed(ctx, NotifierConsumer, eventID); err != nil {
			n.logger.Warn("failed to mark event processed", "error", err, "event_id", eventID)
		}
	}
	n.logger.Info("appointment notification sent", "event_id", eventID, "type", entry.Type, "emails", len(messages))
	return nil
}

func (n *AppointmentNotifier) requestedMessages(evt events.AppointmentRequestedV1) []EmailMessage {
	when := formatSpanishDateTime(evt.ScheduledFor.In(n.loc))
	treatments := strings.Join(evt.TreatmentNames, ", ")

	var out []EmailMessage
	if n.clinicEmail != "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Nueva solicitud de cita\n\n")
		fmt.Fprintf(&b, "Paciente: %s\n", evt.PatientName)
		fmt.Fprintf(&b, "Teléfono: %s\n", evt.Phone)
		if evt.Email != "" {
			fmt.Fprintf(&b, "Correo: %s\n", evt.Email)
		}
		fmt.Fprintf(&b, "Tratamientos: %s\n", treatments)
		fmt.Fprintf(&b, "Fecha solicitada: %s\n", when)
		fmt.Fprintf(&b, "Folio: %s\n", evt.AppointmentID)
		out = append(out, EmailMessage{
			To:      n.clinicEmail,
			ToName:  n.clinicName,
			Subject: fmt.Sprintf("Nueva cita: %s (%s)", evt.PatientName, when),
			Body:    b.String(),
		})
	}
	if evt.Email != "" {
		body := fmt.Sprintf("Hola %s,\n\nRecibimos su solicitud de cita para %s el %s.\nNos comunicaremos al %s para confirmarla.\n\n%s\n",
			evt.PatientName, treatments, when, evt.Phone, n.clinicName)
		out = append(out, EmailMessage{
			To:      evt.Email,
			ToName:  evt.PatientName,
			Subject: "Solicitud de cita recibida",
			Body:    body,
			ReplyTo: n.clinicEmail,
		})
	}
	return out
}

func (n *AppointmentNotifier) rescheduledMessages(evt events.AppointmentRescheduledV1) []EmailMessage {
	if evt.Email == "" {
		return nil
	}
	when := formatSpanishDateTime(evt.ScheduledFor.In(n.loc))
	return []EmailMessage{{
		To:      evt.Email,
		ToName:  evt.PatientName,
		Subject: "Su cita fue reprogramada",
		Body:    fmt.Sprintf("Hola %s,\n\nSu cita se movió al %s.\n\n%s\n", evt.PatientName, when, n.clinicName),
		ReplyTo: n.clinicEmail,
	}}
}

var _ events.DeliveryHandler = (*AppointmentNotifier)(nil)
