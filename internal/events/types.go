package events

import "time"

const (
	// TypeAppointmentRequested is emitted when a visitor requests an appointment.
	TypeAppointmentRequested = "appointment.requested.v1"
	// TypeAppointmentRescheduled is emitted when staff move an appointment.
	TypeAppointmentRescheduled = "appointment.rescheduled.v1"
)

type AppointmentRequestedV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	TreatmentIDs   []int     `json:"treatment_ids"`
	TreatmentNames []string  `json:"treatment_names"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	RequestedAt    time.Time `json:"requested_at"`
}

type AppointmentRescheduledV1 struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Email         string    `json:"email,omitempty"`
	ScheduledFor  time.Time `json:"scheduled_for"`
	OccurredAt    time.Time `json:"occurred_at"`
}
