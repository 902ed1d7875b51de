package appointments

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "PENDIENTE"
	StatusConfirmed Status = "CONFIRMADA"
	StatusCancelled Status = "CANCELADA"
	StatusAttended  Status = "ATENDIDA"
)

// ParseStatus normalizes a status name to upper case and checks it is known.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusAttended:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// TreatmentRef is a treatment attached to an appointment. The name is
// captured at request time so later catalog edits do not rewrite history.
type TreatmentRef struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// Appointment is a stored appointment request.
type Appointment struct {
	ID          string         `json:"id"`
	PatientName string         `json:"nombre_paciente"`
	Phone       string         `json:"telefono"`
	Email       string         `json:"correo,omitempty"`
	Treatments  []TreatmentRef `json:"tratamientos"`
	ScheduledAt time.Time      `json:"fecha_cita"`
	// SlotStart is the start of the clinic-local hour containing ScheduledAt.
	SlotStart time.Time `json:"-"`
	Status    Status    `json:"estatus"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreatmentIDs returns the identifiers of the attached treatments.
func (a *Appointment) TreatmentIDs() []int {
	ids := make([]int, 0, len(a.Treatments))
	for _, t := range a.Treatments {
		ids = append(ids, t.ID)
	}
	return ids
}

// TreatmentNames returns the names of the attached treatments.
func (a *Appointment) TreatmentNames() []string {
	names := make([]string, 0, len(a.Treatments))
	for _, t := range a.Treatments {
		names = append(names, t.Name)
	}
	return names
}

// Request is the raw appointment form input. Date and Time come from the
// separate day and hour inputs; DateTime is the combined value.
type Request struct {
	Name         string
	Phone        string
	Email        string
	TreatmentIDs []string
	Date         string
	Time         string
	DateTime     string
}

// CombinedDateTime returns "YYYY-MM-DDTHH:MM" when both parts are present,
// otherwise the combined field.
func (r Request) CombinedDateTime() string {
	date, clock := strings.TrimSpace(r.Date), strings.TrimSpace(r.Time)
	if date != "" && clock != "" {
		return date + "T" + clock
	}
	return strings.TrimSpace(r.DateTime)
}

// ListFilter narrows staff listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// SlotStart truncates t to the start of its hour in loc.
func SlotStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}
