package appointments

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxTreatments is the most treatments one request may reference.
const MaxTreatments = 2

var (
	phonePattern = regexp.MustCompile(`^[0-9]{7,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Validated is a request that passed validation.
type Validated struct {
	Name  string
	Phone string
	Email string
	// TreatmentIDs holds the numeric ids in submission order; non-numeric
	// values are dropped.
	TreatmentIDs []int
	ScheduledAt  time.Time
}

// Validator checks appointment requests. Date and time are interpreted in
// the clinic time zone.
type Validator struct {
	loc *time.Location
}

// NewValidator returns a validator for the given clinic location.
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{loc: loc}
}

// Location returns the clinic time zone.
func (v *Validator) Location() *time.Location { return v.loc }

// Validate checks fields in order name, phone, treatment count, date/time,
// email and returns the first failure as a *ValidationError.
func (v *Validator) Validate(req Request) (*Validated, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Field: "nombre", Message: MsgNameRequired}
	}

	phone := strings.TrimSpace(req.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, &ValidationError{Field: "telefono", Message: MsgInvalidPhone}
	}

	selected := distinct(req.TreatmentIDs)
	if len(selected) < 1 || len(selected) > MaxTreatments {
		return nil, &ValidationError{Field: "tratamiento", Message: MsgTreatmentCount}
	}

	raw := req.CombinedDateTime()
	if raw == "" {
		return nil, &ValidationError{Field: "fecha-cita", Message: MsgDateTimeRequired}
	}
	at, ok := v.ParseDateTime(raw)
	if !ok {
		return nil, &ValidationError{Field: "fecha-cita", Message: MsgInvalidDateTime}
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "correo", Message: MsgInvalidEmail}
	}

	ids := make([]int, 0, len(selected))
	for _, s := range selected {
		if id, err := strconv.Atoi(s); err == nil {
			ids = append(ids, id)
		}
	}

	return &Validated{
		Name:         name,
		Phone:        phone,
		Email:        email,
		TreatmentIDs: ids,
		ScheduledAt:  at,
	}, nil
}

// ParseDateTime parses a local date-time in the clinic zone, or an RFC 3339
// instant converted into it.
func (v *Validator) ParseDateTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, v.loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(v.loc), true
	}
	return time.Time{}, false
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
