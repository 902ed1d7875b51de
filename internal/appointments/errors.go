package appointments

import "errors"

// User-facing messages, shown in the single banner above the form.
const (
	MsgNameRequired      = "Por favor ingrese su nombre."
	MsgInvalidPhone      = "Ingrese un telefono valido (7-15 digitos)."
	MsgTreatmentCount    = "Seleccione al menos un tratamiento (max. 2)."
	MsgDateTimeRequired  = "Seleccione fecha y hora para la cita."
	MsgInvalidDateTime   = "Fecha invalida."
	MsgInvalidEmail      = "Ingrese un correo valido."
	MsgRequestSubmitted  = "La cita fue solicitada correctamente. Nos pondremos en contacto para confirmar."
	MsgSelectionLimit    = "Solo puedes seleccionar hasta 2 tratamientos por solicitud."
	MsgSlotTaken         = "Ya existe una cita en esa hora. Elija otro horario."
	MsgRequestFailed     = "No se pudo registrar la cita. Intente nuevamente."
	MsgUnknownTreatments = "Los tratamientos seleccionados no estan disponibles."
)

var (
	// ErrSelectionLimit is returned when a third treatment is toggled on.
	ErrSelectionLimit = errors.New(MsgSelectionLimit)

	// ErrSlotTaken is returned when the clinic-local hour is already booked.
	ErrSlotTaken = errors.New(MsgSlotTaken)

	// ErrAppointmentNotFound is returned when an id does not resolve.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidStatus is returned for unknown status names.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// ValidationError reports the first failing form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
