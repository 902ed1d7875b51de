package quote

import "errors"

var (
	// ErrNoTreatmentSelected is returned when the selector is left on the placeholder.
	ErrNoTreatmentSelected = errors.New("Seleccione un tratamiento para cotizar.")

	// ErrTreatmentNotFound is returned when the selected id is not in the catalog.
	ErrTreatmentNotFound = errors.New("Tratamiento no encontrado.")

	// ErrInvalidDiscount is returned for a discount outside the configured tiers.
	ErrInvalidDiscount = errors.New("Seleccione un descuento válido.")

	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("quote: unknown price policy")
)
