package catalog

import "errors"

var (
	// ErrDataLoad is returned when the treatment source cannot be read.
	ErrDataLoad = errors.New("catalog: treatment data could not be loaded")

	// ErrTreatmentNotFound is returned when an identifier does not resolve.
	ErrTreatmentNotFound = errors.New("catalog: treatment not found")

	// ErrNameAndPriceRequired mirrors the staff form rule.
	ErrNameAndPriceRequired = errors.New("Nombre y precio son obligatorios")

	// ErrInvalidPrice is returned for negative or malformed prices.
	ErrInvalidPrice = errors.New("catalog: invalid price")
)
