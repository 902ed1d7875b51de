package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// CatalogLoader supplies the treatments a quote is resolved against.
type CatalogLoader interface {
	Load(ctx context.Context) []catalog.Treatment
}

// Handler serves the JSON quote endpoint.
type Handler struct {
	calc   *Calculator
	loader CatalogLoader
	logger *logging.Logger
}

// NewHandler creates a quote handler.
func NewHandler(calc *Calculator, loader CatalogLoader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{calc: calc, loader: loader, logger: logger}
}

// field accepts a JSON string or number.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = field(n.String())
	return nil
}

type quoteRequest struct {
	TreatmentID field `json:"tratamiento"`
	Quantity    field `json:"cantidad"`
	Discount    field `json:"descuento"`
}

type quoteResponse struct {
	*Quote
	Mensaje string `json:"mensaje"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create handles POST /api/cotizaciones.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	q, err := h.calc.Calculate(r.Context(), h.loader.Load(r.Context()), Request{
		TreatmentID: string(body.TreatmentID),
		Quantity:    strings.TrimSpace(string(body.Quantity)),
		Discount:    string(body.Discount),
	})
	if err != nil {
		writeJSON(w, StatusFor(err), errorResponse{Error: err.Error()})
		return
	}

	h.logger.Debug("quote computed", "treatment_id", q.TreatmentID, "quantity", q.Quantity, "total", q.Total.String())
	writeJSON(w, http.StatusOK, quoteResponse{Quote: q, Mensaje: q.Notice()})
}

// StatusFor maps calculator errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrTreatmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoTreatmentSelected), errors.Is(err, ErrInvalidDiscount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
