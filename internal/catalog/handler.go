package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// Invalidator drops cached catalog data after staff edits.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler serves the treatment catalog over HTTP.
type Handler struct {
	loader *Loader
	repo   Repository
	cache  Invalidator
	logger *logging.Logger
}

// NewHandler creates a catalog handler. repo may be nil when the catalog is
// not staff-editable; cache may be nil when nothing is cached.
func NewHandler(loader *Loader, repo Repository, cache Invalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{loader: loader, repo: repo, cache: cache, logger: logger}
}

// Editable reports whether staff CRUD routes can be served.
func (h *Handler) Editable() bool {
	return h.repo != nil
}

// ListPublic handles GET /api/tratamientos/.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	treatments := h.loader.Load(r.Context())
	writeJSON(w, http.StatusOK, Records(treatments))
}

// List handles GET /admin/tratamientos.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	treatments, err := h.repo.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to list treatments", "error", err)
		http.Error(w, "failed to list treatments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, Records(treatments))
}

// Create handles POST /admin/tratamientos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in TreatmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.repo.Create(r.Context(), &in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.invalidate(r.Context())
	h.logger.Info("treatment created", "id", t.ID, "name", t.Name)
	writeJSON(w, http.StatusCreated, t.Record())
}

// Update handles PUT /admin/tratamientos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in TreatmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.repo.Update(r.Context(), id, &in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.invalidate(r.Context())
	h.logger.Info("treatment updated", "id", t.ID)
	writeJSON(w, http.StatusOK, t.Record())
}

// Delete handles DELETE /admin/tratamientos/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.invalidate(r.Context())
	h.logger.Info("treatment deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("catalog cache invalidation failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNameAndPriceRequired), errors.Is(err, ErrInvalidPrice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTreatmentNotFound):
		http.Error(w, "Tratamiento no encontrado.", http.StatusNotFound)
	default:
		h.logger.Error("treatment write failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid treatment id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
