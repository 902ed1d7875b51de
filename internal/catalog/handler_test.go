package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

type recordingInvalidator struct{ calls int }

func (r *recordingInvalidator) Invalidate(ctx context.Context) error {
	r.calls++
	return nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *InMemoryRepository, *recordingInvalidator) {
	t.Helper()
	seed, err := NewStaticSource().Load(context.Background())
	require.NoError(t, err)
	repo := NewInMemoryRepository(seed[:2]...)
	cache := &recordingInvalidator{}
	h := NewHandler(NewLoader(repo, "memory", logging.Default()), repo, cache, logging.Default())

	r := chi.NewRouter()
	r.Get("/api/tratamientos/", h.ListPublic)
	r.Get("/admin/tratamientos", h.List)
	r.Post("/admin/tratamientos", h.Create)
	r.Put("/admin/tratamientos/{id}", h.Update)
	r.Delete("/admin/tratamientos/{id}", h.Delete)
	return r, repo, cache
}

func TestListPublicServesWireShape(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tratamientos/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.EqualValues(t, 1, body[0]["id"])
	assert.EqualValues(t, 750, body[0]["precio"])
	assert.EqualValues(t, 600, body[0]["precioMin"])
	assert.Equal(t, "$600 - $900 MXN", body[0]["precioTexto"])
}

func TestListPublicEmptyOnFailure(t *testing.T) {
	h := NewHandler(NewLoader(&countingSource{err: ErrDataLoad}, "remote", nil), nil, nil, nil)
	rec := httptest.NewRecorder()
	h.ListPublic(rec, httptest.NewRequest(http.MethodGet, "/api/tratamientos/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.False(t, h.Editable())
}

func TestAdminCreateValidates(t *testing.T) {
	router, _, cache := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/tratamientos", strings.NewReader(`{"nombre": "Sellador"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nombre y precio son obligatorios")
	assert.Zero(t, cache.calls)
}

func TestAdminCreateUpdateDelete(t *testing.T) {
	router, repo, cache := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/tratamientos", strings.NewReader(`{"nombre": "Sellador", "descripcion": "fosetas", "precio": "350"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 3, created.ID)
	assert.Equal(t, "SELLADOR", created.Nombre)
	assert.Equal(t, "FOSETAS", created.Descripcion)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/tratamientos/3", strings.NewReader(`{"nombre": "Sellador", "precio": "400"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "400.00", got.BasePrice.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/tratamientos/3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/tratamientos/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 3, cache.calls)
}

func TestAdminRejectsBadID(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/tratamientos/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
