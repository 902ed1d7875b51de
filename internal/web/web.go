// Package web renders the public landing page and handles its form posts.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/vitaldent/clinic-site/internal/appointments"
	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/http/flash"
	"github.com/vitaldent/clinic-site/internal/preferences"
	"github.com/vitaldent/clinic-site/internal/quote"
	"github.com/vitaldent/clinic-site/internal/slider"
	"github.com/vitaldent/clinic-site/internal/widgets"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the bundled stylesheet tree, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// CatalogLoader returns the current treatments, never failing.
type CatalogLoader interface {
	Load(ctx context.Context) []catalog.Treatment
}

// PreferenceResolver resolves the visitor's display preferences.
type PreferenceResolver interface {
	Resolve(ctx context.Context, r *http.Request) preferences.Preferences
}

// Config wires the landing page dependencies. Gallery and Preferences are
// optional.
type Config struct {
	ClinicName   string
	Catalog      CatalogLoader
	Calculator   *quote.Calculator
	Appointments *appointments.Service
	Gallery      widgets.GallerySource
	Preferences  PreferenceResolver
	Logger       *logging.Logger
	Now          func() time.Time
}

// Handler serves the landing page.
type Handler struct {
	clinicName   string
	catalog      CatalogLoader
	calc         *quote.Calculator
	appointments *appointments.Service
	gallery      widgets.GallerySource
	prefs        PreferenceResolver
	logger       *logging.Logger
	now          func() time.Time
	tmpl         *template.Template
}

// NewHandler parses the embedded templates.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Catalog == nil || cfg.Calculator == nil || cfg.Appointments == nil {
		return nil, errors.New("web: catalog, calculator and appointments are required")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = "Clínica Dental Vitaldent"
	}
	return &Handler{
		clinicName:   cfg.ClinicName,
		catalog:      cfg.Catalog,
		calc:         cfg.Calculator,
		appointments: cfg.Appointments,
		gallery:      cfg.Gallery,
		prefs:        cfg.Preferences,
		logger:       cfg.Logger,
		now:          cfg.Now,
		tmpl:         tmpl,
	}, nil
}

// Index handles GET /. ?pagina selects the slider page and ?tratamiento
// preselects the quote selector.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page := h.newPage(w, r)
	if id, err := strconv.Atoi(r.URL.Query().Get("tratamiento")); err == nil {
		page.selectTreatment(id)
	}
	h.render(w, http.StatusOK, page)
}

// Quote handles POST /cotizar and re-renders the page with the breakdown.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	page := h.newPage(w, r)
	req := quote.Request{
		TreatmentID: r.FormValue("tratamiento"),
		Quantity:    r.FormValue("cantidad"),
		Discount:    r.FormValue("descuento"),
	}
	page.Nav = widgets.Nav("cotizacion")
	page.Quote.Quantity = quote.CoerceQuantity(req.Quantity)
	if pct, err := h.calc.ParseDiscount(req.Discount); err == nil {
		page.Quote.selectTier(pct)
	}
	if id, err := strconv.Atoi(req.TreatmentID); err == nil {
		page.selectTreatment(id)
	}

	q, err := h.calc.Calculate(r.Context(), page.treatments, req)
	if err != nil {
		page.Quote.Error = err.Error()
		h.render(w, quote.StatusFor(err), page)
		return
	}
	page.Quote.Result = q
	page.Quote.Notice = q.Notice()
	h.render(w, http.StatusOK, page)
}

// RequestAppointment handles POST /solicitar-cita/. Success redirects back
// with a flash banner; failures re-render the form with the entered values.
func (h *Handler) RequestAppointment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := appointments.Request{
		Name:         r.PostFormValue("nombre"),
		Phone:        r.PostFormValue("telefono"),
		Email:        r.PostFormValue("correo"),
		TreatmentIDs: r.PostForm["tratamientos"],
		Date:         r.PostFormValue("fecha"),
		Time:         r.PostFormValue("hora"),
		DateTime:     r.PostFormValue("fecha_hora"),
	}

	_, err := h.appointments.Request(r.Context(), req)
	if err == nil {
		flash.Set(w, flash.Success, appointments.MsgRequestSubmitted)
		http.Redirect(w, r, "/#contacto", http.StatusSeeOther)
		return
	}

	page := h.newPage(w, r)
	page.Nav = widgets.Nav("contacto")
	page.Appointment.fill(req)

	var verr *appointments.ValidationError
	status := http.StatusUnprocessableEntity
	switch {
	case errors.As(err, &verr):
		page.Appointment.Error = verr.Message
	case errors.Is(err, appointments.ErrSlotTaken):
		page.Appointment.Error = appointments.MsgSlotTaken
		status = http.StatusConflict
	default:
		h.logger.Error("appointment request failed", "error", err)
		page.Appointment.Error = appointments.MsgRequestFailed
		status = http.StatusInternalServerError
	}
	if page.Appointment.limitHit && page.Appointment.Error == appointments.MsgTreatmentCount {
		page.Appointment.Error = appointments.MsgSelectionLimit
	}
	h.render(w, status, page)
}

func (h *Handler) newPage(w http.ResponseWriter, r *http.Request) *pageData {
	ctx := r.Context()
	prefs := preferences.Default()
	if h.prefs != nil {
		prefs = h.prefs.Resolve(ctx, r)
	}
	treatments := h.catalog.Load(ctx)
	view := catalog.Render(treatments, 0)
	ctrl := slider.FromQuery(len(view.Pages), r.URL.Query().Get(slider.QueryParam))

	var gallery widgets.Gallery
	if h.gallery != nil {
		gallery = widgets.LoadGallery(ctx, h.gallery, h.logger)
	}

	now := h.now().In(h.appointments.Validator().Location())
	page := &pageData{
		ClinicName:       h.clinicName,
		Theme:            prefs.Theme.Assets(),
		FontSizePx:       widgets.ClampFontSize(prefs.FontSizePx),
		Nav:              widgets.Nav(widgets.DefaultSection),
		HeaderOffset:     widgets.HeaderOffset,
		SectionTolerance: widgets.SectionTolerance,
		AmbientStyle:     template.CSS(widgets.FrameAt(ambientPhase(now)).Style()),
		PhaseStep:        widgets.PhaseStep,
		Catalog:          view,
		Slider:           newSliderView(ctrl),
		Quote:            newQuoteView(h.calc.Tiers()),
		Appointment:      newAppointmentView(treatments, now),
		Gallery:          gallery,
		Testimonials:     widgets.Testimonials(),
		Year:             now.Year(),
		treatments:       treatments,
	}
	if msg, ok := flash.Pop(w, r); ok {
		page.Flash = &msg
	}
	return page
}

func (h *Handler) render(w http.ResponseWriter, status int, page *pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index", page); err != nil {
		h.logger.Error("render landing page failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ambientPhase maps wall time within the hour onto the background animation
// phase at 60 frames per second.
func ambientPhase(now time.Time) float64 {
	frames := float64(now.UnixMilli()%time.Hour.Milliseconds()) * 60 / 1000
	return frames * widgets.PhaseStep
}
