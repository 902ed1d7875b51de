package router

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vitaldent/clinic-site/internal/appointments"
	"github.com/vitaldent/clinic-site/internal/catalog"
	httpmiddleware "github.com/vitaldent/clinic-site/internal/http/middleware"
	"github.com/vitaldent/clinic-site/internal/preferences"
	"github.com/vitaldent/clinic-site/internal/quote"
	"github.com/vitaldent/clinic-site/internal/web"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// Config holds router configuration. Only Site is required.
type Config struct {
	Logger              *logging.Logger
	Site                *web.Handler
	CatalogHandler      *catalog.Handler
	QuoteHandler        *quote.Handler
	AppointmentsHandler *appointments.Handler
	PreferencesHandler  *preferences.Handler
	Static              fs.FS
	MetricsHandler      http.Handler
	HealthCheck         http.HandlerFunc
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
	// FormLimiter throttles the public form posts; nil disables limiting.
	FormLimiter *httpmiddleware.RateLimiter
}

// New creates the chi router with every route configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	forms := func(h http.HandlerFunc) http.Handler {
		if cfg.FormLimiter == nil {
			return h
		}
		return cfg.FormLimiter.Middleware(h)
	}

	// Public site
	r.Group(func(public chi.Router) {
		health := cfg.HealthCheck
		if health == nil {
			health = healthOK
		}
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Static != nil {
			public.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static))))
		}

		public.Get("/", cfg.Site.Index)
		public.Method(http.MethodPost, "/cotizar", forms(cfg.Site.Quote))
		public.Method(http.MethodPost, "/solicitar-cita/", forms(cfg.Site.RequestAppointment))

		if cfg.PreferencesHandler != nil {
			public.Post("/preferencias/tema", cfg.PreferencesHandler.ToggleTheme)
			public.Post("/preferencias/texto", cfg.PreferencesHandler.AdjustText)
		}
	})

	// JSON API, callable cross-origin
	r.Route("/api", func(api chi.Router) {
		if len(cfg.CORSAllowedOrigins) > 0 {
			api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
		}
		if cfg.CatalogHandler != nil {
			api.Get("/tratamientos/", cfg.CatalogHandler.ListPublic)
		}
		if cfg.QuoteHandler != nil {
			api.Method(http.MethodPost, "/cotizaciones", forms(cfg.QuoteHandler.Create))
		}
	})

	// Staff API (HMAC bearer tokens)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.CatalogHandler != nil && cfg.CatalogHandler.Editable() {
				admin.Route("/tratamientos", func(t chi.Router) {
					t.Get("/", cfg.CatalogHandler.List)
					t.Post("/", cfg.CatalogHandler.Create)
					t.Put("/{id}", cfg.CatalogHandler.Update)
					t.Delete("/{id}", cfg.CatalogHandler.Delete)
				})
			}
			if cfg.AppointmentsHandler != nil {
				admin.Route("/citas", func(c chi.Router) {
					c.Get("/", cfg.AppointmentsHandler.List)
					c.Get("/{id}", cfg.AppointmentsHandler.Get)
					c.Put("/{id}/fecha", cfg.AppointmentsHandler.Reschedule)
					c.Put("/{id}/estatus", cfg.AppointmentsHandler.SetStatus)
					c.Post("/{id}/atendida", cfg.AppointmentsHandler.MarkAttended)
					c.Delete("/{id}", cfg.AppointmentsHandler.Delete)
				})
			}
		})
	}

	return r
}

func healthOK(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
