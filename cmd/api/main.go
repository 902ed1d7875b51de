package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vitaldent/clinic-site/cmd/mainconfig"
	"github.com/vitaldent/clinic-site/internal/api/router"
	"github.com/vitaldent/clinic-site/internal/app/bootstrap"
	"github.com/vitaldent/clinic-site/internal/appointments"
	"github.com/vitaldent/clinic-site/internal/archive"
	"github.com/vitaldent/clinic-site/internal/catalog"
	appconfig "github.com/vitaldent/clinic-site/internal/config"
	"github.com/vitaldent/clinic-site/internal/events"
	httpmiddleware "github.com/vitaldent/clinic-site/internal/http/middleware"
	"github.com/vitaldent/clinic-site/internal/notify"
	"github.com/vitaldent/clinic-site/internal/observability/metrics"
	"github.com/vitaldent/clinic-site/internal/preferences"
	"github.com/vitaldent/clinic-site/internal/quote"
	"github.com/vitaldent/clinic-site/internal/web"
	"github.com/vitaldent/clinic-site/internal/widgets"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

const galleryPrefix = "galeria/"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting vitaldent site",
		"env", cfg.Env,
		"port", cfg.Port,
		"catalog_source", cfg.CatalogSource,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	site, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer site.Close()

	go site.deliverer.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      site.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// app holds everything main starts and later tears down.
type app struct {
	handler   http.Handler
	deliverer *events.Deliverer
	metrics   *metrics.SiteMetrics
	closers   []func()
}

// Close releases pools, clients and background goroutines in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	out := &app{}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		out.closers = append(out.closers, pool.Close)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		out.closers = append(out.closers, func() { _ = redisClient.Close() })
	}

	metricsHandler, siteMetrics := setupMetrics()
	out.metrics = siteMetrics

	cat, err := bootstrap.BuildCatalog(cfg, pool, redisClient, siteMetrics, logger)
	if err != nil {
		out.Close()
		return nil, err
	}

	policy, err := quote.ParsePolicy(cfg.QuotePricePolicy)
	if err != nil {
		out.Close()
		return nil, err
	}
	calc := quote.NewCalculator(policy, cfg.QuoteDiscountTiers, siteMetrics)

	loc := bootstrap.ClinicLocation(cfg, logger)
	repo, outbox, processed := buildAppointmentStores(pool)

	s3Client, ses := buildAWSClients(ctx, cfg, logger)
	sender, provider, reason := bootstrap.BuildEmailSender(cfg, ses, logger)
	if reason != "" {
		logger.Warn("email provider fallback", "requested", cfg.EmailProvider, "provider", provider, "reason", reason)
	}
	var archiveS3 archive.S3API
	if s3Client != nil {
		archiveS3 = s3Client
	}
	delivery := bootstrap.BuildDeliveryHandler(cfg, loc, sender, processed, archiveS3, logger)
	out.deliverer = events.NewDeliverer(outbox, delivery, logger.Component("outbox")).WithInterval(cfg.OutboxPollInterval)

	service := appointments.NewService(repo, cat.Loader, outbox, appointments.NewValidator(loc), logger.Component("appointments"),
		appointments.WithObserver(siteMetrics),
	)

	var gallery widgets.GallerySource = widgets.StaticGallery(widgets.DefaultGalleryImages)
	if s3Client != nil && cfg.GalleryBucket != "" {
		gallery = widgets.NewS3Gallery(s3Client, cfg.GalleryBucket, galleryPrefix, cfg.GalleryPublicBaseURL)
	}

	prefsHandler := preferences.NewHandler(buildPreferenceStore(redisClient), logger.Component("preferences"))

	siteHandler, err := web.NewHandler(web.Config{
		ClinicName:   cfg.ClinicName,
		Catalog:      cat.Loader,
		Calculator:   calc,
		Appointments: service,
		Gallery:      gallery,
		Preferences:  prefsHandler,
		Logger:       logger.Component("web"),
	})
	if err != nil {
		out.Close()
		return nil, err
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.FormRateLimit > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.FormRateLimit, cfg.FormRateBurst)
		out.closers = append(out.closers, limiter.Close)
	}

	out.handler = router.New(&router.Config{
		Logger:              logger,
		Site:                siteHandler,
		CatalogHandler:      catalog.NewHandler(cat.Loader, cat.Repo, cat.Cache, logger.Component("catalog")),
		QuoteHandler:        quote.NewHandler(calc, cat.Loader, logger.Component("quote")),
		AppointmentsHandler: appointments.NewHandler(service, logger.Component("appointments")),
		PreferencesHandler:  prefsHandler,
		Static:              web.Static(),
		MetricsHandler:      metricsHandler,
		HealthCheck:         healthCheck(pool, redisClient),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		FormLimiter:         limiter,
	})
	return out, nil
}

func setupMetrics() (http.Handler, *metrics.SiteMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSiteMetrics(reg)
}

// buildAppointmentStores returns Postgres-backed stores when a pool is
// available and in-memory ones otherwise.
func buildAppointmentStores(pool *pgxpool.Pool) (appointments.Repository, events.Store, notify.ProcessedTracker) {
	if pool == nil {
		return appointments.NewInMemoryRepository(), events.NewMemoryOutbox(), events.NewMemoryProcessedStore()
	}
	return appointments.NewPostgresRepository(pool), events.NewOutboxStore(pool), events.NewProcessedStore(pool)
}

func buildPreferenceStore(redisClient *redis.Client) preferences.Store {
	if redisClient == nil {
		return preferences.NewMemoryStore()
	}
	return preferences.NewRedisStore(redisClient)
}

// buildAWSClients loads AWS only when a bucket or SES is configured. Failures
// disable the AWS-backed features instead of aborting startup.
func buildAWSClients(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*s3.Client, notify.SESAPI) {
	wantS3 := cfg.GalleryBucket != "" || cfg.ArchiveBucket != ""
	wantSES := cfg.EmailProvider == "ses"
	if !wantS3 && !wantSES {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; gallery, archive and SES disabled", "error", err)
		return nil, nil
	}
	var (
		s3Client *s3.Client
		ses      notify.SESAPI
	)
	if wantS3 {
		s3Client = mainconfig.NewS3Client(awsCfg, cfg)
	}
	if wantSES {
		ses = mainconfig.NewSESClient(awsCfg, cfg)
	}
	return s3Client, ses
}

func healthCheck(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, `{"status":"degraded","postgres":"unreachable"}`
			}
		}
		if status == http.StatusOK && redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status, body = http.StatusServiceUnavailable, `{"status":"degraded","redis":"unreachable"}`
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
