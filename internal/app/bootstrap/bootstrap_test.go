package bootstrap

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"

	"github.com/vitaldent/clinic-site/internal/catalog"
	appconfig "github.com/vitaldent/clinic-site/internal/config"
	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/internal/notify"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, false); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client when redis is reachable")
	}
	_ = client.Close()

	mr.Close()
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), &appconfig.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestClinicLocation(t *testing.T) {
	if loc := ClinicLocation(nil, nil); loc != time.UTC {
		t.Fatalf("expected UTC for nil config, got %v", loc)
	}
	if loc := ClinicLocation(&appconfig.Config{ClinicTimezone: "Mars/Olympus"}, logging.New("error")); loc != time.UTC {
		t.Fatalf("expected UTC for unknown zone, got %v", loc)
	}
	if loc := ClinicLocation(&appconfig.Config{ClinicTimezone: "America/Mexico_City"}, nil); loc.String() != "America/Mexico_City" {
		t.Fatalf("expected clinic zone, got %v", loc)
	}
}

func TestBuildCatalogSources(t *testing.T) {
	logger := logging.New("error")

	if _, err := BuildCatalog(nil, nil, nil, nil, logger); err == nil {
		t.Fatalf("expected error for nil config")
	}

	static, err := BuildCatalog(&appconfig.Config{}, nil, nil, nil, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if static.Repo != nil || static.Cache != nil {
		t.Fatalf("static catalog should be read-only and uncached")
	}
	if got := static.Loader.Load(context.Background()); len(got) == 0 {
		t.Fatalf("expected bundled treatments")
	}

	if _, err := BuildCatalog(&appconfig.Config{CatalogSource: "remote"}, nil, nil, nil, logger); err == nil {
		t.Fatalf("expected error when remote URL is missing")
	}
	if _, err := BuildCatalog(&appconfig.Config{CatalogSource: "postgres"}, nil, nil, nil, logger); err == nil {
		t.Fatalf("expected error when postgres pool is missing")
	}
	if _, err := BuildCatalog(&appconfig.Config{CatalogSource: "ftp"}, nil, nil, nil, logger); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestBuildCatalogMemoryWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{CatalogSource: "memory", RedisAddr: mr.Addr(), CatalogCacheTTL: time.Minute}
	client := BuildRedisClient(context.Background(), cfg, nil, false)
	t.Cleanup(func() { _ = client.Close() })

	built, err := BuildCatalog(cfg, nil, client, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if built.Repo == nil {
		t.Fatalf("memory catalog should be editable")
	}
	if _, ok := built.Cache.(*catalog.CachedSource); !ok {
		t.Fatalf("expected redis cache, got %T", built.Cache)
	}
}

type nopSES struct{}

func (nopSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	return &sesv2.SendEmailOutput{}, nil
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.New("error")
	cases := []struct {
		name     string
		cfg      *appconfig.Config
		ses      notify.SESAPI
		provider string
		fallback bool
	}{
		{"nil config", nil, nil, "stub", true},
		{"default stub", &appconfig.Config{}, nil, "stub", false},
		{"sendgrid without key", &appconfig.Config{EmailProvider: "sendgrid"}, nil, "stub", true},
		{"sendgrid", &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.key", SendGridFromEmail: "citas@vitaldent.example"}, nil, "sendgrid", false},
		{"ses without client", &appconfig.Config{EmailProvider: "ses"}, nil, "stub", true},
		{"ses", &appconfig.Config{EmailProvider: "ses", SESFromEmail: "citas@vitaldent.example"}, nopSES{}, "ses", false},
		{"unknown", &appconfig.Config{EmailProvider: "pigeon"}, nil, "stub", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender, provider, reason := BuildEmailSender(tc.cfg, tc.ses, logger)
			if sender == nil {
				t.Fatalf("expected a sender")
			}
			if provider != tc.provider {
				t.Fatalf("expected provider %s, got %s", tc.provider, provider)
			}
			if tc.fallback && reason == "" {
				t.Fatalf("expected a fallback reason")
			}
			if !tc.fallback && reason != "" {
				t.Fatalf("unexpected fallback reason %q", reason)
			}
		})
	}
}

type countingSender struct{ sent int }

func (c *countingSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	c.sent++
	return nil
}

func TestBuildDeliveryHandlerNotifiesWithoutArchive(t *testing.T) {
	sender := &countingSender{}
	cfg := &appconfig.Config{NotifyEmail: "recepcion@vitaldent.example", ArchiveBucket: "archive"}

	handler := BuildDeliveryHandler(cfg, time.UTC, sender, events.NewMemoryProcessedStore(), nil, logging.New("error"))
	fanout, ok := handler.(events.Fanout)
	if !ok {
		t.Fatalf("expected fanout handler, got %T", handler)
	}
	if len(fanout) != 1 {
		t.Fatalf("archive should be skipped without an S3 client, got %d handlers", len(fanout))
	}

	payload, _ := json.Marshal(events.AppointmentRequestedV1{
		AppointmentID:  uuid.NewString(),
		PatientName:    "Ana López",
		Phone:          "5512345678",
		TreatmentNames: []string{"LIMPIEZA DENTAL"},
		ScheduledFor:   time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	})
	entry := events.OutboxEntry{ID: uuid.New(), Type: events.TypeAppointmentRequested, Payload: payload}
	if err := handler.Handle(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.sent != 1 {
		t.Fatalf("expected clinic email only, got %d", sender.sent)
	}
}
