package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CATALOG_SOURCE", "")
	t.Setenv("QUOTE_PRICE_POLICY", "")
	t.Setenv("QUOTE_DISCOUNT_TIERS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CatalogSource != "static" {
		t.Fatalf("expected static catalog by default, got %s", cfg.CatalogSource)
	}
	if cfg.QuotePricePolicy != "mean" {
		t.Fatalf("expected mean quote policy by default, got %s", cfg.QuotePricePolicy)
	}
	if !reflect.DeepEqual(cfg.QuoteDiscountTiers, []int{0, 5, 10, 15, 20}) {
		t.Fatalf("unexpected default discount tiers %v", cfg.QuoteDiscountTiers)
	}
	if cfg.CatalogFetchTimeout != 5*time.Second {
		t.Fatalf("expected default fetch timeout, got %s", cfg.CatalogFetchTimeout)
	}
	if cfg.ClinicTimezone != "America/Mexico_City" {
		t.Fatalf("expected default timezone, got %s", cfg.ClinicTimezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CATALOG_SOURCE", " Remote ")
	t.Setenv("CATALOG_URL", "http://backend/api/tratamientos/")
	t.Setenv("CATALOG_CACHE_TTL", "45s")
	t.Setenv("QUOTE_PRICE_POLICY", "minimum")
	t.Setenv("QUOTE_DISCOUNT_TIERS", "0, 10,25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FORM_RATE_LIMIT", "0.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("expected lower-cased log format, got %s", cfg.LogFormat)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.CatalogSource != "remote" {
		t.Fatalf("expected normalized catalog source, got %q", cfg.CatalogSource)
	}
	if cfg.CatalogCacheTTL != 45*time.Second {
		t.Fatalf("expected cache ttl override, got %s", cfg.CatalogCacheTTL)
	}
	if cfg.QuotePricePolicy != "minimum" {
		t.Fatalf("expected policy override, got %s", cfg.QuotePricePolicy)
	}
	if !reflect.DeepEqual(cfg.QuoteDiscountTiers, []int{0, 10, 25}) {
		t.Fatalf("unexpected tiers %v", cfg.QuoteDiscountTiers)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.FormRateLimit != 0.5 {
		t.Fatalf("expected rate override, got %v", cfg.FormRateLimit)
	}
}

func TestMalformedTierListFallsBack(t *testing.T) {
	t.Setenv("QUOTE_DISCOUNT_TIERS", "0,ten,20")
	cfg := Load()
	if !reflect.DeepEqual(cfg.QuoteDiscountTiers, []int{0, 5, 10, 15, 20}) {
		t.Fatalf("expected default tiers on malformed input, got %v", cfg.QuoteDiscountTiers)
	}
}

func TestSESFromEmailFallsBackToSendGridSender(t *testing.T) {
	t.Setenv("SES_FROM_EMAIL", "")
	t.Setenv("SENDGRID_FROM_EMAIL", "citas@vitaldent.example")
	if got := Load().SESFromEmail; got != "citas@vitaldent.example" {
		t.Fatalf("expected sendgrid sender fallback, got %q", got)
	}

	t.Setenv("SES_FROM_EMAIL", "ses@vitaldent.example")
	if got := Load().SESFromEmail; got != "ses@vitaldent.example" {
		t.Fatalf("expected explicit SES sender, got %q", got)
	}
}
