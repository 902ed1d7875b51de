package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Clinic identity
	ClinicName     string
	ClinicTimezone string

	// Catalog source: "static", "remote" or "postgres"
	CatalogSource       string
	CatalogURL          string
	CatalogFetchTimeout time.Duration
	CatalogCacheTTL     time.Duration

	// Quote calculator
	QuotePricePolicy   string
	QuoteDiscountTiers []int

	// HTTP surface
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	FormRateLimit      float64
	FormRateBurst      int

	// Appointment notifications
	EmailProvider      string
	NotifyEmail        string
	SendGridAPIKey     string
	SendGridFromEmail  string
	SendGridFromName   string
	SESFromEmail       string
	OutboxPollInterval time.Duration

	// AWS (SES email, S3 gallery)
	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	AWSEndpointOverride  string
	GalleryBucket        string
	GalleryPublicBaseURL string
	ArchiveBucket        string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ClinicName:     getEnv("CLINIC_NAME", "Clínica Dental Vitaldent"),
		ClinicTimezone: getEnv("CLINIC_TIMEZONE", "America/Mexico_City"),

		CatalogSource:       strings.ToLower(strings.TrimSpace(getEnv("CATALOG_SOURCE", "static"))),
		CatalogURL:          getEnv("CATALOG_URL", ""),
		CatalogFetchTimeout: getEnvAsDuration("CATALOG_FETCH_TIMEOUT", 5*time.Second),
		CatalogCacheTTL:     getEnvAsDuration("CATALOG_CACHE_TTL", time.Minute),

		QuotePricePolicy:   strings.ToLower(strings.TrimSpace(getEnv("QUOTE_PRICE_POLICY", "mean"))),
		QuoteDiscountTiers: getEnvAsIntList("QUOTE_DISCOUNT_TIERS", []int{0, 5, 10, 15, 20}),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		FormRateLimit:      getEnvAsFloat("FORM_RATE_LIMIT", 1),
		FormRateBurst:      getEnvAsInt("FORM_RATE_BURST", 5),

		EmailProvider:      strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		NotifyEmail:        getEnv("NOTIFY_EMAIL", ""),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:  getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "Vitaldent"),
		SESFromEmail:       getEnv("SES_FROM_EMAIL", getEnv("SENDGRID_FROM_EMAIL", "")),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),

		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		GalleryBucket:        getEnv("GALLERY_BUCKET", ""),
		GalleryPublicBaseURL: getEnv("GALLERY_PUBLIC_BASE_URL", ""),
		ArchiveBucket:        getEnv("APPOINTMENT_ARCHIVE_BUCKET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsIntList parses a comma separated list of integers. Any malformed
// entry makes the whole variable fall back to the default.
func getEnvAsIntList(key string, defaultValue []int) []int {
	parts := getEnvAsList(key, nil)
	if len(parts) == 0 {
		return defaultValue
	}
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, value)
	}
	return out
}
