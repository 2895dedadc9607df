package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	DatabaseDSN        string
	DatabaseMaxConns   int32
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	CORSOrigins        []string

	DefaultCurrency string
	ServiceFeeRate  decimal.Decimal
	MaxServiceFee   int64
	Policy          domainbooking.StayPolicy
	PendingTTL      time.Duration
	ExpirySchedule  string
}

// RateDefaults returns the platform fee settings a new property starts from.
func (c Config) RateDefaults() pricing.RateConfig {
	return pricing.RateConfig{
		Currency:       c.DefaultCurrency,
		ServiceFeeRate: c.ServiceFeeRate,
		MaxServiceFee:  c.MaxServiceFee,
	}
}

// Load reads an optional .env file, then parses the current environment.
// Variables already set in the environment take precedence over the file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:      os.Getenv("DB_DSN"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "staybook"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		DefaultCurrency:  strings.ToUpper(getEnv("DEFAULT_CURRENCY", "IDR")),
		ExpirySchedule:   getEnv("EXPIRY_SCHEDULE", "@every 5m"),
	}

	maxConns, err := parseIntEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseMaxConns = int32(maxConns)

	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.PendingTTL, err = parseDurationEnv("PENDING_TTL", 48*time.Hour); err != nil {
		return Config{}, err
	}
	for _, raw := range splitList(getEnv("RETRY_BACKOFF", "1s,5s,30s")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.ServiceFeeRate, err = decimal.NewFromString(getEnv("SERVICE_FEE_RATE", "0.05")); err != nil {
		return Config{}, fmt.Errorf("invalid SERVICE_FEE_RATE: %w", err)
	}
	maxFee, err := parseIntEnv("MAX_SERVICE_FEE", 5000)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxServiceFee = int64(maxFee)

	policy := domainbooking.StayPolicy{}
	for _, p := range []struct {
		key string
		def int
		dst *int
	}{
		{"MIN_ADVANCE_HOURS", 24, &policy.MinAdvanceHours},
		{"MAX_ADVANCE_DAYS", 365, &policy.MaxAdvanceDays},
		{"MIN_STAY_NIGHTS", 1, &policy.MinStayNights},
		{"MAX_STAY_NIGHTS", 30, &policy.MaxStayNights},
	} {
		if *p.dst, err = parseIntEnv(p.key, p.def); err != nil {
			return Config{}, err
		}
	}
	if err := policy.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Policy = policy

	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", cfg.DefaultCurrency)
	}
	if cfg.PendingTTL <= 0 {
		return Config{}, fmt.Errorf("PENDING_TTL must be positive")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}
