package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "IDR", cfg.DefaultCurrency)
	assert.Equal(t, 24, cfg.Policy.MinAdvanceHours)
	assert.Equal(t, 365, cfg.Policy.MaxAdvanceDays)
	assert.Equal(t, 48*time.Hour, cfg.PendingTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "0.05", cfg.ServiceFeeRate.String())

	defaults := cfg.RateDefaults()
	assert.Equal(t, "IDR", defaults.Currency)
	assert.Equal(t, int64(5000), defaults.MaxServiceFee)
	assert.Zero(t, defaults.BaseRate)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_BROKERS=k1:9092, k2:9092\nMIN_STAY_NIGHTS=2\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("MIN_STAY_NIGHTS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2, cfg.Policy.MinStayNights)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"bad duration": {"PENDING_TTL", "soon"},
		"bad int":      {"MAX_ADVANCE_DAYS", "many"},
		"bad policy":   {"MAX_STAY_NIGHTS", "0"},
		"bad currency": {"DEFAULT_CURRENCY", "RUPIAH"},
		"bad backoff":  {"RETRY_BACKOFF", "1s,later"},
		"bad fee rate": {"SERVICE_FEE_RATE", "five"},
		"negative ttl": {"PENDING_TTL", "-1h"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
