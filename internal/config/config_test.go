package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CURRENCY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "checkout-events", cfg.KafkaTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("BREAKER_FAILURES", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, uint32(2), cfg.BreakerFailures)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	assert.Equal(t, 0, getEnvInt("REDIS_DB", 0))
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getEnvDuration("REQUEST_TIMEOUT", time.Second))
}
