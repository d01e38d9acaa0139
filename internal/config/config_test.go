package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "CLINIC_NAME",
		"NLU_BASE_URL", "SCHEDULING_BASE_URL", "HTTP_CLIENT_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"BREAKER_MAX_FAILURES", "BREAKER_OPEN_TIMEOUT",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_TLS", "SLOT_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "Dr. Archer", cfg.ClinicName)
	assert.Equal(t, "http://localhost:5005", cfg.NLUBaseURL)
	assert.Equal(t, "http://localhost:8000", cfg.SchedulingBaseURL)
	assert.Equal(t, time.Duration(0), cfg.HTTPClientTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)
	assert.False(t, cfg.SlotCacheEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("NLU_BASE_URL", "http://rasa:5005/")
	t.Setenv("SCHEDULING_BASE_URL", "http://backend:8000")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_MAX_FAILURES", "3")
	t.Setenv("BREAKER_OPEN_TIMEOUT", "1m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SLOT_CACHE_TTL", "10s")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://rasa:5005", cfg.NLUBaseURL)
	assert.Equal(t, "http://backend:8000", cfg.SchedulingBaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, uint32(3), cfg.BreakerMaxFailures)
	assert.Equal(t, time.Minute, cfg.BreakerOpenTimeout)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 10*time.Second, cfg.SlotCacheTTL)
	assert.True(t, cfg.SlotCacheEnabled())
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_BURST", "lots")
	t.Setenv("BREAKER_MAX_FAILURES", "-2")
	t.Setenv("SLOT_CACHE_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.SlotCacheTTL)
}

func TestValidateRejectsBadURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULING_BASE_URL", "not a url")
	cfg := Load()
	assert.Error(t, cfg.Validate())
}
