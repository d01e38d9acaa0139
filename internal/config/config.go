package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Greeting
	ClinicName string

	// External collaborators
	NLUBaseURL        string
	SchedulingBaseURL string
	// HTTPClientTimeout of zero leaves the transport default in place.
	HTTPClientTimeout time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Scheduling backend circuit breaker
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	// Redis slot cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SlotCacheTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8001"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ClinicName: getEnv("CLINIC_NAME", "Dr. Archer"),

		NLUBaseURL:        strings.TrimRight(getEnv("NLU_BASE_URL", "http://localhost:5005"), "/"),
		SchedulingBaseURL: strings.TrimRight(getEnv("SCHEDULING_BASE_URL", "http://localhost:8000"), "/"),
		HTTPClientTimeout: getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 0),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		BreakerMaxFailures: uint32(getEnvAsInt("BREAKER_MAX_FAILURES", 5)),
		BreakerOpenTimeout: getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SlotCacheTTL:  getEnvAsDuration("SLOT_CACHE_TTL", 30*time.Second),
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"NLU_BASE_URL":        c.NLUBaseURL,
		"SCHEDULING_BASE_URL": c.SchedulingBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: invalid %s %q", name, raw)
		}
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("config: rate limit values must not be negative")
	}
	return nil
}

// SlotCacheEnabled reports whether availability lookups should be cached in redis.
func (c *Config) SlotCacheEnabled() bool {
	return c.RedisAddr != "" && c.SlotCacheTTL > 0
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
	if value, err := strconv.Atoi(valueStr); err == nil && value >= 0 {
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

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
