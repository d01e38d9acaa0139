// Package bootstrap builds the chatbot runtime from configuration so the
// HTTP server and the Lambda entry point share one wiring.
package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/appointment-agent/internal/api/router"
	"github.com/wolfman30/appointment-agent/internal/chatbot"
	appconfig "github.com/wolfman30/appointment-agent/internal/config"
	"github.com/wolfman30/appointment-agent/internal/dialogue"
	"github.com/wolfman30/appointment-agent/internal/nlu"
	"github.com/wolfman30/appointment-agent/internal/observability/metrics"
	"github.com/wolfman30/appointment-agent/internal/scheduling"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

// Runtime is a fully wired chatbot service.
type Runtime struct {
	Handler http.Handler
	Service *chatbot.Service

	redis *redis.Client
}

// Close releases the connections held by the runtime.
func (r *Runtime) Close() error {
	if r == nil || r.redis == nil {
		return nil
	}
	return r.redis.Close()
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || !cfg.SlotCacheEnabled() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     strings.TrimSpace(cfg.RedisAddr),
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; slot cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Build wires clients, the dialogue engine, the chatbot service and the
// router. A nil registry registers metrics with the prometheus default.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	m := metrics.NewDialogueMetrics(registerer)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	schedulingOpts := []scheduling.Option{
		scheduling.WithHTTPClient(httpClient),
		scheduling.WithMetrics(m),
		scheduling.WithBreaker(scheduling.BreakerConfig{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
		}),
	}
	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		schedulingOpts = append(schedulingOpts,
			scheduling.WithSlotCache(scheduling.NewRedisSlotCache(redisClient, cfg.SlotCacheTTL, logger)))
		logger.Info("slot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SlotCacheTTL.String())
	}
	backend := scheduling.NewClient(cfg.SchedulingBaseURL, logger, schedulingOpts...)

	resolver := nlu.NewClient(cfg.NLUBaseURL, logger,
		nlu.WithHTTPClient(httpClient),
		nlu.WithMetrics(m),
	)

	engine := dialogue.NewEngine(backend, cfg.ClinicName, logger)
	service := chatbot.NewService(resolver, engine, m, logger)

	handler := router.New(&router.Config{
		Logger:             logger,
		ChatbotHandler:     chatbot.NewHandler(service, logger),
		MetricsHandler:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	return &Runtime{Handler: handler, Service: service, redis: redisClient}, nil
}
