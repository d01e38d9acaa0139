package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/appointment-agent/internal/chatbot"
	httpmiddleware "github.com/wolfman30/appointment-agent/internal/http/middleware"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatbotHandler     *chatbot.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on the chatbot route. Zero RateLimitRPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", cfg.ChatbotHandler.Health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(chat chi.Router) {
		if cfg.RateLimitRPS > 0 {
			chat.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		chat.Post("/chatbot", cfg.ChatbotHandler.Chat)
	})

	return r
}
