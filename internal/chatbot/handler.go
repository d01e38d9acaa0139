package chatbot

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/appointment-agent/internal/dialogue"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

const (
	msgProcessed      = "ChatBot processing completed"
	maxRequestBytes   = 1 << 20
	msgInvalidBody    = "Invalid request body"
	msgMissingInput   = "user_input is required"
	msgResolverFailed = "Unable to understand the request right now"
)

// TurnEnvelope is the body returned by POST /chatbot.
type TurnEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    *dialogue.TurnResponse `json:"data,omitempty"`
}

// Handler exposes the chatbot over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a chatbot handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger.Component("chatbot_http")}
}

// Chat handles POST /chatbot.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode chatbot request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, TurnEnvelope{Message: msgInvalidBody})
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		h.writeJSON(w, http.StatusBadRequest, TurnEnvelope{Message: msgMissingInput})
		return
	}

	resp, err := h.service.HandleTurn(r.Context(), req)
	if err != nil {
		h.logger.Error("chatbot turn failed", "error", err)
		h.writeJSON(w, http.StatusBadGateway, TurnEnvelope{Message: msgResolverFailed})
		return
	}

	h.writeJSON(w, http.StatusOK, TurnEnvelope{Success: true, Message: msgProcessed, Data: resp})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
