// Package chatbot runs one conversational turn end to end: intent
// resolution, the dialogue transition and the HTTP surface around them.
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/appointment-agent/internal/dialogue"
	"github.com/wolfman30/appointment-agent/internal/nlu"
	"github.com/wolfman30/appointment-agent/internal/observability/metrics"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

// WelcomeInput starts a conversation without consulting the resolver.
const WelcomeInput = "welcome"

// TurnRequest is one inbound user turn plus the context echoed from the
// previous response.
type TurnRequest struct {
	UserInput string            `json:"user_input"`
	Data      *dialogue.Context `json:"data"`
}

// Resolver turns an utterance into an intent and entities.
type Resolver interface {
	Resolve(ctx context.Context, text string) (nlu.Result, error)
}

// Transitioner advances the dialogue by one turn.
type Transitioner interface {
	Welcome() dialogue.TurnResponse
	Transition(ctx context.Context, intent dialogue.Intent, entities []dialogue.Entity, dctx dialogue.Context) dialogue.TurnResponse
}

// Service handles chatbot turns. All turn data lives on the call stack.
type Service struct {
	resolver Resolver
	engine   Transitioner
	metrics  *metrics.DialogueMetrics
	logger   *logging.Logger
}

// NewService wires the resolver and the dialogue engine together.
func NewService(resolver Resolver, engine Transitioner, m *metrics.DialogueMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		resolver: resolver,
		engine:   engine,
		metrics:  m,
		logger:   logger.Component("chatbot"),
	}
}

// HandleTurn resolves the utterance and runs the dialogue transition. Only
// resolver failures are returned as errors; backend trouble is already folded
// into the returned turn.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (*dialogue.TurnResponse, error) {
	input := strings.TrimSpace(req.UserInput)
	if input == WelcomeInput {
		resp := s.engine.Welcome()
		s.metrics.ObserveTurn(string(dialogue.IntentWelcome), string(resp.PrevIntent), string(resp.StatusMessage))
		return &resp, nil
	}

	result, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("chatbot: resolve intent: %w", err)
	}

	var dctx dialogue.Context
	if req.Data != nil {
		dctx = *req.Data
	}
	intent := dialogue.ParseIntent(result.Intent)
	if intent == dialogue.IntentUnknown && result.Intent != string(dialogue.IntentUnknown) {
		s.logger.Info("unrecognised intent label", "label", result.Intent)
	}

	resp := s.engine.Transition(ctx, intent, result.Entities, dctx)
	s.metrics.ObserveTurn(string(intent), string(resp.PrevIntent), string(resp.StatusMessage))
	return &resp, nil
}
