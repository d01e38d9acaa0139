// Package nlu resolves user utterances to an intent and entity list through
// a Rasa-compatible /model/parse endpoint.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/appointment-agent/internal/dialogue"
	"github.com/wolfman30/appointment-agent/internal/observability/metrics"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

const (
	parsePath    = "/model/parse"
	maxBodyBytes = 1 << 20
)

// ErrMalformedResponse is returned when the resolver reply cannot be used.
var ErrMalformedResponse = errors.New("nlu: malformed resolver response")

// Result is the resolver output for one utterance.
type Result struct {
	Intent     string
	Confidence float64
	Entities   []dialogue.Entity
}

// Client calls the NLU service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
	metrics    *metrics.DialogueMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTracer overrides the otel tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics counts resolver outcomes.
func WithMetrics(m *metrics.DialogueMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a resolver client for the NLU server at baseURL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + parsePath,
		httpClient: &http.Client{},
		logger:     logger.Component("nlu"),
		tracer:     otel.Tracer("appointment-agent.internal.nlu"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Intent *struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"intent"`
	Entities []struct {
		Entity string          `json:"entity"`
		Value  json.RawMessage `json:"value"`
	} `json:"entities"`
}

// Resolve sends text to the resolver and returns its top intent with every
// extracted entity, in the order the resolver reported them.
func (c *Client) Resolve(ctx context.Context, text string) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "nlu.resolve")
	defer span.End()

	result, err := c.resolve(ctx, text)
	c.metrics.ObserveNLU(outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("intent resolution failed", "error", err)
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("nlu.intent", result.Intent),
		attribute.Int("nlu.entities", len(result.Entities)),
	)
	return result, nil
}

func (c *Client) resolve(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("nlu: text is required")
	}

	payload, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("nlu: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("nlu: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nlu: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("nlu: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("nlu: resolver returned status %d", resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Intent == nil || parsed.Intent.Name == "" {
		return Result{}, fmt.Errorf("%w: missing intent name", ErrMalformedResponse)
	}

	result := Result{
		Intent:     parsed.Intent.Name,
		Confidence: parsed.Intent.Confidence,
		Entities:   make([]dialogue.Entity, 0, len(parsed.Entities)),
	}
	for _, e := range parsed.Entities {
		if e.Entity == "" {
			continue
		}
		result.Entities = append(result.Entities, dialogue.Entity{
			Type:  dialogue.EntityType(e.Entity),
			Value: entityValue(e.Value),
		})
	}
	c.logger.Debug("utterance resolved",
		"intent", result.Intent,
		"confidence", result.Confidence,
		"entities", len(result.Entities),
	)
	return result, nil
}

// entityValue renders a JSON string as its contents and any other scalar as
// its literal text, so {"value": 12} and {"value": "12"} both read "12".
func entityValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
