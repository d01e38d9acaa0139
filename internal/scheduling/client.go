// Package scheduling is the HTTP client for the clinic scheduling backend:
// slot availability lookups, cancellations by mobile number and bookings.
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/appointment-agent/internal/observability/metrics"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

const (
	opAvailableSlots    = "available_slots"
	opCancelByMobile    = "cancel_by_mobile"
	opCreateAppointment = "create_appointment"

	maxBodyBytes  = 1 << 20
	maxErrorBody  = 256
	availablePath = "/api/doctor-availability/available-time-slots"
	cancelPath    = "/appointments/removeByMobile/"
	createPath    = "/appointments/create"
)

// Client talks to the scheduling backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	cache      SlotCache
	metrics    *metrics.DialogueMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(cfg, c.logger)
	}
}

// WithSlotCache caches successful availability lookups.
func WithSlotCache(cache SlotCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithMetrics records call outcomes and latency.
func WithMetrics(m *metrics.DialogueMetrics) Option {
	return func(c *Client) {
		c.metrics = m
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

// NewClient creates a scheduling backend client rooted at baseURL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.Component("scheduling"),
		tracer:     otel.Tracer("appointment-agent.internal.scheduling"),
	}
	c.breaker = newBreaker(DefaultBreakerConfig(), c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AvailableSlots queries open slots for a DD/MM date.
func (c *Client) AvailableSlots(ctx context.Context, dateMonth string) (*Availability, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, dateMonth); ok {
			c.logger.Debug("slot cache hit", "date_month", dateMonth)
			return cached, nil
		}
	}

	endpoint := c.baseURL + availablePath + "?" + url.Values{"date": {dateMonth}}.Encode()
	body, err := c.do(ctx, opAvailableSlots, http.MethodGet, endpoint, is2xx)
	if err != nil {
		return nil, err
	}

	var availability Availability
	if err := json.Unmarshal(body, &availability); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, opAvailableSlots, err)
	}

	if c.cache != nil && availability.HasSlots() {
		c.cache.Set(ctx, dateMonth, &availability)
	}
	return &availability, nil
}

// CancelByMobile removes the appointments booked under a mobile number.
func (c *Client) CancelByMobile(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return errors.New("scheduling: mobile number is required")
	}
	endpoint := c.baseURL + cancelPath + url.PathEscape(mobile)
	_, err := c.do(ctx, opCancelByMobile, http.MethodDelete, endpoint, func(code int) bool {
		return code == http.StatusOK
	})
	return err
}

// CreateAppointment books a slot for a patient.
func (c *Client) CreateAppointment(ctx context.Context, appt Appointment) error {
	if appt.DoctorSlotID == "" || appt.PatientMobile == "" {
		return errors.New("scheduling: doctor slot id and mobile number are required")
	}
	q := url.Values{
		"doctorUuid":          {appt.DoctorSlotID},
		"time":                {appt.Time},
		"date":                {appt.Date},
		"patientName":         {appt.PatientName},
		"patientMobileNumber": {appt.PatientMobile},
	}
	_, err := c.do(ctx, opCreateAppointment, http.MethodPost, c.baseURL+createPath+"?"+q.Encode(), func(code int) bool {
		return code == http.StatusCreated
	})
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Invalidate(ctx, appt.Date)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, accept func(int) bool) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "scheduling."+op, trace.WithAttributes(
		attribute.String("http.method", method),
	))
	defer span.End()

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("scheduling: build %s request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("scheduling: %s request failed: %w", op, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("scheduling: read %s response: %w", op, err)
		}
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if !accept(resp.StatusCode) {
			return nil, &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: truncate(string(body))}
		}
		return body, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s", ErrCircuitOpen, op)
	}
	c.metrics.ObserveBackend(op, outcome(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("scheduling backend call failed", "operation", op, "error", err)
		return nil, err
	}

	body, _ := result.([]byte)
	return body, nil
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}

func outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &statusErr):
		return "status_" + fmt.Sprint(statusErr.StatusCode)
	default:
		return "error"
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
