package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/appointment-agent/internal/config"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := Build(context.Background(), nil, nil, prometheus.NewRegistry()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildRejectsInvalidURLs(t *testing.T) {
	cfg := &appconfig.Config{NLUBaseURL: "not a url", SchedulingBaseURL: "http://localhost:8000"}
	if _, err := Build(context.Background(), cfg, logging.New("error"), prometheus.NewRegistry()); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client when REDIS_ADDR is empty")
	}
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{RedisAddr: addr, SlotCacheTTL: time.Minute}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when redis does not answer ping")
	}
}

func TestBuildServesConversation(t *testing.T) {
	nluSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"intent":{"name":"appointmentDateMonth","confidence":0.9},"entities":[{"entity":"date","value":"12"},{"entity":"month","value":"05"}]}`))
	}))
	defer nluSrv.Close()

	var slotQueries atomic.Int32
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slotQueries.Add(1)
		_, _ = w.Write([]byte(`{"statusMessage":"CONTINUE","results":[{"time":"10am","doctorSlotId":"S1"}]}`))
	}))
	defer backendSrv.Close()

	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{
		ClinicName:         "Dr. Archer",
		NLUBaseURL:         nluSrv.URL,
		SchedulingBaseURL:  backendSrv.URL,
		CORSAllowedOrigins: []string{"*"},
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Second,
		RedisAddr:          mr.Addr(),
		SlotCacheTTL:       time.Minute,
	}

	rt, err := Build(context.Background(), cfg, logging.New("error"), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	for i := 0; i < 2; i++ {
		body := `{"user_input":"the twelfth of may","data":{"prevIntent":"schedule"}}`
		rr := httptest.NewRecorder()
		rt.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chatbot", strings.NewReader(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp struct {
			Data struct {
				DateMonth string `json:"date_month"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Data.DateMonth != "12/05" {
			t.Fatalf("expected date_month 12/05, got %q", resp.Data.DateMonth)
		}
	}

	if got := slotQueries.Load(); got != 1 {
		t.Fatalf("expected second lookup to be served from the slot cache, backend saw %d queries", got)
	}
}
