package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the appointment dialogue.
type DialogueMetrics struct {
	turnsTotal      *prometheus.CounterVec
	nluTotal        *prometheus.CounterVec
	backendTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Dialogue turns by resolved intent, resulting stage and status",
		}, []string{"intent", "stage", "status"}),
		nluTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "nlu",
			Name:      "requests_total",
			Help:      "Intent resolver calls by outcome",
		}, []string{"outcome"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "scheduling",
			Name:      "backend_requests_total",
			Help:      "Scheduling backend calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appointment_agent",
			Subsystem: "scheduling",
			Name:      "backend_latency_seconds",
			Help:      "Latency of scheduling backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.nluTotal, m.backendTotal, m.backendDuration)
	return m
}

func (m *DialogueMetrics) ObserveTurn(intent, stage, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, stage, status).Inc()
}

func (m *DialogueMetrics) ObserveNLU(outcome string) {
	if m == nil {
		return
	}
	m.nluTotal.WithLabelValues(outcome).Inc()
}

func (m *DialogueMetrics) ObserveBackend(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(operation, outcome).Inc()
	m.backendDuration.WithLabelValues(operation).Observe(seconds)
}
