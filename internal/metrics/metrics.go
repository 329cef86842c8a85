package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Turn kinds and outcomes used as label values.
const (
	KindText  = "text"
	KindImage = "image"
	KindAudio = "audio"

	OutcomeSuccess     = "success"
	OutcomeBackendErr  = "backend_error"
	OutcomeUnsupported = "unsupported"
)

// Metrics holds the assistant's Prometheus collectors on a private registry
type Metrics struct {
	Turns           *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	SessionsStarted *prometheus.CounterVec
	InitFailures    prometheus.Counter
	SurfaceAttached prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmdesk_turns_total",
				Help: "Total number of submitted conversation turns",
			},
			[]string{"kind", "outcome"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llmdesk_backend_request_duration_seconds",
				Help:    "Inference backend round trip duration",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		),
		SessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmdesk_sessions_started_total",
				Help: "Total number of sessions started",
			},
			[]string{"reason"},
		),
		InitFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmdesk_session_init_failures_total",
				Help: "Total number of failed session initializations",
			},
		),
		SurfaceAttached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llmdesk_ui_surface_attached",
				Help: "Whether a UI surface is attached (1) or not (0)",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.Turns,
		m.BackendDuration,
		m.SessionsStarted,
		m.InitFailures,
		m.SurfaceAttached,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordTurn records the outcome and backend duration of a turn submission
func (m *Metrics) RecordTurn(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		m.BackendDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordSessionStart counts a new session id being issued
func (m *Metrics) RecordSessionStart(reason string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(reason).Inc()
}

// RecordInitFailure counts a failed initialization
func (m *Metrics) RecordInitFailure() {
	if m == nil {
		return
	}
	m.InitFailures.Inc()
}

// SetSurfaceAttached tracks whether a UI surface is connected
func (m *Metrics) SetSurfaceAttached(attached bool) {
	if m == nil {
		return
	}
	if attached {
		m.SurfaceAttached.Set(1)
	} else {
		m.SurfaceAttached.Set(0)
	}
}

// Handler returns the exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
