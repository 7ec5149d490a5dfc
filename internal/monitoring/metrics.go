// Package monitoring exposes prometheus metrics for the advisory server.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the advisory flow collectors. It implements
// advisor.Observer so the orchestrator can report step outcomes without
// depending on prometheus.
type Metrics struct {
	StepsResolved   *prometheus.CounterVec
	ProviderLatency prometheus.Histogram
	SessionsActive  prometheus.Gauge
	SessionsStarted prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
}

// New registers and returns the advisory collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "steps_resolved_total",
			Help:      "Advisory steps resolved, by outcome (provider, fixed, fallback_*).",
		}, []string{"outcome"}),
		ProviderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "advisor",
			Name:      "provider_latency_seconds",
			Help:      "Latency of step provider calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "sessions_active",
			Help:      "Consultation sessions currently held in memory.",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "sessions_started_total",
			Help:      "Consultation sessions started.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status class.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.StepsResolved, m.ProviderLatency, m.SessionsActive, m.SessionsStarted, m.HTTPRequests)
	return m
}

// StepResolved records one step outcome. Provider latency is only observed
// for outcomes that actually made a provider call.
func (m *Metrics) StepResolved(outcome string, elapsed time.Duration) {
	m.StepsResolved.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.ProviderLatency.Observe(elapsed.Seconds())
	}
}
