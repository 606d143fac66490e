// Package metrics holds the Prometheus collectors for quiz sessions.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	CreditsAwarded    prometheus.Counter
	Timeouts          prometheus.Counter
	BankFallbacks     *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_sessions_started_total",
				Help: "Quiz sessions launched",
			},
			[]string{"domain"},
		),
		SessionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_sessions_completed_total",
				Help: "Quiz sessions completed, by outcome",
			},
			[]string{"domain", "passed"},
		),
		CreditsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_credits_awarded_total",
			Help: "Credits granted for passed sessions",
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_question_timeouts_total",
			Help: "Questions locked by the countdown running out",
		}),
		BankFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_bank_fallback_total",
				Help: "Sessions served cross-domain questions because the domain had none",
			},
			[]string{"domain"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Sessions currently hosted",
		}),
	}
	m.registry.MustRegister(
		m.SessionsStarted,
		m.SessionsCompleted,
		m.CreditsAwarded,
		m.Timeouts,
		m.BankFallbacks,
		m.ActiveSessions,
	)
	return m
}

// Completed counts a finished session.
func (m *Metrics) Completed(domain string, passed bool, credits int) {
	m.SessionsCompleted.WithLabelValues(domain, strconv.FormatBool(passed)).Inc()
	if passed {
		m.CreditsAwarded.Add(float64(credits))
	}
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
