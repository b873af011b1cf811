// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

// Metrics groups every collector the server records into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	ExpensesRecorded    *prometheus.CounterVec
	SettlementsRecorded prometheus.Counter
	InvariantViolations prometheus.Counter
}

// New registers all collectors on a fresh registry, together with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ExpensesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Expenses recorded by split policy.",
		}, []string{"policy"}),
		SettlementsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded.",
		}),
		InvariantViolations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Balance computations whose result did not sum to zero.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ExpenseRecorded counts one expense recorded with policy.
func (m *Metrics) ExpenseRecorded(policy string) {
	if m == nil {
		return
	}
	m.ExpensesRecorded.WithLabelValues(policy).Inc()
}

// SettlementRecorded counts one settlement.
func (m *Metrics) SettlementRecorded() {
	if m == nil {
		return
	}
	m.SettlementsRecorded.Inc()
}

// InvariantViolated counts one zero-sum violation.
func (m *Metrics) InvariantViolated() {
	if m == nil {
		return
	}
	m.InvariantViolations.Inc()
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
