// Package metrics holds the Prometheus collectors for the ledger and HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts transaction status transitions by target status and result.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transitions_total",
		Help: "Transaction status transitions by target status and result",
	}, []string{"status", "result"})

	// RecomputesTotal counts aggregate recomputations by policy and result.
	RecomputesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_aggregate_recomputes_total",
		Help: "Investor aggregate recomputations by policy and result",
	}, []string{"policy", "result"})

	// DistributionsTotal counts proportional distributions by kind and result.
	DistributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_distributions_total",
		Help: "Proportional distributions by kind and result",
	}, []string{"kind", "result"})

	// DistributionRemainder tracks the absolute rounding drift left by each distribution.
	DistributionRemainder = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_distribution_remainder",
		Help:    "Absolute rounding remainder per distribution",
		Buckets: []float64{0, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// EventPublishFailures counts ledger events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_event_publish_failures_total",
		Help: "Ledger events that failed to publish, by event type",
	}, []string{"type"})

	// HTTPRequestsTotal counts HTTP requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Result labels a counter outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
