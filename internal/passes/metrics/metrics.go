// Package metrics provides Prometheus metrics for pass issuance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pass issuance collectors.
type Metrics struct {
	LookupsTotal *prometheus.CounterVec // by outcome: found, not_found, degraded
	CreatesTotal *prometheus.CounterVec // by result: created, failed, malformed, canceled

	ProviderCallDurationSeconds *prometheus.HistogramVec // by operation: lookup, create

	IssuanceCollapsedTotal prometheus.Counter // concurrent duplicate requests served by one provider call
}

// New registers all pass issuance metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passgate_pass_lookups_total",
			Help: "Total number of provider pass lookups by outcome",
		}, []string{"outcome"}),

		CreatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passgate_pass_creates_total",
			Help: "Total number of provider pass create attempts by result",
		}, []string{"result"}),

		ProviderCallDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "passgate_provider_call_duration_seconds",
			Help:    "Duration of calls to the pass provider by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),

		IssuanceCollapsedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "passgate_pass_issuance_collapsed_total",
			Help: "Total number of issuance requests that shared an in-flight provider call",
		}),
	}
}

// RecordLookup counts a lookup leg by outcome: found, not_found or degraded.
func (m *Metrics) RecordLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordCreate counts a create leg by result.
func (m *Metrics) RecordCreate(result string) {
	m.CreatesTotal.WithLabelValues(result).Inc()
}

// ObserveProviderCall records the latency of one provider request.
func (m *Metrics) ObserveProviderCall(operation string, durationSeconds float64) {
	m.ProviderCallDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

// IncrementCollapsed counts a request that shared an in-flight provider call.
func (m *Metrics) IncrementCollapsed() {
	m.IssuanceCollapsedTotal.Inc()
}
