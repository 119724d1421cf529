// Package middleware provides cross-cutting concerns for the attestation
// service.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks provider fetch outcomes, issuance activity, and
// operation latency across the pipeline.
type PrometheusMetrics struct {
	fetchOutcomes    *prometheus.CounterVec
	requestCounter   *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all required metrics in the default Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		fetchOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_fetch_outcomes_total",
				Help: "Provider fetch outcomes by provider and result.",
			},
			[]string{"provider", "outcome"},
		),
		requestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_operations_total",
				Help: "Operations performed by the scoring and issuance pipeline.",
			},
			[]string{"operation", "provider"},
		),
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_operation_duration_seconds",
				Help:    "Latency of provider fetches, contract reads, and signing.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "provider"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeline_system_state",
				Help: "Current system state values for the pipeline.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation, providerLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	provider := providerLabel(labels)
	if outcome, ok := labels["outcome"]; ok {
		pm.fetchOutcomes.WithLabelValues(provider, outcome).Add(value)
		return
	}
	pm.requestCounter.WithLabelValues(metric, provider).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

func providerLabel(labels map[string]string) string {
	provider, ok := labels["provider"]
	if !ok {
		return "unknown"
	}
	return provider
}
