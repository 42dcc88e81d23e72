// Package metrics exposes prometheus instrumentation for the
// settlement engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SettlementMetrics struct {
	SplitOutcomes  *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
}

func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "settlement",
		Name:      "split_outcomes_total",
		Help:      "Settlement outcomes per payment method.",
	}, []string{"method", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "settlement",
		Name:      "gateway_latency_ms",
		Help:      "Gateway collaborator latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"collaborator"})

	reg.MustRegister(outcomes, latency)
	return &SettlementMetrics{SplitOutcomes: outcomes, GatewayLatency: latency}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
