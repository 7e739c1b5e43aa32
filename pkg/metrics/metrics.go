// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ComputationCounter counts completed projections by outcome.
	ComputationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projection_computations_total",
			Help: "Total number of projection computations by result",
		},
		[]string{"result"},
	)

	// ComputationDuration records the time one full ledger build and
	// commit takes.
	ComputationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "projection_computation_duration_seconds",
			Help:    "Duration of projection computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AnalysisCounter counts investment analysis requests.
	AnalysisCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "investment_analyses_total",
			Help: "Total number of investment analysis requests",
		},
	)
)

func init() {
	prometheus.MustRegister(ComputationCounter)
	prometheus.MustRegister(ComputationDuration)
	prometheus.MustRegister(AnalysisCounter)
}

// ObserveComputation records one computation with its outcome and duration.
func ObserveComputation(result string, elapsed time.Duration) {
	ComputationCounter.WithLabelValues(result).Inc()
	ComputationDuration.Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
