package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports service operation counts and latencies and the
// adaptive matcher's effective tolerance. It implements MetricsRecorder and
// matcher.ToleranceObserver.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	tolerance  *prometheus.HistogramVec
	iterations *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the palettecore collectors on reg. A nil
// registerer selects prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "palettecore",
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "palettecore",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"operation"}),
		tolerance: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "palettecore",
			Name:      "match_effective_tolerance",
			Help:      "Tolerance an adaptive match settled on, per source.",
			Buckets:   []float64{1, 1.5, 2.25, 3, 15, 25, 35, 45, 50},
		}, []string{"source"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "palettecore",
			Name:      "match_iterations",
			Help:      "Lookups performed by an adaptive match, per source.",
			Buckets:   prometheus.LinearBuckets(1, 1, 6),
		}, []string{"source"}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.latency, r.tolerance, r.iterations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveTolerance implements matcher.ToleranceObserver.
func (r *PrometheusRecorder) ObserveTolerance(source string, tolerance float64, iterations, _ int) {
	r.tolerance.WithLabelValues(source).Observe(tolerance)
	r.iterations.WithLabelValues(source).Observe(float64(iterations))
}
