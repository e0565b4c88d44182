// Package metrics provides Prometheus metrics for trackwatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "trackwatch"
)

// Evaluation metrics
var (
	// EvaluationRunsTotal counts evaluation passes.
	EvaluationRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "runs_total",
			Help:      "Total number of evaluation passes",
		},
	)

	// EvaluationRunDuration tracks evaluation pass latency.
	EvaluationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "run_duration_seconds",
			Help:      "Evaluation pass latency in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// AlertsTriggeredTotal counts emitted alerts by kind.
	AlertsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "alerts_triggered_total",
			Help:      "Total alerts emitted, by kind",
		},
		[]string{"kind"},
	)

	// ItemErrorsTotal counts per-item evaluation failures by evaluator.
	ItemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "item_errors_total",
			Help:      "Total per-item evaluation failures, by evaluator",
		},
		[]string{"evaluator"},
	)

	// ItemsEvaluatedTotal counts evaluated links and rules by evaluator.
	ItemsEvaluatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "items_total",
			Help:      "Total links and rules evaluated, by evaluator",
		},
		[]string{"evaluator"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)
