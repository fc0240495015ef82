package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hvx_runs_started_total",
		Help: "Analysis runs started",
	})

	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hvx_runs_completed_total",
		Help: "Analysis runs finished, by terminal state",
	}, []string{"state"})

	SpacesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hvx_spaces_analyzed_total",
		Help: "Spaces analyzed across all runs",
	})

	// Calculator metrics
	CalculatorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hvx_calculator_duration_seconds",
		Help:    "Per-calculator computation time",
		Buckets: prometheus.DefBuckets,
	}, []string{"calculator"})

	CalculatorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hvx_calculator_failures_total",
		Help: "Calculator failures recorded per space",
	}, []string{"calculator"})
)
