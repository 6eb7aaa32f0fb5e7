package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "tvgl"
	subsystem = "solver"
)

var (
	// runsTotal counts finished solves.
	// Labels: solver (fb, admm_kernel, admm_latent, admm_ising), status
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Total solver runs by terminal status",
	}, []string{"solver", "status"})

	// iterations observes the outer iterations spent per run.
	iterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "iterations",
		Help:      "Outer iterations per solver run",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"solver"})

	// duration observes wall time per run.
	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "duration_seconds",
		Help:      "Solver run duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
	}, []string{"solver"})

	// lineSearchRounds counts backtracking rounds.
	// Labels: solver, controller (gamma, lambda)
	lineSearchRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "linesearch_rounds_total",
		Help:      "Total backtracking rounds by controller",
	}, []string{"solver", "controller"})

	// nanChecks counts convergence checks with a NaN residual.
	nanChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "nan_checks_total",
		Help:      "Convergence checks with a NaN residual",
	}, []string{"solver"})

	// rho tracks the latest ADMM penalty parameter.
	rho = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rho",
		Help:      "Current ADMM penalty parameter",
	}, []string{"solver"})
)
