// Package telemetry instruments solver runs.
//
// Every solve opens a Run: a run ID (UUID), a tagged slog.Logger, an
// OpenTelemetry span named "tvgl.<solver>.solve" and a start time. Finish
// records the terminal status on the span and updates the Prometheus
// collectors registered under the "tvgl" namespace:
//
//	tvgl_solver_runs_total{solver,status}
//	tvgl_solver_iterations{solver}
//	tvgl_solver_duration_seconds{solver}
//	tvgl_solver_linesearch_rounds_total{solver,controller}
//	tvgl_solver_nan_checks_total{solver}
//	tvgl_solver_rho{solver}
//
// The collectors live in the default registry; exposing them is left to the
// embedding program.
package telemetry
