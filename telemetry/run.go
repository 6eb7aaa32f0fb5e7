package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/tvgl/convergence"
)

// instrumentationName is the tracer name used for every span.
const instrumentationName = "github.com/katalvlaran/tvgl"

// Run holds the per-solve instrumentation state. It is not safe for
// concurrent use; solvers call it from the outer loop only.
type Run struct {
	solver string
	id     string
	start  time.Time
	span   trace.Span
	logger *slog.Logger
}

// Start opens a run for solver. A nil logger means slog.Default(); a nil tp
// means the global tracer provider. Extra attributes are set on the span.
func Start(
	ctx context.Context,
	solver string,
	logger *slog.Logger,
	tp trace.TracerProvider,
	attrs ...attribute.KeyValue,
) (context.Context, *Run) {
	if logger == nil {
		logger = slog.Default()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	id := uuid.NewString()

	attrs = append(attrs,
		attribute.String("tvgl.solver", solver),
		attribute.String("tvgl.run_id", id),
	)
	ctx, span := tp.Tracer(instrumentationName).Start(ctx, "tvgl."+solver+".solve",
		trace.WithAttributes(attrs...),
	)

	return ctx, &Run{
		solver: solver,
		id:     id,
		start:  time.Now(),
		span:   span,
		logger: logger.With(slog.String("solver", solver), slog.String("run_id", id)),
	}
}

// ID returns the run ID.
func (r *Run) ID() string { return r.id }

// Logger returns the logger tagged with solver and run_id.
func (r *Run) Logger() *slog.Logger { return r.logger }

// LineSearch adds rounds spent by controller ("gamma" or "lambda").
func (r *Run) LineSearch(controller string, rounds int) {
	if rounds > 0 {
		lineSearchRounds.WithLabelValues(r.solver, controller).Add(float64(rounds))
	}
}

// Rho publishes the current penalty parameter.
func (r *Run) Rho(v float64) {
	rho.WithLabelValues(r.solver).Set(v)
}

// Check logs one convergence record at Debug level and counts NaN residuals
// with a warning. It reports whether the check had a NaN residual.
func (r *Run) Check(c convergence.Check) bool {
	r.logger.Debug("iteration", slog.Any("check", c))
	if !c.HasNaN() {
		return false
	}
	nanChecks.WithLabelValues(r.solver).Inc()
	r.logger.Warn("NaN residual in convergence check", slog.Int("iteration", c.Iteration))

	return true
}

// Finish ends the span and records the run. err, when non-nil, marks the span
// as failed; the status label is then "error".
func (r *Run) Finish(status convergence.Status, iters int, err error) {
	label := status.String()
	if err != nil {
		label = "error"
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	} else {
		r.span.SetStatus(codes.Ok, "")
	}
	r.span.SetAttributes(
		attribute.String("tvgl.status", label),
		attribute.Int("tvgl.iterations", iters),
	)
	r.span.End()

	runsTotal.WithLabelValues(r.solver, label).Inc()
	iterations.WithLabelValues(r.solver).Observe(float64(iters))
	duration.WithLabelValues(r.solver).Observe(time.Since(r.start).Seconds())
}
