package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/tvgl/convergence"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return rec, tp
}

func TestRun_FinishRecordsSpanAndMetrics(t *testing.T) {
	rec, tp := newRecorder(t)
	before := testutil.ToFloat64(runsTotal.WithLabelValues("test_ok", "converged"))

	_, run := Start(context.Background(), "test_ok", nil, tp)
	require.NotEmpty(t, run.ID())
	run.LineSearch("gamma", 3)
	run.Rho(2.5)
	run.Finish(convergence.Converged, 7, nil)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tvgl.test_ok.solve", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, run.ID(), attrs["tvgl.run_id"])
	assert.Equal(t, "converged", attrs["tvgl.status"])
	assert.Equal(t, "7", attrs["tvgl.iterations"])

	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues("test_ok", "converged")))
	assert.Equal(t, 3.0, testutil.ToFloat64(lineSearchRounds.WithLabelValues("test_ok", "gamma")))
	assert.Equal(t, 2.5, testutil.ToFloat64(rho.WithLabelValues("test_ok")))
}

func TestRun_FinishWithError(t *testing.T) {
	rec, tp := newRecorder(t)
	_, run := Start(context.Background(), "test_err", nil, tp)
	run.Finish(convergence.MaxIterReached, 1, errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("test_err", "error")))
}

func TestRun_CheckWarnsOnNaN(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, tp := newRecorder(t)
	_, run := Start(context.Background(), "test_nan", logger, tp)

	assert.False(t, run.Check(convergence.Check{Iteration: 0, RNorm: 1, SNorm: 1}))
	assert.True(t, run.Check(convergence.Check{Iteration: 1, RNorm: math.NaN(), SNorm: 1}))
	run.Finish(convergence.MaxIterReached, 2, nil)

	out := buf.String()
	assert.Contains(t, out, "NaN residual")
	assert.Contains(t, out, "run_id="+run.ID())
	assert.Contains(t, out, "check.rnorm=1")
	assert.Equal(t, 1.0, testutil.ToFloat64(nanChecks.WithLabelValues("test_nan")))
}
