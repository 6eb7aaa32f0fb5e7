// SPDX-License-Identifier: MIT

package admm

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/loss"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/telemetry"
)

// FitIsing fits a time-varying Ising model to binary samples x (one
// n_t×p matrix per time point, entries in {0,1} or {-1,+1}) with the
// pseudo-likelihood loss and Options.Alpha as the off-diagonal ℓ1 weight.
func FitIsing(ctx context.Context, x []mat.Matrix, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	f, err := loss.NewIsingFitter(x, o.Alpha)
	if err != nil {
		return Result{}, fmt.Errorf("admm.FitIsing: %w", err)
	}

	return SolveIsing(ctx, f, WithOptions(o))
}

// SolveIsing runs the lag-consensus ADMM around an arbitrary per-slice
// fitter. There is no sparse copy: K_t is fitted directly against the
// average a_t of the c_t lag copies touching t with coupling w = ρ·c_t.
// Slices without copies are fitted alone.
//
// Options.Alpha is not used here; the fitter owns its ℓ1 weight.
func SolveIsing(ctx context.Context, f SliceFitter, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	if f == nil || f.Len() < 1 || f.Dim() < 1 {
		return Result{}, fmt.Errorf("admm.SolveIsing: %w", ErrFitterShape)
	}
	if err := validateOptions(o, f.Len()); err != nil {
		return Result{}, fmt.Errorf("admm.SolveIsing: %w", err)
	}

	ctx, run := telemetry.Start(ctx, "admm_ising", o.Logger, o.TracerProvider,
		attribute.Int("tvgl.time_points", f.Len()),
		attribute.Int("tvgl.features", f.Dim()),
		attribute.String("tvgl.psi", o.Psi.String()),
	)
	res, err := solveIsing(ctx, run, f, o)
	res.RunID = run.ID()
	run.Finish(res.Status, res.NIter, err)

	return res, err
}

func solveIsing(ctx context.Context, run *telemetry.Run, f SliceFitter, o Options) (Result, error) {
	times, p := f.Len(), f.Dim()
	k, err := matrix.NewStack(times, p)
	if err != nil {
		return Result{}, fmt.Errorf("admm.SolveIsing: %w", err)
	}

	var (
		a      = k.ZerosLike()
		lags   = newLagSet(kernelOrIdentity(o.Kernel, times), o.MaxLag, k)
		counts = lags.copies(times)
		rho    = o.Rho
		res    = Result{Status: convergence.MaxIterReached}
		sess   = session{run: run, o: o, res: &res}
		n      = k.Size() + lags.entries()
	)

	finish := func(err error) (Result, error) {
		res.Precision, res.Rho = k, rho
		if err != nil {
			return res, err
		}
		if res.Covariance, err = loss.Inverse(k); err != nil {
			return res, fmt.Errorf("admm.SolveIsing: %w", err)
		}

		return res, nil
	}

	for it := 0; it < o.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		res.NIter = it + 1

		a.Zero()
		lags.accumulate(a)
		averageSlices(a, counts)
		a.Symmetrize()
		err := matrix.ParallelFor(ctx, times, o.Workers, func(t int) error {
			kt, err := f.FitSlice(ctx, t, a.At(t), rho*counts[t], k.At(t))
			if err != nil {
				return fmt.Errorf("slice %d: %w", t, err)
			}
			k.At(t).Copy(kt)

			return nil
		})
		if err != nil {
			return finish(fmt.Errorf("admm.SolveIsing: %w", err))
		}

		if err := lags.update(ctx, k, rho, o.Psi, o.Node, o.Workers); err != nil {
			return finish(fmt.Errorf("admm.SolveIsing: %w", err))
		}

		check := convergence.Check{
			Iteration: it,
			Obj: sess.objective(func() float64 {
				var obj float64
				for t := 0; t < times; t++ {
					obj += f.Objective(t, k.At(t))
				}

				return obj + lags.value(o.Psi)
			}),
			RNorm: math.Sqrt(lags.residual(k)),
			SNorm: rho * math.Sqrt(lags.change()),
			EPri: convergence.Tolerance(n, o.Tol, o.RTol, math.Sqrt(math.Max(
				lags.copyNorm(),
				k.SquaredNorm()+lags.primalNorm(k),
			))),
			EDual: convergence.Tolerance(n, o.Tol, o.RTol, rho*math.Sqrt(lags.dualNorm())),
			Rho:   rho,
		}
		if sess.record(check) {
			return finish(nil)
		}
		rho = sess.nextRho(rho, check, lags.scaleDuals)
	}
	sess.exhausted()

	return finish(nil)
}
