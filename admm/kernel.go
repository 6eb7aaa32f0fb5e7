// SPDX-License-Identifier: MIT

package admm

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/loss"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
	"github.com/katalvlaran/tvgl/telemetry"
)

// SolveKernel fits the kernel time-varying graphical lasso to the empirical
// covariances s. nSamples weights each slice (nil means all ones).
//
// Per iteration:
//
//	K_t  ← prox of n_t·(⟨S_t,·⟩ - log det) at the average of Z_0 - X_0 and
//	       the lag copies touching t (d_t terms, step n_t/(ρ·d_t))
//	Z_0  ← off-diagonal soft threshold of K + X_0 at alpha/ρ
//	X_0  ← X_0 + K - Z_0
//	lags ← consensus step on K, in parallel
//
// Result.Precision is Z_0. A cancelled ctx returns ctx.Err() with the
// current iterate.
func SolveKernel(ctx context.Context, s *matrix.Stack, nSamples []float64, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	if err := validateOptions(o, s.Len()); err != nil {
		return Result{}, fmt.Errorf("admm.SolveKernel: %w", err)
	}
	g, err := loss.NewGaussian(s, nSamples, 0)
	if err != nil {
		return Result{}, fmt.Errorf("admm.SolveKernel: %w", err)
	}

	ctx, run := telemetry.Start(ctx, "admm_kernel", o.Logger, o.TracerProvider,
		attribute.Int("tvgl.time_points", s.Len()),
		attribute.Int("tvgl.features", s.Dim()),
		attribute.String("tvgl.psi", o.Psi.String()),
	)
	res, err := solveKernel(ctx, run, g, o)
	res.RunID = run.ID()
	run.Finish(res.Status, res.NIter, err)

	return res, err
}

func solveKernel(ctx context.Context, run *telemetry.Run, g loss.Gaussian, o Options) (Result, error) {
	k, err := loss.InitPrecision(g.S)
	if err != nil {
		return Result{}, fmt.Errorf("admm.SolveKernel: %w", err)
	}
	times := k.Len()

	var (
		z0    = k.Clone()
		z0Old = k.Clone()
		x0    = k.ZerosLike()
		a     = k.ZerosLike()
		lags  = newLagSet(kernelOrIdentity(o.Kernel, times), o.MaxLag, k)
		d     = plusOne(lags.copies(times))
		rho   = o.Rho
		res   = Result{Status: convergence.MaxIterReached}
		sess  = session{run: run, o: o, res: &res}
		n     = k.Size() + lags.entries()
	)
	run.Logger().Debug("active lags", slog.Int("count", len(lags)))

	sess.offer(z0)

	finish := func(err error) (Result, error) {
		res.Precision, res.Rho = z0, rho
		if err != nil {
			return res, err
		}
		res.Precision = sess.settle(z0)
		if res.Covariance, err = loss.Inverse(res.Precision); err != nil {
			return res, fmt.Errorf("admm.SolveKernel: %w", err)
		}

		return res, nil
	}

	for it := 0; it < o.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		res.NIter = it + 1

		a.SubTo(z0, x0)
		lags.accumulate(a)
		averageSlices(a, d)
		a.Symmetrize()
		err := matrix.ParallelFor(ctx, times, o.Workers, func(t int) error {
			lam := g.NSamples[t] / (rho * d[t])
			floats.AddScaled(a.SliceData(t), -lam, g.S.SliceData(t))
			if err := prox.LogDet(k.At(t), a.At(t), lam); err != nil {
				return fmt.Errorf("slice %d: %w", t, err)
			}

			return nil
		})
		if err != nil {
			return finish(fmt.Errorf("admm.SolveKernel: %w", err))
		}

		z0Old.CopyFrom(z0)
		a.AddScaledTo(k, 1, x0)
		a.Symmetrize()
		prox.SoftThresholdOffDiagonal(z0, a, o.Alpha/rho)
		x0.Add(k)
		x0.Sub(z0)

		if err := lags.update(ctx, k, rho, o.Psi, o.Node, o.Workers); err != nil {
			return finish(fmt.Errorf("admm.SolveKernel: %w", err))
		}

		check := convergence.Check{
			Iteration: it,
			Obj: sess.objective(func() float64 {
				return g.Loss(k) + o.Alpha*prox.L1OffDiagonalStack(z0) + lags.value(o.Psi)
			}),
			RNorm: math.Sqrt(matrix.SquaredDistance(k, z0) + lags.residual(k)),
			SNorm: rho * math.Sqrt(matrix.SquaredDistance(z0, z0Old)+lags.change()),
			EPri: convergence.Tolerance(n, o.Tol, o.RTol, math.Sqrt(math.Max(
				z0.SquaredNorm()+lags.copyNorm(),
				k.SquaredNorm()+lags.primalNorm(k),
			))),
			EDual: convergence.Tolerance(n, o.Tol, o.RTol, rho*math.Sqrt(x0.SquaredNorm()+lags.dualNorm())),
			Rho:   rho,
		}
		sess.offer(z0)
		if sess.record(check) {
			return finish(nil)
		}
		rho = sess.nextRho(rho, check, func(f float64) {
			x0.Scale(f)
			lags.scaleDuals(f)
		})
	}
	sess.exhausted()

	return finish(nil)
}
