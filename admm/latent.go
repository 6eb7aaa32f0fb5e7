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

// SolveLatent fits the latent-variable variant: the likelihood is evaluated
// at R = Z_0 - W_0, where Z_0 is sparse (alpha) and W_0 is positive
// semidefinite and low rank (tau·trace). Z_0 is coupled in time by Kernel
// and Psi, W_0 by KernelLatent and Phi.
//
// Per iteration R, Z_0, W_0 and the dual X_0 of R - Z_0 + W_0 = 0 are
// updated in that order, followed by both lag sets. Result.Precision is
// Z_0 and Result.Latent is W_0.
func SolveLatent(ctx context.Context, s *matrix.Stack, nSamples []float64, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	if err := validateOptions(o, s.Len()); err != nil {
		return Result{}, fmt.Errorf("admm.SolveLatent: %w", err)
	}
	g, err := loss.NewGaussian(s, nSamples, 0)
	if err != nil {
		return Result{}, fmt.Errorf("admm.SolveLatent: %w", err)
	}

	ctx, run := telemetry.Start(ctx, "admm_latent", o.Logger, o.TracerProvider,
		attribute.Int("tvgl.time_points", s.Len()),
		attribute.Int("tvgl.features", s.Dim()),
		attribute.String("tvgl.psi", o.Psi.String()),
		attribute.String("tvgl.phi", o.Phi.String()),
	)
	res, err := solveLatent(ctx, run, g, o)
	res.RunID = run.ID()
	run.Finish(res.Status, res.NIter, err)

	return res, err
}

func solveLatent(ctx context.Context, run *telemetry.Run, g loss.Gaussian, o Options) (Result, error) {
	z0, err := loss.InitPrecision(g.S)
	if err != nil {
		return Result{}, fmt.Errorf("admm.SolveLatent: %w", err)
	}
	times := z0.Len()

	var (
		r     = z0.Clone()
		z0Old = z0.Clone()
		w0    = z0.ZerosLike()
		w0Old = z0.ZerosLike()
		x0    = z0.ZerosLike()
		a     = z0.ZerosLike()
		zLags = newLagSet(kernelOrIdentity(o.Kernel, times), o.MaxLag, z0)
		wLags = newLagSet(kernelOrIdentity(o.KernelLatent, times), o.MaxLag, w0)
		dZ    = plusOne(zLags.copies(times))
		dW    = plusOne(wLags.copies(times))
		rho   = o.Rho
		res   = Result{Status: convergence.MaxIterReached}
		sess  = session{run: run, o: o, res: &res}
		n     = r.Size() + zLags.entries() + wLags.entries()
	)
	run.Logger().Debug("active lags", slog.Int("psi", len(zLags)), slog.Int("phi", len(wLags)))

	sess.offer(z0)

	finish := func(err error) (Result, error) {
		res.Precision, res.Latent, res.Rho = z0, w0, rho
		if err != nil {
			return res, err
		}
		res.Precision = sess.settle(z0)
		if res.Covariance, err = loss.Inverse(res.Precision); err != nil {
			return res, fmt.Errorf("admm.SolveLatent: %w", err)
		}

		return res, nil
	}

	for it := 0; it < o.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		res.NIter = it + 1

		// R ← prox of the likelihood at Z_0 - W_0 - X_0
		a.SubTo(z0, w0)
		a.Sub(x0)
		a.Symmetrize()
		err := matrix.ParallelFor(ctx, times, o.Workers, func(t int) error {
			lam := g.NSamples[t] / rho
			floats.AddScaled(a.SliceData(t), -lam, g.S.SliceData(t))
			if err := prox.LogDet(r.At(t), a.At(t), lam); err != nil {
				return fmt.Errorf("slice %d: %w", t, err)
			}

			return nil
		})
		if err != nil {
			return finish(fmt.Errorf("admm.SolveLatent: %w", err))
		}

		// Z_0 ← soft threshold of the average of R + W_0 + X_0 and its copies
		z0Old.CopyFrom(z0)
		a.AddScaledTo(r, 1, w0)
		a.Add(x0)
		zLags.accumulate(a)
		averageSlices(a, dZ)
		a.Symmetrize()
		for t := 0; t < times; t++ {
			prox.SoftThresholdOffDiagonalDense(z0.At(t), a.At(t), o.Alpha/(rho*dZ[t]))
		}

		// W_0 ← trace shrink of the average of Z_0 - R - X_0 and its copies
		w0Old.CopyFrom(w0)
		a.SubTo(z0, r)
		a.Sub(x0)
		wLags.accumulate(a)
		averageSlices(a, dW)
		a.Symmetrize()
		err = matrix.ParallelFor(ctx, times, o.Workers, func(t int) error {
			if err := prox.NuclearNorm(w0.At(t), a.At(t), o.Tau/(rho*dW[t])); err != nil {
				return fmt.Errorf("slice %d: %w", t, err)
			}

			return nil
		})
		if err != nil {
			return finish(fmt.Errorf("admm.SolveLatent: %w", err))
		}

		x0.Add(r)
		x0.Sub(z0)
		x0.Add(w0)

		if err := zLags.update(ctx, z0, rho, o.Psi, o.Node, o.Workers); err != nil {
			return finish(fmt.Errorf("admm.SolveLatent: %w", err))
		}
		if err := wLags.update(ctx, w0, rho, o.Phi, o.Node, o.Workers); err != nil {
			return finish(fmt.Errorf("admm.SolveLatent: %w", err))
		}

		a.SubTo(r, z0)
		a.Add(w0)
		consensus := a.SquaredNorm()
		a.SubTo(z0, w0)
		lowRank := a.SquaredNorm()

		check := convergence.Check{
			Iteration: it,
			Obj: sess.objective(func() float64 {
				obj := g.Loss(r) + o.Alpha*prox.L1OffDiagonalStack(z0)
				for t := 0; t < times; t++ {
					obj += o.Tau * prox.NuclearValue(w0.At(t))
				}

				return obj + zLags.value(o.Psi) + wLags.value(o.Phi)
			}),
			RNorm: math.Sqrt(consensus + zLags.residual(z0) + wLags.residual(w0)),
			SNorm: rho * math.Sqrt(
				matrix.SquaredDistance(z0, z0Old)+matrix.SquaredDistance(w0, w0Old)+
					zLags.change()+wLags.change()),
			EPri: convergence.Tolerance(n, o.Tol, o.RTol, math.Sqrt(math.Max(
				r.SquaredNorm()+zLags.copyNorm()+wLags.copyNorm(),
				lowRank+zLags.primalNorm(z0)+wLags.primalNorm(w0),
			))),
			EDual: convergence.Tolerance(n, o.Tol, o.RTol,
				rho*math.Sqrt(x0.SquaredNorm()+zLags.dualNorm()+wLags.dualNorm())),
			Rho: rho,
		}
		sess.offer(z0)
		if sess.record(check) {
			return finish(nil)
		}
		rho = sess.nextRho(rho, check, func(f float64) {
			x0.Scale(f)
			zLags.scaleDuals(f)
			wLags.scaleDuals(f)
		})
	}
	sess.exhausted()

	return finish(nil)
}
