// SPDX-License-Identifier: MIT

package fb

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/linesearch"
	"github.com/katalvlaran/tvgl/loss"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
	"github.com/katalvlaran/tvgl/telemetry"
)

// stopFloor keeps the stopping-rule normalizer away from zero.
const stopFloor = 1e-6

// problem adapts the Gaussian loss and the fused penalty to
// linesearch.Problem.
type problem struct {
	ctx     context.Context
	loss    loss.Gaussian
	alpha   float64
	beta    float64
	p       float64
	workers int
}

func (pr problem) Loss(x *matrix.Stack) float64 { return pr.loss.Loss(x) }

func (pr problem) Gradient(dst, x *matrix.Stack) error {
	eig, err := matrix.DecomposeStack(pr.ctx, x, pr.workers)
	if err != nil {
		return err
	}
	pr.loss.Gradient(dst, x, eig)

	return nil
}

func (pr problem) Penalty(x *matrix.Stack) float64 {
	return prox.FusedValue(x, pr.alpha, pr.beta, pr.p)
}

func (pr problem) Prox(dst, x *matrix.Stack, gamma float64) error {
	return prox.FusedLasso(dst, x, pr.beta*gamma, pr.alpha*gamma, pr.p, true)
}

func (pr problem) objective(x *matrix.Stack) float64 {
	return pr.Loss(x) + pr.Penalty(x)
}

// Solve runs the forward-backward solver on the empirical covariances s.
// nSamples weights each slice (nil means all ones).
//
// Configuration errors are returned before iterating. A cancelled ctx stops
// the loop at the next iteration boundary and returns ctx.Err() together with
// the current iterate.
func Solve(ctx context.Context, s *matrix.Stack, nSamples []float64, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateOptions(o); err != nil {
		return Result{}, fmt.Errorf("fb.Solve: %w", err)
	}
	g, err := loss.NewGaussian(s, nSamples, o.Vareps)
	if err != nil {
		return Result{}, fmt.Errorf("fb.Solve: %w", err)
	}

	ctx, run := telemetry.Start(ctx, "fb", o.Logger, o.TracerProvider,
		attribute.Int("tvgl.time_points", s.Len()),
		attribute.Int("tvgl.features", s.Dim()),
		attribute.String("tvgl.choose", o.Choose.String()),
	)
	res, err := solve(ctx, run, problem{
		ctx:     ctx,
		loss:    g,
		alpha:   o.Alpha,
		beta:    o.Beta,
		p:       o.TimeNorm,
		workers: o.Workers,
	}, o)
	res.RunID = run.ID()
	run.Finish(res.Status, res.NIter, err)

	return res, err
}

func solve(ctx context.Context, run *telemetry.Run, pr problem, o Options) (Result, error) {
	log := run.Logger()
	k, err := loss.InitPrecision(pr.loss.S)
	if err != nil {
		return Result{}, fmt.Errorf("fb.Solve: %w", err)
	}

	var (
		kPrev   = k.ZerosLike()
		grad    = k.ZerosLike()
		xHat    = k.ZerosLike()
		y       = k.ZerosLike()
		subgrad = k.ZerosLike()
		res     = Result{Status: convergence.MaxIterReached}
		st      = iterState{gamma: o.Gamma, lambda: o.Lambda, maxResidual: math.Inf(-1)}
		objPrev = pr.objective(k)
		// sqrt(T·p²)·tol, the absolute part of e_pri
		ePriAbs = math.Sqrt(float64(k.Size())) * o.Tol
	)

	finish := func(err error) (Result, error) {
		res.Precision = k
		res.Gamma, res.Lambda = st.gamma, st.lambda
		res.NLineSearch = st.nLineSearch
		if err != nil {
			return res, err
		}
		cov, cerr := loss.Inverse(k)
		if cerr != nil {
			return res, fmt.Errorf("fb.Solve: %w", cerr)
		}
		res.Covariance = cov

		return res, nil
	}

	for it := 0; it < o.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		res.NIter = it + 1

		if t := k.FirstNotPositiveDefinite(); t >= 0 {
			log.Warn("precision is not positive definite", slog.Int("iteration", it), slog.Int("slice", t))
			res.Status = convergence.Diverged
			if it > 0 {
				k.CopyFrom(kPrev)
			}
			return finish(nil)
		}
		kPrev.CopyFrom(k)

		eig, err := matrix.DecomposeStack(ctx, k, o.Workers)
		if err != nil {
			return finish(fmt.Errorf("fb.Solve: %w", err))
		}
		pr.loss.Gradient(grad, k, eig)

		if o.Choose.gamma() {
			start := st.gamma
			if it > 0 {
				start /= o.LineSearch.Eps
			}
			if st.gamma, err = linesearch.ChooseGamma(pr, k, grad, start, st.lambda, o.LineSearch); err != nil {
				return finish(fmt.Errorf("fb.Solve: %w", err))
			}
		}

		xHat.AddScaledTo(k, -st.gamma, grad)
		if err := pr.Prox(y, xHat, st.gamma); err != nil {
			return finish(fmt.Errorf("fb.Solve: %w", err))
		}

		if o.Choose.lambda() {
			start := st.lambda
			if it > 0 {
				start = math.Min(start/o.LineSearch.Eps, 1)
			}
			lambda, rounds, err := linesearch.ChooseLambda(
				pr, k, grad, y, st.gamma, start, matrix.MinEigenvalue(eig), o.Criterion, o.LineSearch)
			if err != nil {
				return finish(fmt.Errorf("fb.Solve: %w", err))
			}
			st.lambda = lambda
			st.nLineSearch += rounds
			run.LineSearch("lambda", rounds)
		}

		// K ← K + max(λ,0)·(y - K)
		y.Sub(k)
		k.AddScaled(math.Max(st.lambda, 0), y)

		obj := pr.objective(k)
		check := convergence.Check{
			Iteration: it,
			Obj:       obj,
			RNorm:     matrix.UpperDistance(k, kPrev),
			SNorm:     math.Abs(obj - objPrev),
			EPri:      ePriAbs + o.Tol*math.Max(k.UpperNorm(), kPrev.UpperNorm()),
			EDual:     o.Tol,
		}
		objPrev = obj
		if run.Check(check) {
			res.NaNChecks++
		}
		if o.ReturnHistory {
			res.History = append(res.History, check)
		}

		subgrad.SubTo(xHat, k)
		subgrad.Scale(1 / st.gamma)
		r := matrix.Distance(k, kPrev) / st.gamma
		st.maxResidual = math.Max(st.maxResidual, r)
		normalizer := math.Max(grad.Norm(), subgrad.Norm()) + stopFloor

		if !o.Debug && it > 0 && (r/st.maxResidual <= o.Tol || r/normalizer <= o.Tol) {
			res.Status = convergence.Converged
			return finish(nil)
		}
	}

	log.Warn("objective did not converge", slog.Int("max_iter", o.MaxIter))

	return finish(nil)
}
