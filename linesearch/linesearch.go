// SPDX-License-Identifier: MIT

package linesearch

import (
	"fmt"
	"math"

	"github.com/katalvlaran/tvgl/matrix"
)

// ChooseGamma backtracks on the forward step starting at gamma.
//
// Each round computes d = prox_γg(x - γ·grad) - x and accepts γ when
//
//	f(x + λd) - f(x) <= λ·(⟨d, grad⟩ + δ/γ·‖d‖²).
//
// On rejection γ ← γ·Eps. When every round rejects, the last γ tried is
// returned; it is always positive.
func ChooseGamma(p Problem, x, grad *matrix.Stack, gamma, lambda float64, cfg Config) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("ChooseGamma: %w", err)
	}

	fx := p.Loss(x)
	var (
		fwd = x.ZerosLike()
		d   = x.ZerosLike()
		x1  = x.ZerosLike()
	)
	for i := 0; i < cfg.MaxIter; i++ {
		fwd.AddScaledTo(x, -gamma, grad)
		if err := p.Prox(d, fwd, gamma); err != nil {
			return 0, fmt.Errorf("ChooseGamma: %w", err)
		}
		d.Sub(x)
		x1.AddScaledTo(x, lambda, d)

		bound := d.Dot(grad) + cfg.Delta/gamma*d.SquaredNorm()
		if p.Loss(x1)-fx <= lambda*bound {
			break
		}
		if i < cfg.MaxIter-1 {
			gamma *= cfg.Eps
		}
	}

	return gamma, nil
}

// ChooseLambda backtracks on the relaxation weight along d = y - x, where y
// is the forward-backward point for step gamma. minEigenX is the smallest
// eigenvalue of x over all slices (used by CriterionC only).
//
// It returns the accepted λ and the number of rounds spent. As in
// ChooseGamma, exhaustion returns the last λ tried.
func ChooseLambda(
	p Problem,
	x, grad, y *matrix.Stack,
	gamma, lambda, minEigenX float64,
	crit Criterion,
	cfg Config,
) (float64, int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, 0, fmt.Errorf("ChooseLambda: %w", err)
	}

	var accept func(x1 *matrix.Stack, lambda float64) (bool, error)
	d := y.Clone()
	d.Sub(x)
	fx := p.Loss(x)

	switch crit {
	case CriterionB:
		bound := d.Dot(grad) + cfg.Delta/gamma*d.SquaredNorm()
		accept = func(x1 *matrix.Stack, lambda float64) (bool, error) {
			return p.Loss(x1)-fx <= lambda*bound, nil
		}

	case CriterionA:
		gx1 := x.ZerosLike()
		accept = func(x1 *matrix.Stack, lambda float64) (bool, error) {
			if math.IsInf(p.Loss(x1), 1) {
				return false, nil
			}
			if err := p.Gradient(gx1, x1); err != nil {
				return false, err
			}
			step := lambda * d.Norm()

			return matrix.Distance(gx1, grad) <= cfg.Delta*step/(gamma*lambda), nil
		}

	case CriterionC:
		minEigenY, err := minEigenvalue(y)
		if err != nil {
			return 0, 0, fmt.Errorf("ChooseLambda: %w", err)
		}
		gx := p.Penalty(x)
		bound := (1 - cfg.Delta) * (p.Penalty(y) - gx + d.Dot(grad))
		objX := fx + gx
		accept = func(x1 *matrix.Stack, lambda float64) (bool, error) {
			inCone := lambda > 0
			if minEigenY < 0 {
				inCone = lambda < minEigenX/(minEigenX-minEigenY)
			}
			if !inCone {
				return false, nil
			}

			return p.Loss(x1)+p.Penalty(x1)-objX <= lambda*bound, nil
		}

	default:
		return 0, 0, fmt.Errorf("ChooseLambda(%v): %w", crit, ErrUnknownCriterion)
	}

	x1 := x.ZerosLike()
	for i := 0; i < cfg.MaxIter; i++ {
		x1.AddScaledTo(x, lambda, d)
		ok, err := accept(x1, lambda)
		if err != nil {
			return 0, i + 1, fmt.Errorf("ChooseLambda: %w", err)
		}
		if ok {
			return lambda, i + 1, nil
		}
		if i < cfg.MaxIter-1 {
			lambda *= cfg.Eps
		}
	}

	return lambda, cfg.MaxIter, nil
}

// minEigenvalue returns the smallest eigenvalue over all slices of s.
func minEigenvalue(s *matrix.Stack) (float64, error) {
	m := math.Inf(1)
	for t := 0; t < s.Len(); t++ {
		e, err := matrix.EigenSym(s.At(t))
		if err != nil {
			return 0, err
		}
		m = math.Min(m, e.Min())
	}

	return m, nil
}
