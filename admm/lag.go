// SPDX-License-Identifier: MIT

package admm

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/kernel"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
)

// lagState is the consensus record of one active lag m:
// zL ≈ X[:-m], zR ≈ X[m:] with scaled duals uL, uR.
type lagState struct {
	m       int
	weights []float64 // k(i, i+m)

	zL, zR       *matrix.Stack
	uL, uR       *matrix.Stack
	zLOld, zROld *matrix.Stack
}

// lagSet is the arena of active lags, ordered by m.
type lagSet []lagState

// newLagSet allocates a record for every lag m in [1, T) with at least one
// positive weight on the m-th super-diagonal of k, up to maxLag when
// maxLag > 0. Copies start from init, duals from zero.
func newLagSet(k *mat.Dense, maxLag int, init *matrix.Stack) lagSet {
	t := init.Len()
	var ls lagSet
	for m := 1; m < t; m++ {
		if maxLag > 0 && m > maxLag {
			break
		}
		w := kernel.Diagonal(k, m)
		if floats.Max(w) <= 0 {
			continue
		}
		zL, zR := init.Head(m).Clone(), init.Tail(m).Clone()
		ls = append(ls, lagState{
			m:       m,
			weights: w,
			zL:      zL,
			zR:      zR,
			uL:      zL.ZerosLike(),
			uR:      zR.ZerosLike(),
			zLOld:   zL.Clone(),
			zROld:   zR.Clone(),
		})
	}

	return ls
}

// copies returns, per slice, how many lag copies constrain it.
func (ls lagSet) copies(t int) []float64 {
	c := make([]float64, t)
	for _, l := range ls {
		for i := 0; i < t-l.m; i++ {
			c[i]++
			c[i+l.m]++
		}
	}

	return c
}

// accumulate adds z - u of every copy onto the slice it constrains.
func (ls lagSet) accumulate(a *matrix.Stack) {
	for _, l := range ls {
		head, tail := a.Head(l.m), a.Tail(l.m)
		head.Add(l.zL)
		head.Sub(l.uL)
		tail.Add(l.zR)
		tail.Sub(l.uR)
	}
}

// update runs the consensus step of every lag against primal, in parallel
// over lags.
func (ls lagSet) update(
	ctx context.Context,
	primal *matrix.Stack,
	rho float64,
	pen prox.Penalty,
	node prox.NodeOptions,
	workers int,
) error {
	err := matrix.ParallelFor(ctx, len(ls), workers, func(i int) error {
		ls[i].update(primal, rho, pen, node)

		return nil
	})
	if err != nil {
		return fmt.Errorf("lag update: %w", err)
	}

	return nil
}

// update solves
//
//	min  Σ_i w_i·ψ(zR_i - zL_i) + ρ/2·(‖zL - aL‖² + ‖zR - aR‖²)
//
// with aL = X[:-m] + uL, aR = X[m:] + uR, through the prox of ψ at
// aR - aL with parameter 2w_i/ρ, then advances the duals.
func (l *lagState) update(primal *matrix.Stack, rho float64, pen prox.Penalty, node prox.NodeOptions) {
	l.zLOld.CopyFrom(l.zL)
	l.zROld.CopyFrom(l.zR)

	head, tail := primal.Head(l.m), primal.Tail(l.m)
	l.zL.AddScaledTo(head, 1, l.uL)
	l.zR.AddScaledTo(tail, 1, l.uR)

	p := primal.Dim()
	e := mat.NewDense(p, p, nil)
	for i, w := range l.weights {
		aL, aR := l.zL.At(i), l.zR.At(i)
		e.Sub(aR, aL)
		if w > 0 {
			proxPenalty(e, e, 2*w/rho, pen, node)
		}
		// zL = (aL + aR - e)/2, zR = zL + e
		aL.Add(aL, aR)
		aL.Sub(aL, e)
		aL.Scale(0.5, aL)
		aR.Add(aL, e)
	}

	l.uL.Add(head)
	l.uL.Sub(l.zL)
	l.uR.Add(tail)
	l.uR.Sub(l.zR)
}

func proxPenalty(dst, src *mat.Dense, lambda float64, pen prox.Penalty, node prox.NodeOptions) {
	if pen == prox.Node {
		prox.ProxNode(dst, src, lambda, node)
		return
	}
	pen.Prox(dst, src, lambda)
}

// residual returns Σ ‖X[:-m] - zL‖² + ‖X[m:] - zR‖².
func (ls lagSet) residual(primal *matrix.Stack) float64 {
	var s float64
	for _, l := range ls {
		s += matrix.SquaredDistance(primal.Head(l.m), l.zL) + matrix.SquaredDistance(primal.Tail(l.m), l.zR)
	}

	return s
}

// change returns the squared movement of the copies in the last update.
func (ls lagSet) change() float64 {
	var s float64
	for _, l := range ls {
		s += matrix.SquaredDistance(l.zL, l.zLOld) + matrix.SquaredDistance(l.zR, l.zROld)
	}

	return s
}

func (ls lagSet) copyNorm() float64 {
	var s float64
	for _, l := range ls {
		s += l.zL.SquaredNorm() + l.zR.SquaredNorm()
	}

	return s
}

func (ls lagSet) primalNorm(primal *matrix.Stack) float64 {
	var s float64
	for _, l := range ls {
		s += primal.Head(l.m).SquaredNorm() + primal.Tail(l.m).SquaredNorm()
	}

	return s
}

func (ls lagSet) dualNorm() float64 {
	var s float64
	for _, l := range ls {
		s += l.uL.SquaredNorm() + l.uR.SquaredNorm()
	}

	return s
}

// entries counts the scalar constraints held by the set.
func (ls lagSet) entries() int {
	var n int
	for _, l := range ls {
		n += l.zL.Size() + l.zR.Size()
	}

	return n
}

// value returns Σ_m Σ_i w_i·ψ(zR_i - zL_i).
func (ls lagSet) value(pen prox.Penalty) float64 {
	var (
		s float64
		e mat.Dense
	)
	for _, l := range ls {
		for i, w := range l.weights {
			if w == 0 {
				continue
			}
			e.Sub(l.zR.At(i), l.zL.At(i))
			s += w * pen.Value(&e)
		}
	}

	return s
}

func (ls lagSet) scaleDuals(f float64) {
	for _, l := range ls {
		l.uL.Scale(f)
		l.uR.Scale(f)
	}
}

// averageSlices divides slice t of a by d[t]; zero divisors leave the slice
// untouched.
func averageSlices(a *matrix.Stack, d []float64) {
	for t, v := range d {
		if v > 0 {
			floats.Scale(1/v, a.SliceData(t))
		}
	}
}

func plusOne(c []float64) []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = v + 1
	}

	return out
}
