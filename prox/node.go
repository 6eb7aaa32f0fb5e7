// SPDX-License-Identifier: MIT

package prox

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Defaults for the Node proximal solver.
const (
	// DefaultNodeTol is the relative change in V below which the inner loop stops.
	DefaultNodeTol = 1e-8
	// DefaultNodeMaxIter bounds the inner loop.
	DefaultNodeMaxIter = 500
)

// NodeOptions configures ProxNode.
type NodeOptions struct {
	Tol     float64
	MaxIter int
}

// DefaultNodeOptions returns the documented defaults.
func DefaultNodeOptions() NodeOptions {
	return NodeOptions{Tol: DefaultNodeTol, MaxIter: DefaultNodeMaxIter}
}

// ProxNode writes the proximal point of lambda·ψ_node at e into dst, where
//
//	ψ_node(X) = min { Σ_j ‖V_:j‖₂ : V + Vᵀ = X }.
//
// Implementation:
//
//	FISTA on V for  lambda·Σ_j ‖V_:j‖₂ + ½‖V + Vᵀ - E‖².
//	The smooth part has gradient R + Rᵀ with R = V + Vᵀ - E, Lipschitz
//	constant 4, so the step is 1/4 and the prox is a column shrink at λ/4.
//	The loop starts from V = E/2 and returns V + Vᵀ.
//
// dst may alias e.
func ProxNode(dst *mat.Dense, e *mat.Dense, lambda float64, opts NodeOptions) {
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultNodeMaxIter
	}
	if opts.Tol <= 0 {
		opts.Tol = DefaultNodeTol
	}
	n, _ := e.Dims()

	var target mat.Dense
	target.CloneFrom(e)

	v := mat.NewDense(n, n, nil)
	v.Scale(0.5, &target)
	var (
		vPrev, y, r, step, diff mat.Dense
	)
	vPrev.CloneFrom(v)
	y.CloneFrom(v)

	tk := 1.0
	for it := 0; it < opts.MaxIter; it++ {
		// r = y + yᵀ - E; gradient = r + rᵀ
		r.Add(&y, y.T())
		r.Sub(&r, &target)
		step.Add(&r, r.T())
		step.Scale(-0.25, &step)
		step.Add(&y, &step)

		vPrev.Copy(v)
		groupShrinkColumns(v, &step, lambda/4)

		tNext := (1 + math.Sqrt(1+4*tk*tk)) / 2
		diff.Sub(v, &vPrev)
		y.Scale((tk-1)/tNext, &diff)
		y.Add(&y, v)
		tk = tNext

		if mat.Norm(&diff, 2) <= opts.Tol*math.Max(1, mat.Norm(v, 2)) {
			break
		}
	}

	dst.Add(v, v.T())
}
