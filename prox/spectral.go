// SPDX-License-Identifier: MIT

package prox

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

// LogDet writes the proximal point of -lambda·log det(·) at the symmetric
// matrix a into dst:
//
//	Q·diag(ξ)·Qᵀ,  ξ_i = (e_i + sqrt(e_i² + 4λ)) / 2
//
// where a = Q·diag(e)·Qᵀ, so that K - λ·K⁻¹ = a. The result is always
// positive definite. dst may alias a.
func LogDet(dst *mat.Dense, a mat.Matrix, lambda float64) error {
	if !(lambda > 0) {
		return fmt.Errorf("LogDet(lambda=%v): %w", lambda, ErrNegativeThreshold)
	}
	e, err := matrix.EigenSym(a)
	if err != nil {
		return fmt.Errorf("LogDet: %w", err)
	}
	matrix.Reconstruct(dst, e, func(v float64) float64 {
		s := math.Sqrt(v*v + 4*lambda)
		if v >= 0 {
			return (v + s) / 2
		}
		// same root, without cancellation for large negative v
		return 2 * lambda / (s - v)
	})

	return nil
}

// NuclearNorm writes the proximal point of lambda·tr(W) + ι(W ⪰ 0) at a:
// eigenvalues become max(e - lambda, 0). Shrinking never increases the
// rank and the output is positive semidefinite.
func NuclearNorm(dst *mat.Dense, a mat.Matrix, lambda float64) error {
	if lambda < 0 || math.IsNaN(lambda) {
		return fmt.Errorf("NuclearNorm(lambda=%v): %w", lambda, ErrNegativeThreshold)
	}
	e, err := matrix.EigenSym(a)
	if err != nil {
		return fmt.Errorf("NuclearNorm: %w", err)
	}
	matrix.Reconstruct(dst, e, func(v float64) float64 { return math.Max(v-lambda, 0) })

	return nil
}

// NuclearValue returns Σ|e_i|, the nuclear norm of a symmetric matrix.
func NuclearValue(a mat.Matrix) float64 {
	e, err := matrix.EigenSym(a)
	if err != nil {
		return math.NaN()
	}
	var s float64
	for _, v := range e.Values {
		s += math.Abs(v)
	}

	return s
}
