// SPDX-License-Identifier: MIT

package prox

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

// SoftThreshold returns sign(x)·max(|x|-lambda, 0).
func SoftThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// SoftThresholdStack applies SoftThreshold to every entry of src into dst.
// dst may alias src.
func SoftThresholdStack(dst, src *matrix.Stack, lambda float64) {
	d, s := dst.Raw(), src.Raw()
	for i, v := range s {
		d[i] = SoftThreshold(v, lambda)
	}
}

// SoftThresholdOffDiagonal thresholds off-diagonal entries and copies the
// diagonal unchanged. dst may alias src.
func SoftThresholdOffDiagonal(dst, src *matrix.Stack, lambda float64) {
	p := src.Dim()
	d, s := dst.Raw(), src.Raw()
	for k, v := range s {
		if r := k % (p * p); r/p == r%p {
			d[k] = v

			continue
		}
		d[k] = SoftThreshold(v, lambda)
	}
}

// softThresholdDense is the in-place, single-matrix variant used by the
// per-pair penalty proxes.
func softThresholdDense(dst *mat.Dense, src mat.Matrix, lambda float64) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, SoftThreshold(src.At(i, j), lambda))
		}
	}
}

// SoftThresholdOffDiagonalDense is SoftThresholdOffDiagonal for a single
// square matrix. dst may alias src.
func SoftThresholdOffDiagonalDense(dst *mat.Dense, src mat.Matrix, lambda float64) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i == j {
				dst.Set(i, j, src.At(i, j))

				continue
			}
			dst.Set(i, j, SoftThreshold(src.At(i, j), lambda))
		}
	}
}

// L1OffDiagonal returns Σ_{i≠j} |a_ij|.
func L1OffDiagonal(a mat.Matrix) float64 {
	r, c := a.Dims()
	var s float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i != j {
				s += math.Abs(a.At(i, j))
			}
		}
	}

	return s
}

// L1OffDiagonalStack returns Σ_t ‖K_t‖_od,1.
func L1OffDiagonalStack(k *matrix.Stack) float64 {
	var s float64
	for t := 0; t < k.Len(); t++ {
		s += L1OffDiagonal(k.At(t))
	}

	return s
}
