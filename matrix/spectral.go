// SPDX-License-Identifier: MIT

package matrix

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// pinvCutoff is the relative cutoff below which eigenvalues are treated as
// zero by PseudoInverse.
const pinvCutoff = 1e-12

// Eigen holds the spectral decomposition A = Q·diag(Values)·Qᵀ of one
// symmetric slice. Values are ascending; Vectors columns are orthonormal.
type Eigen struct {
	Values  []float64
	Vectors *mat.Dense
}

// Min returns the smallest eigenvalue.
func (e Eigen) Min() float64 { return e.Values[0] }

// Max returns the largest eigenvalue.
func (e Eigen) Max() float64 { return e.Values[len(e.Values)-1] }

// symmetricOf builds the SymDense of (A + Aᵀ)/2 so that round-off asymmetry
// in the caller never reaches the eigensolver.
func symmetricOf(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	return sym
}

// EigenSym decomposes the symmetric part of a.
//
// Implementation:
//   - Stage 1: symmetrize into a SymDense.
//   - Stage 2: gonum EigenSym with vectors.
//
// Errors: ErrBadShape if a is not square, ErrEigenFailed if the solver did
// not converge (e.g. NaN input).
// Complexity: O(p³).
func EigenSym(a mat.Matrix) (Eigen, error) {
	r, c := a.Dims()
	if r != c {
		return Eigen{}, fmt.Errorf("EigenSym: %dx%d: %w", r, c, ErrBadShape)
	}
	var es mat.EigenSym
	if ok := es.Factorize(symmetricOf(a), true); !ok {
		return Eigen{}, fmt.Errorf("EigenSym: %w", ErrEigenFailed)
	}
	vals := es.Values(nil)
	for _, v := range vals {
		if math.IsNaN(v) {
			return Eigen{}, fmt.Errorf("EigenSym: %w", ErrEigenFailed)
		}
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	return Eigen{Values: vals, Vectors: &vecs}, nil
}

// Reconstruct writes Q·diag(f(λ))·Qᵀ into dst. dst must be p×p and must not
// alias e.Vectors.
func Reconstruct(dst *mat.Dense, e Eigen, f func(float64) float64) {
	n := len(e.Values)
	var scaled mat.Dense
	scaled.CloneFrom(e.Vectors)
	for j := 0; j < n; j++ {
		fj := f(e.Values[j])
		for i := 0; i < n; i++ {
			scaled.Set(i, j, scaled.At(i, j)*fj)
		}
	}
	dst.Mul(&scaled, e.Vectors.T())
}

// Inverse writes Q·diag(1/λ)·Qᵀ into dst, reusing a decomposition.
func Inverse(dst *mat.Dense, e Eigen) {
	Reconstruct(dst, e, func(v float64) float64 { return 1 / v })
}

// LogDet returns Σ log λ, or -Inf when any eigenvalue is non-positive.
func (e Eigen) LogDet() float64 {
	var s float64
	for _, v := range e.Values {
		if v <= 0 {
			return math.Inf(-1)
		}
		s += math.Log(v)
	}

	return s
}

// PseudoInverse writes the Moore–Penrose inverse of the symmetric part of a
// into dst. Eigenvalues with |λ| <= cutoff·max|λ| are dropped.
func PseudoInverse(dst *mat.Dense, a mat.Matrix) error {
	e, err := EigenSym(a)
	if err != nil {
		return fmt.Errorf("PseudoInverse: %w", err)
	}
	cut := pinvCutoff * math.Max(math.Abs(e.Min()), math.Abs(e.Max()))
	Reconstruct(dst, e, func(v float64) float64 {
		if math.Abs(v) <= cut {
			return 0
		}

		return 1 / v
	})

	return nil
}

// IsPositiveDefinite reports whether the symmetric part of a admits a
// Cholesky factorization.
func IsPositiveDefinite(a mat.Matrix) bool {
	var chol mat.Cholesky

	return chol.Factorize(symmetricOf(a))
}

// FirstNotPositiveDefinite returns the index of the first slice that is not
// positive definite, or -1 when every slice passes.
func (s *Stack) FirstNotPositiveDefinite() int {
	for t := 0; t < s.t; t++ {
		if !IsPositiveDefinite(s.At(t)) {
			return t
		}
	}

	return -1
}

// LogDetCholesky returns log det(a) via Cholesky, or -Inf if a is not
// positive definite.
func LogDetCholesky(a mat.Matrix) float64 {
	var chol mat.Cholesky
	if !chol.Factorize(symmetricOf(a)) {
		return math.Inf(-1)
	}

	return chol.LogDet()
}

// DecomposeStack eigendecomposes every slice of s, workers at a time.
// Slices are independent, so the work is split with ParallelFor.
func DecomposeStack(ctx context.Context, s *Stack, workers int) ([]Eigen, error) {
	out := make([]Eigen, s.t)
	err := ParallelFor(ctx, s.t, workers, func(t int) error {
		e, err := EigenSym(s.At(t))
		if err != nil {
			return fmt.Errorf("slice %d: %w", t, err)
		}
		out[t] = e

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("DecomposeStack: %w", err)
	}

	return out, nil
}

// MinEigenvalue returns the smallest eigenvalue across all decompositions.
func MinEigenvalue(es []Eigen) float64 {
	m := math.Inf(1)
	for _, e := range es {
		if v := e.Min(); v < m {
			m = v
		}
	}

	return m
}

// PseudoInverseStack writes the slice-wise pseudo-inverse of src into dst.
func PseudoInverseStack(dst, src *Stack) error {
	dst.mustSameShape("PseudoInverseStack", src)
	for t := 0; t < src.t; t++ {
		if err := PseudoInverse(dst.At(t), src.At(t)); err != nil {
			return fmt.Errorf("slice %d: %w", t, err)
		}
	}

	return nil
}
