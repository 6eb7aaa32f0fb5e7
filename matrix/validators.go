// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - One canonical place for the guards every solver runs before iterating.
//   - Return sentinels wrapped with a validator tag so call sites stay short.
//
// Determinism & Performance:
//   - All checks are pure and allocate nothing.
//   - Symmetry check visits the upper triangle only.

package matrix

import (
	"fmt"
	"math"
)

// Epsilon is the default absolute tolerance for symmetry checks.
const Epsilon = 1e-8

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures s is non-nil.
func ValidateNotNil(s *Stack) error {
	if s == nil {
		return validatorErrorf("ValidateNotNil", ErrNilStack)
	}

	return nil
}

// ValidateFinite rejects NaN and ±Inf anywhere in s.
// Complexity: O(T·p²).
func ValidateFinite(s *Stack) error {
	if err := ValidateNotNil(s); err != nil {
		return err
	}
	for i, v := range s.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pp := s.p * s.p
			return validatorErrorf(fmt.Sprintf("ValidateFinite: slice %d entry %d", i/pp, i%pp), ErrNaNInf)
		}
	}

	return nil
}

// ValidateSymmetric checks |a_ij - a_ji| <= eps for every slice.
func ValidateSymmetric(s *Stack, eps float64) error {
	if err := ValidateNotNil(s); err != nil {
		return err
	}
	p := s.p
	for t := 0; t < s.t; t++ {
		d := s.slab(t)
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				if math.Abs(d[i*p+j]-d[j*p+i]) > eps {
					return validatorErrorf(fmt.Sprintf("ValidateSymmetric: slice %d (%d,%d)", t, i, j), ErrAsymmetry)
				}
			}
		}
	}

	return nil
}

// ValidateSameShape ensures a and b agree on T and p.
func ValidateSameShape(a, b *Stack) error {
	if a == nil || b == nil {
		return validatorErrorf("ValidateSameShape", ErrNilStack)
	}
	if a.t != b.t || a.p != b.p {
		return validatorErrorf(fmt.Sprintf("ValidateSameShape: %dx%dx%d vs %dx%dx%d", a.t, a.p, a.p, b.t, b.p, b.p), ErrDimensionMismatch)
	}

	return nil
}

// ValidateWeights checks that w has length t and only strictly positive,
// finite entries.
func ValidateWeights(w []float64, t int) error {
	if len(w) != t {
		return validatorErrorf(fmt.Sprintf("ValidateWeights: len=%d want %d", len(w), t), ErrDimensionMismatch)
	}
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(fmt.Sprintf("ValidateWeights: index %d", i), ErrNaNInf)
		}
		if v <= 0 {
			return validatorErrorf(fmt.Sprintf("ValidateWeights: index %d", i), ErrNonPositiveWeight)
		}
	}

	return nil
}

// ValidateCovariance is the composite guard for empirical covariance input:
// NotNil → Finite → Symmetric(eps).
func ValidateCovariance(s *Stack, eps float64) error {
	if err := ValidateFinite(s); err != nil {
		return err
	}

	return ValidateSymmetric(s, eps)
}

// Ones returns a weight vector of t ones (the default n_samples).
func Ones(t int) []float64 {
	w := make([]float64, t)
	for i := range w {
		w[i] = 1
	}

	return w
}
