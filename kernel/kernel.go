// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Func evaluates a kernel family with hyperparameter theta on time stamps.
type Func func(theta float64, times []float64) (*mat.Dense, error)

// Times returns the default time stamps 0, 1, …, t-1.
func Times(t int) []float64 {
	out := make([]float64, t)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

// Identity returns the t×t identity, the kernel of independent time points.
func Identity(t int) *mat.Dense {
	k := mat.NewDense(t, t, nil)
	for i := 0; i < t; i++ {
		k.Set(i, i, 1)
	}

	return k
}

// stationary builds k(s,t) = f(|times_s - times_t|).
func stationary(times []float64, f func(d float64) float64) *mat.Dense {
	n := len(times)
	k := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		k.Set(i, i, f(0))
		for j := i + 1; j < n; j++ {
			v := f(math.Abs(times[i] - times[j]))
			k.Set(i, j, v)
			k.Set(j, i, v)
		}
	}

	return k
}

func checkPositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s=%v: %w", name, v, ErrBadHyperparameter)
	}

	return nil
}

// RBF is the squared-exponential kernel with length scale theta.
func RBF(theta float64, times []float64) (*mat.Dense, error) {
	if err := checkPositive("RBF length_scale", theta); err != nil {
		return nil, err
	}

	return stationary(times, func(d float64) float64 {
		return math.Exp(-d * d / (2 * theta * theta))
	}), nil
}

// Matern12 is the exponential (Matérn ν=1/2) kernel with length scale theta.
func Matern12(theta float64, times []float64) (*mat.Dense, error) {
	if err := checkPositive("Matern12 length_scale", theta); err != nil {
		return nil, err
	}

	return stationary(times, func(d float64) float64 { return math.Exp(-d / theta) }), nil
}

// ExpSineSquared returns the periodic kernel family with the given period;
// theta is the length scale.
func ExpSineSquared(period float64) Func {
	return func(theta float64, times []float64) (*mat.Dense, error) {
		if err := checkPositive("ExpSineSquared periodicity", period); err != nil {
			return nil, err
		}
		if err := checkPositive("ExpSineSquared length_scale", theta); err != nil {
			return nil, err
		}

		return stationary(times, func(d float64) float64 {
			s := math.Sin(math.Pi * d / period)
			return math.Exp(-2 * s * s / (theta * theta))
		}), nil
	}
}

// Constant fills every entry with theta (>= 0).
func Constant(theta float64, times []float64) (*mat.Dense, error) {
	if theta < 0 || math.IsNaN(theta) || math.IsInf(theta, 0) {
		return nil, fmt.Errorf("Constant value=%v: %w", theta, ErrBadHyperparameter)
	}

	return stationary(times, func(float64) float64 { return theta }), nil
}

// Lookup resolves a kernel family by name (case-insensitive): rbf, matern12
// (alias exponential), exp_sine_squared (needs period), constant.
func Lookup(name string, period float64) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rbf":
		return RBF, nil
	case "matern12", "exponential":
		return Matern12, nil
	case "exp_sine_squared", "expsinesquared":
		return ExpSineSquared(period), nil
	case "constant":
		return Constant, nil
	}

	return nil, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownKernel)
}

// Validate checks that k is t×t, finite, non-negative and symmetric within
// 1e-12 (relative to the largest entry).
func Validate(k mat.Matrix, t int) error {
	r, c := k.Dims()
	if r != t || c != t {
		return fmt.Errorf("Validate: %dx%d kernel for %d time points: %w", r, c, t, ErrKernelSize)
	}
	var scale float64
	for i := 0; i < t; i++ {
		for j := 0; j < t; j++ {
			v := k.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("Validate: entry (%d,%d)=%v: %w", i, j, v, ErrKernelValue)
			}
			scale = math.Max(scale, v)
		}
	}
	tol := 1e-12 * math.Max(1, scale)
	for i := 0; i < t; i++ {
		for j := i + 1; j < t; j++ {
			if math.Abs(k.At(i, j)-k.At(j, i)) > tol {
				return fmt.Errorf("Validate: entries (%d,%d) and (%d,%d): %w", i, j, j, i, ErrKernelAsymmetric)
			}
		}
	}

	return nil
}

// Diagonal returns the m-th super-diagonal k(i, i+m), i = 0 … t-m-1.
func Diagonal(k mat.Matrix, m int) []float64 {
	t, _ := k.Dims()
	if m <= 0 || m >= t {
		return nil
	}
	out := make([]float64, t-m)
	for i := range out {
		out[i] = k.At(i, i+m)
	}

	return out
}
