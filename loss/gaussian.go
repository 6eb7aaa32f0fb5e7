package loss

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

// ErrInvalidLoss is returned when a loss is configured with bad parameters.
var ErrInvalidLoss = errors.New("loss: invalid configuration")

// Gaussian is the weighted negative Gaussian log-likelihood over T slices.
type Gaussian struct {
	S        *matrix.Stack
	NSamples []float64
	Vareps   float64
}

// NewGaussian validates S (finite, symmetric) and the weights. A nil
// nSamples means one sample per slice.
func NewGaussian(s *matrix.Stack, nSamples []float64, vareps float64) (Gaussian, error) {
	if err := matrix.ValidateCovariance(s, matrix.Epsilon); err != nil {
		return Gaussian{}, fmt.Errorf("NewGaussian: %w", err)
	}
	if nSamples == nil {
		nSamples = matrix.Ones(s.Len())
	}
	if err := matrix.ValidateWeights(nSamples, s.Len()); err != nil {
		return Gaussian{}, fmt.Errorf("NewGaussian: %w", err)
	}
	if vareps < 0 || math.IsNaN(vareps) {
		return Gaussian{}, fmt.Errorf("NewGaussian: vareps=%v: %w", vareps, ErrInvalidLoss)
	}

	return Gaussian{S: s, NSamples: nSamples, Vareps: vareps}, nil
}

// LogLikelihood returns log det K - ⟨S, K⟩ (-Inf if K is not positive definite).
func LogLikelihood(s, k mat.Matrix) float64 {
	ld := matrix.LogDetCholesky(k)
	if math.IsInf(ld, -1) {
		return ld
	}

	return ld - frobeniusDot(s, k)
}

func frobeniusDot(a, b mat.Matrix) float64 {
	r, c := a.Dims()
	var s float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s += a.At(i, j) * b.At(i, j)
		}
	}

	return s
}

// SliceLoss returns -n_t·(log det K_t - ⟨S_t, K_t⟩) for one slice, +Inf if
// K_t is not positive definite. The ridge term is not included.
func (g Gaussian) SliceLoss(t int, k mat.Matrix) float64 {
	ld := matrix.LogDetCholesky(k)
	if math.IsInf(ld, -1) {
		return math.Inf(1)
	}

	return -g.NSamples[t] * (ld - frobeniusDot(g.S.At(t), k))
}

// Loss evaluates L(K). It is +Inf when any slice is not positive definite.
func (g Gaussian) Loss(k *matrix.Stack) float64 {
	var total float64
	for t := 0; t < k.Len(); t++ {
		l := g.SliceLoss(t, k.At(t))
		if math.IsInf(l, 1) {
			return l
		}
		total += l
	}

	return total + g.Vareps/2*k.SquaredNorm()
}

// Gradient writes ∇L(K) into dst using the eigendecompositions eig of K.
func (g Gaussian) Gradient(dst, k *matrix.Stack, eig []matrix.Eigen) {
	for t := 0; t < k.Len(); t++ {
		d := dst.At(t)
		matrix.Inverse(d, eig[t])
		raw := dst.SliceData(t)
		// d = n_t·(S_t - K_t⁻¹)
		floats.SubTo(raw, g.S.SliceData(t), raw)
		floats.Scale(g.NSamples[t], raw)
		floats.AddScaled(raw, g.Vareps, k.SliceData(t))
	}
}

// InitPrecision returns the damped, diagonally loaded starting point used by
// every solver: K_t = pinv(0.95·S_t with the diagonal of S_t restored).
func InitPrecision(s *matrix.Stack) (*matrix.Stack, error) {
	c := s.Clone()
	c.Scale(0.95)
	p := s.Dim()
	for t := 0; t < s.Len(); t++ {
		for i := 0; i < p; i++ {
			c.Set(t, i, i, s.Get(t, i, i))
		}
	}
	k := s.ZerosLike()
	if err := matrix.PseudoInverseStack(k, c); err != nil {
		return nil, fmt.Errorf("InitPrecision: %w", err)
	}

	return k, nil
}

// Inverse writes the slice-wise pseudo-inverse of k (the covariance
// estimate of a precision stack) into a new stack.
func Inverse(k *matrix.Stack) (*matrix.Stack, error) {
	out := k.ZerosLike()
	if err := matrix.PseudoInverseStack(out, k); err != nil {
		return nil, fmt.Errorf("Inverse: %w", err)
	}

	return out, nil
}
