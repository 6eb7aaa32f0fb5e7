// SPDX-License-Identifier: MIT

package prox

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Penalty selects the ψ (or φ) norm applied to differences between lagged
// time points. The set is closed; resolve tokens with ParsePenalty once at
// configuration time.
type Penalty int

const (
	// Laplacian is ‖X‖_F², favouring smooth, gradual change.
	Laplacian Penalty = iota
	// L1 is Σ|x_ij|, favouring few changing edges.
	L1
	// L2 is Σ_j ‖X_:j‖₂, favouring few changing columns (group lasso).
	L2
	// LInf is max|x_ij|, favouring block-wise change.
	LInf
	// Node is min{Σ_j ‖V_:j‖₂ : V + Vᵀ = X}, favouring perturbed nodes.
	Node
)

var penaltyNames = map[Penalty]string{
	Laplacian: "laplacian",
	L1:        "l1",
	L2:        "l2",
	LInf:      "linf",
	Node:      "node",
}

// String returns the canonical token.
func (k Penalty) String() string {
	if s, ok := penaltyNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Penalty(%d)", int(k))
}

// ParsePenalty maps a configuration token (case-insensitive) to a Penalty.
// Unknown tokens are an error; there is no fallback.
func ParsePenalty(token string) (Penalty, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "laplacian":
		return Laplacian, nil
	case "l1":
		return L1, nil
	case "l2":
		return L2, nil
	case "linf", "l-inf", "l_inf":
		return LInf, nil
	case "node":
		return Node, nil
	}

	return 0, fmt.Errorf("ParsePenalty(%q): %w", token, ErrUnknownPenalty)
}

// UnmarshalText lets a Penalty be decoded directly from YAML/flags.
func (k *Penalty) UnmarshalText(b []byte) error {
	v, err := ParsePenalty(string(b))
	if err != nil {
		return err
	}
	*k = v

	return nil
}

// MarshalText returns the canonical token.
func (k Penalty) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Value evaluates the penalty at x.
//
// Node is not minimised: Value returns Σ_j ‖X_:j‖₂ / 2, the cost of the
// feasible split V = X/2. That is an upper bound on the node norm, so
// objectives reported with Node penalties over-estimate the lag term.
func (k Penalty) Value(x mat.Matrix) float64 {
	switch k {
	case Laplacian:
		n := mat.Norm(x, 2) // Frobenius
		return n * n
	case L1:
		return entrywise(x, func(acc, v float64) float64 { return acc + math.Abs(v) })
	case L2:
		return columnNormSum(x, 1)
	case LInf:
		return entrywise(x, func(acc, v float64) float64 { return math.Max(acc, math.Abs(v)) })
	case Node:
		// the symmetric split V = X/2 is feasible for symmetric X
		return columnNormSum(x, 0.5)
	}
	panic(fmt.Sprintf("prox: %v", k))
}

// Prox writes the proximal point of lambda·Value at src into dst.
// Node runs an inner iterative solver with DefaultNodeOptions; use
// ProxNode to control it. dst may alias src.
func (k Penalty) Prox(dst *mat.Dense, src *mat.Dense, lambda float64) {
	switch k {
	case Laplacian:
		dst.Scale(1/(1+2*lambda), src)
	case L1:
		softThresholdDense(dst, src, lambda)
	case L2:
		groupShrinkColumns(dst, src, lambda)
	case LInf:
		proxLInf(dst, src, lambda)
	case Node:
		ProxNode(dst, src, lambda, DefaultNodeOptions())
	default:
		panic(fmt.Sprintf("prox: %v", k))
	}
}

// entrywise folds f over every entry of x, starting from 0. mat.Norm with
// ord 1 or Inf is the induced operator norm, not the entrywise one.
func entrywise(x mat.Matrix, f func(acc, v float64) float64) float64 {
	r, c := x.Dims()
	var acc float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			acc = f(acc, x.At(i, j))
		}
	}

	return acc
}

// columnNormSum returns Σ_j ‖c·X_:j‖₂.
func columnNormSum(x mat.Matrix, c float64) float64 {
	r, cols := x.Dims()
	col := make([]float64, r)
	var s float64
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		s += floats.Norm(col, 2)
	}

	return c * s
}

// groupShrinkColumns scales every column by max(0, 1 - lambda/‖col‖).
func groupShrinkColumns(dst *mat.Dense, src mat.Matrix, lambda float64) {
	r, c := src.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, src)
		n := floats.Norm(col, 2)
		f := 0.0
		if n > lambda {
			f = 1 - lambda/n
		}
		floats.Scale(f, col)
		dst.SetCol(j, col)
	}
}

// proxLInf uses the Moreau decomposition: x - P_{ℓ1 ball(λ)}(x).
func proxLInf(dst *mat.Dense, src mat.Matrix, lambda float64) {
	r, c := src.Dims()
	v := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v[i*c+j] = src.At(i, j)
		}
	}
	proj := make([]float64, len(v))
	ProjectL1Ball(proj, v, lambda)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, v[i*c+j]-proj[i*c+j])
		}
	}
}
