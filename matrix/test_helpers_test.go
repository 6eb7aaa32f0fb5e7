// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Small deterministic fixtures (seeded SPD slices, stacks from literals).
//   - Keep data finite and well-conditioned so numeric policy never interferes.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

// mustStack allocates a t×p×p stack from data or fails the test.
func mustStack(tb testing.TB, t, p int, data []float64) *matrix.Stack {
	tb.Helper()
	s, err := matrix.NewStackFrom(t, p, data)
	require.NoError(tb, err)

	return s
}

// randomSPD returns B·Bᵀ + p·I for a seeded random B, which is always SPD.
func randomSPD(rng *rand.Rand, p int) *mat.Dense {
	b := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			b.Set(i, j, rng.NormFloat64())
		}
	}
	var out mat.Dense
	out.Mul(b, b.T())
	for i := 0; i < p; i++ {
		out.Set(i, i, out.At(i, i)+float64(p))
	}

	return &out
}

// randomSPDStack fills a t×p×p stack with independent SPD slices.
func randomSPDStack(tb testing.TB, seed int64, t, p int) *matrix.Stack {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	s, err := matrix.NewStack(t, p)
	require.NoError(tb, err)
	for i := 0; i < t; i++ {
		s.At(i).Copy(randomSPD(rng, p))
	}

	return s
}
