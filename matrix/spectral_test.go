// SPDX-License-Identifier: MIT

package matrix_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

func TestEigenSym_ReconstructIdentity(t *testing.T) {
	a := randomSPD(rand.New(rand.NewSource(7)), 5)
	e, err := matrix.EigenSym(a)
	require.NoError(t, err)
	require.Len(t, e.Values, 5)
	assert.LessOrEqual(t, e.Min(), e.Max())

	got := mat.NewDense(5, 5, nil)
	matrix.Reconstruct(got, e, func(v float64) float64 { return v })
	assert.True(t, mat.EqualApprox(a, got, 1e-9))
}

func TestInverseAndLogDet(t *testing.T) {
	a := randomSPD(rand.New(rand.NewSource(11)), 4)
	e, err := matrix.EigenSym(a)
	require.NoError(t, err)

	inv := mat.NewDense(4, 4, nil)
	matrix.Inverse(inv, e)
	var prod mat.Dense
	prod.Mul(a, inv)
	eye := mat.NewDiagDense(4, []float64{1, 1, 1, 1})
	assert.True(t, mat.EqualApprox(&prod, eye, 1e-9))

	assert.InDelta(t, matrix.LogDetCholesky(a), e.LogDet(), 1e-9)
}

func TestPseudoInverse_Singular(t *testing.T) {
	// Rank-one: v·vᵀ with v=(1,1); pinv = v·vᵀ/‖v‖⁴.
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	dst := mat.NewDense(2, 2, nil)
	require.NoError(t, matrix.PseudoInverse(dst, a))
	want := mat.NewDense(2, 2, []float64{0.25, 0.25, 0.25, 0.25})
	assert.True(t, mat.EqualApprox(want, dst, 1e-12))
}

func TestPositiveDefinite(t *testing.T) {
	assert.True(t, matrix.IsPositiveDefinite(mat.NewDense(2, 2, []float64{2, 1, 1, 2})))
	assert.False(t, matrix.IsPositiveDefinite(mat.NewDense(2, 2, []float64{1, 2, 2, 1})))
	assert.True(t, math.IsInf(matrix.LogDetCholesky(mat.NewDense(2, 2, []float64{1, 2, 2, 1})), -1))

	s := randomSPDStack(t, 3, 3, 2)
	assert.Equal(t, -1, s.FirstNotPositiveDefinite())
	s.At(2).Copy(mat.NewDense(2, 2, []float64{1, 2, 2, 1}))
	assert.Equal(t, 2, s.FirstNotPositiveDefinite())
}

func TestEigenSym_Errors(t *testing.T) {
	_, err := matrix.EigenSym(mat.NewDense(2, 3, nil))
	require.ErrorIs(t, err, matrix.ErrBadShape)
}

func TestDecomposeStack_Parallel(t *testing.T) {
	s := randomSPDStack(t, 5, 8, 4)
	seq, err := matrix.DecomposeStack(context.Background(), s, 1)
	require.NoError(t, err)
	par, err := matrix.DecomposeStack(context.Background(), s, 4)
	require.NoError(t, err)
	require.Len(t, par, 8)
	for i := range seq {
		assert.InDeltaSlice(t, seq[i].Values, par[i].Values, 1e-12)
	}
	assert.Greater(t, matrix.MinEigenvalue(par), 0.0)
}

func TestParallelFor_PropagatesError(t *testing.T) {
	errBoom := assert.AnError
	err := matrix.ParallelFor(context.Background(), 10, 3, func(i int) error {
		if i == 4 {
			return errBoom
		}
		return nil
	})
	require.ErrorIs(t, err, errBoom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = matrix.ParallelFor(ctx, 3, 1, func(int) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
