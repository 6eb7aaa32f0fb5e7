// SPDX-License-Identifier: MIT

package prox_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
)

func TestParsePenalty(t *testing.T) {
	for tok, want := range map[string]prox.Penalty{
		"laplacian": prox.Laplacian,
		"L1":        prox.L1,
		"l2":        prox.L2,
		"linf":      prox.LInf,
		" node ":    prox.Node,
	} {
		got, err := prox.ParsePenalty(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, want, got)
	}

	_, err := prox.ParsePenalty("l3")
	require.ErrorIs(t, err, prox.ErrUnknownPenalty)

	var k prox.Penalty
	require.NoError(t, k.UnmarshalText([]byte("node")))
	assert.Equal(t, prox.Node, k)
	assert.Equal(t, "node", k.String())
	require.ErrorIs(t, k.UnmarshalText([]byte("")), prox.ErrUnknownPenalty)
}

func TestPenalty_Values(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{3, -4, 0, 1})
	assert.InDelta(t, 26.0, prox.Laplacian.Value(x), 1e-12)
	assert.InDelta(t, 8.0, prox.L1.Value(x), 1e-12)
	assert.InDelta(t, 3+math.Sqrt(17), prox.L2.Value(x), 1e-12)
	assert.InDelta(t, 4.0, prox.LInf.Value(x), 1e-12)
	assert.InDelta(t, 0.5*(3+math.Sqrt(17)), prox.Node.Value(x), 1e-12)
}

func TestPenalty_NodeValueIsSplitBound(t *testing.T) {
	// star around node 0; V = (X_:0 in column 0, zero elsewhere) costs √2
	x := mat.NewDense(3, 3, []float64{
		0, 1, 1,
		1, 0, 0,
		1, 0, 0,
	})
	hub := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		1, 0, 0,
	})
	var sum mat.Dense
	sum.Add(hub, hub.T())
	require.True(t, mat.Equal(&sum, x))

	v := prox.Node.Value(x)
	assert.InDelta(t, 1+math.Sqrt2/2, v, 1e-12)
	assert.Greater(t, v, prox.L2.Value(hub))
}

func TestPenalty_ProxClosedForms(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{3, -1, 0.5, 0})
	got := mat.NewDense(2, 2, nil)

	prox.Laplacian.Prox(got, x, 1)
	assert.True(t, mat.EqualApprox(got, mat.NewDense(2, 2, []float64{1, -1.0 / 3, 0.5 / 3, 0}), 1e-12))

	prox.L1.Prox(got, x, 1)
	assert.True(t, mat.EqualApprox(got, mat.NewDense(2, 2, []float64{2, 0, 0, 0}), 1e-12))

	// column norms: ‖(3,0.5)‖ = √9.25, ‖(-1,0)‖ = 1 ⇒ second column vanishes.
	prox.L2.Prox(got, x, 1)
	f := 1 - 1/math.Sqrt(9.25)
	assert.True(t, mat.EqualApprox(got, mat.NewDense(2, 2, []float64{3 * f, 0, 0.5 * f, 0}), 1e-12))

	// ℓ∞: magnitudes are clipped at the level s where Σ(|x|-s)+ = λ.
	prox.LInf.Prox(got, x, 2)
	assert.True(t, mat.EqualApprox(got, mat.NewDense(2, 2, []float64{1, -1, 0.5, 0}), 1e-12))
}

func TestPenalty_ProxZeroLambdaIsIdentity(t *testing.T) {
	x := randomStack(t, 9, 1, 4).At(0)
	for _, k := range []prox.Penalty{prox.Laplacian, prox.L1, prox.L2, prox.LInf, prox.Node} {
		got := mat.NewDense(4, 4, nil)
		k.Prox(got, x, 0)
		assert.True(t, mat.EqualApprox(got, x, 1e-7), k.String())
	}
}

func TestProxNode(t *testing.T) {
	e := randomStack(t, 10, 1, 4).At(0)

	// large λ kills everything
	got := mat.NewDense(4, 4, nil)
	prox.Node.Prox(got, e, 1e3)
	assert.InDelta(t, 0, mat.Norm(got, 2), 1e-9)

	// moderate λ: symmetric and shrunk
	prox.ProxNode(got, e, 0.3, prox.NodeOptions{Tol: 1e-10, MaxIter: 2000})
	assert.True(t, mat.EqualApprox(got, got.T(), 1e-9))
	assert.Less(t, mat.Norm(got, 2), mat.Norm(e, 2))
}

func TestLogDet_Stationarity(t *testing.T) {
	a := randomStack(t, 11, 1, 4).At(0)
	lambda := 0.7
	k := mat.NewDense(4, 4, nil)
	require.NoError(t, prox.LogDet(k, a, lambda))
	require.True(t, matrix.IsPositiveDefinite(k))

	// K - λ·K⁻¹ = A
	var inv, lhs mat.Dense
	require.NoError(t, inv.Inverse(k))
	lhs.Scale(-lambda, &inv)
	lhs.Add(&lhs, k)
	assert.True(t, mat.EqualApprox(&lhs, a, 1e-8))

	require.ErrorIs(t, prox.LogDet(k, a, 0), prox.ErrNegativeThreshold)
}

func TestNuclearNorm(t *testing.T) {
	// eigenvalues 3 and 1
	a := mat.NewDense(2, 2, []float64{2, 1, 1, 2})
	got := mat.NewDense(2, 2, nil)
	require.NoError(t, prox.NuclearNorm(got, a, 1.5))

	// only λ=1.5 survives from 3 -> rank one, PSD
	e, err := matrix.EigenSym(got)
	require.NoError(t, err)
	assert.InDelta(t, 0, e.Values[0], 1e-12)
	assert.InDelta(t, 1.5, e.Values[1], 1e-12)
	assert.InDelta(t, 4.0, prox.NuclearValue(a), 1e-12)
}
