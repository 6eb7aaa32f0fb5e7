package fb_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/katalvlaran/tvgl/matrix"
)

// chainPrecision returns I + w·(path adjacency), positive definite for
// |w| < 0.5.
func chainPrecision(p int, w float64) *mat.SymDense {
	k := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		k.SetSym(i, i, 1)
		if i+1 < p {
			k.SetSym(i, i+1, w)
		}
	}

	return k
}

// sampleCovariances draws n samples per time point from N(0, K⁻¹) and
// returns the stack of empirical covariances.
func sampleCovariances(tb testing.TB, truth *mat.SymDense, times, n int) *matrix.Stack {
	tb.Helper()
	p := truth.SymmetricDim()

	var chol mat.Cholesky
	require.True(tb, chol.Factorize(truth))
	var sigma mat.SymDense
	require.NoError(tb, chol.InverseTo(&sigma))

	dist, ok := distmv.NewNormal(make([]float64, p), &sigma, nil)
	require.True(tb, ok)

	covs := make([]mat.Matrix, times)
	for t := range covs {
		x := mat.NewDense(n, p, nil)
		for i := 0; i < n; i++ {
			x.SetRow(i, dist.Rand(nil))
		}
		var c mat.SymDense
		stat.CovarianceMatrix(&c, x, nil)
		covs[t] = &c
	}
	s, err := matrix.StackOf(covs...)
	require.NoError(tb, err)

	return s
}

// mustStack builds a stack from explicit slice data.
func mustStack(tb testing.TB, t, p int, data ...float64) *matrix.Stack {
	tb.Helper()
	s, err := matrix.NewStackFrom(t, p, data)
	require.NoError(tb, err)

	return s
}

// kktGap returns the largest violation of the graphical lasso optimality
// conditions for a single slice:
//
//	G = n(S - K⁻¹) + vareps·K,  G_ii = 0,
//	G_ij = -alpha·sign(K_ij) if K_ij != 0, |G_ij| <= alpha otherwise.
func kktGap(tb testing.TB, s, k mat.Matrix, n, alpha, vareps float64) float64 {
	tb.Helper()
	p, _ := k.Dims()
	var inv mat.Dense
	require.NoError(tb, inv.Inverse(k))

	var gap float64
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			g := n*(s.At(i, j)-inv.At(i, j)) + vareps*k.At(i, j)
			kij := k.At(i, j)
			var v float64
			switch {
			case i == j:
				v = math.Abs(g)
			case kij != 0:
				v = math.Abs(g + alpha*math.Copysign(1, kij))
			default:
				v = math.Max(0, math.Abs(g)-alpha)
			}
			gap = math.Max(gap, v)
		}
	}

	return gap
}

// shiftingChain returns three related precisions over four features: a
// path 0-1-2-3, then the edge {2,3} dropped, then the edge {0,3} added.
// Consecutive supports differ by one edge.
func shiftingChain() []*mat.SymDense {
	const w = 0.4
	first := chainPrecision(4, w)
	second := chainPrecision(4, w)
	second.SetSym(2, 3, 0)
	third := chainPrecision(4, w)
	third.SetSym(2, 3, 0)
	third.SetSym(0, 3, w)

	return []*mat.SymDense{first, second, third}
}

// sampleSequence draws n samples from N(0, K_t⁻¹) for every truth K_t and
// returns the stack of empirical covariances.
func sampleSequence(tb testing.TB, truths []*mat.SymDense, n int) *matrix.Stack {
	tb.Helper()
	covs := make([]mat.Matrix, len(truths))
	for t, truth := range truths {
		covs[t] = sampleCovariances(tb, truth, 1, n).At(0)
	}
	s, err := matrix.StackOf(covs...)
	require.NoError(tb, err)

	return s
}

// supportErrors counts the (t, i<j) pairs where |K_t[i,j]| > cut disagrees
// with the support of truths[t].
func supportErrors(k *matrix.Stack, truths []*mat.SymDense, cut float64) int {
	var errs int
	for t, truth := range truths {
		p := truth.SymmetricDim()
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				if (truth.At(i, j) != 0) != (math.Abs(k.Get(t, i, j)) > cut) {
					errs++
				}
			}
		}
	}

	return errs
}
