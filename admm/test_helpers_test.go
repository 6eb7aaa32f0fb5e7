package admm_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/katalvlaran/tvgl/loss"
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

// kktGap returns the largest violation of the graphical lasso optimality
// conditions for a single slice with unit sample weight.
func kktGap(tb testing.TB, s, k mat.Matrix, alpha float64) float64 {
	tb.Helper()
	p, _ := k.Dims()
	var inv mat.Dense
	require.NoError(tb, inv.Inverse(k))

	var gap float64
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			g := s.At(i, j) - inv.At(i, j)
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

// randomBinary returns an n×p matrix of 0/1 values.
func randomBinary(rng *rand.Rand, n, p int) *mat.Dense {
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			if rng.Intn(2) == 1 {
				x.Set(i, j, 1)
			}
		}
	}

	return x
}

// spread returns max over adjacent slices of ‖K_{t+1} - K_t‖.
func spread(k *matrix.Stack) float64 {
	var m float64
	for t := 0; t+1 < k.Len(); t++ {
		var d mat.Dense
		d.Sub(k.At(t+1), k.At(t))
		m = math.Max(m, mat.Norm(&d, 2))
	}

	return m
}

// markovReference runs the adjacent-lag kernel ADMM with a laplacian
// penalty, unit sample weights and a fixed rho for iters iterations, on
// plain per-slice matrices. w holds k(t, t+1). It returns Z_0.
func markovReference(tb testing.TB, s *matrix.Stack, w []float64, alpha, rho float64, iters int) []*mat.Dense {
	tb.Helper()
	init, err := loss.InitPrecision(s)
	require.NoError(tb, err)
	times, p := s.Len(), s.Dim()
	zero := func() *mat.Dense { return mat.NewDense(p, p, nil) }

	k := make([]*mat.Dense, times)
	z0 := make([]*mat.Dense, times)
	x0 := make([]*mat.Dense, times)
	for t := range k {
		k[t] = mat.DenseCopyOf(init.At(t))
		z0[t] = mat.DenseCopyOf(init.At(t))
		x0[t] = zero()
	}
	zL := make([]*mat.Dense, times-1)
	zR := make([]*mat.Dense, times-1)
	uL := make([]*mat.Dense, times-1)
	uR := make([]*mat.Dense, times-1)
	for i := range zL {
		zL[i], zR[i] = mat.DenseCopyOf(k[i]), mat.DenseCopyOf(k[i+1])
		uL[i], uR[i] = zero(), zero()
	}

	for it := 0; it < iters; it++ {
		for t := 0; t < times; t++ {
			a := zero()
			a.Sub(z0[t], x0[t])
			d := 1.0
			if t < times-1 {
				a.Add(a, zL[t])
				a.Sub(a, uL[t])
				d++
			}
			if t > 0 {
				a.Add(a, zR[t-1])
				a.Sub(a, uR[t-1])
				d++
			}
			a.Scale(1/d, a)
			lam := 1 / (rho * d)
			var b mat.Dense
			b.Scale(lam, s.At(t))
			a.Sub(a, &b)
			k[t] = logDetProx(tb, a, lam)
		}
		for t := 0; t < times; t++ {
			a := zero()
			a.Add(k[t], x0[t])
			z0[t] = softOffDiagonal(a, alpha/rho)
			x0[t].Add(x0[t], k[t])
			x0[t].Sub(x0[t], z0[t])
		}
		for i := range zL {
			aL, aR, sum, e := zero(), zero(), zero(), zero()
			aL.Add(k[i], uL[i])
			aR.Add(k[i+1], uR[i])
			sum.Add(aL, aR)
			e.Sub(aR, aL)
			e.Scale(1/(1+4*w[i]/rho), e)
			zL[i].Sub(sum, e)
			zL[i].Scale(0.5, zL[i])
			zR[i].Add(sum, e)
			zR[i].Scale(0.5, zR[i])
			uL[i].Add(uL[i], k[i])
			uL[i].Sub(uL[i], zL[i])
			uR[i].Add(uR[i], k[i+1])
			uR[i].Sub(uR[i], zR[i])
		}
	}

	return z0
}

// logDetProx solves K - lam·K⁻¹ = a through the eigendecomposition of a.
func logDetProx(tb testing.TB, a *mat.Dense, lam float64) *mat.Dense {
	tb.Helper()
	p, _ := a.Dims()
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	require.True(tb, eig.Factorize(sym, true))
	var q mat.Dense
	eig.VectorsTo(&q)
	vals := eig.Values(nil)
	for i, v := range vals {
		vals[i] = (v + math.Sqrt(v*v+4*lam)) / 2
	}
	var qd, out mat.Dense
	qd.Mul(&q, mat.NewDiagDense(p, vals))
	out.Mul(&qd, q.T())

	return &out
}

func softOffDiagonal(a *mat.Dense, lam float64) *mat.Dense {
	p, _ := a.Dims()
	out := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			v := a.At(i, j)
			if i != j {
				v = math.Copysign(math.Max(math.Abs(v)-lam, 0), v)
			}
			out.Set(i, j, v)
		}
	}

	return out
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
