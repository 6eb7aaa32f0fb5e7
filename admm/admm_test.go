package admm_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/admm"
	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/kernel"
	"github.com/katalvlaran/tvgl/loss"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
)

// frozen keeps rho constant.
var frozen = convergence.RhoOptions{Mu: 10, TauInc: 1, TauDec: 1}

func TestSolveKernel_MatchesAdjacentLagReference(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(3, 0.3), 3, 100)
	const alpha, rho = 0.05, 1.5
	adjacent := mat.NewDense(3, 3, []float64{
		1, 0.7, 0,
		0.7, 1, 0.7,
		0, 0.7, 1,
	})
	full := mat.NewDense(3, 3, []float64{
		1, 0.7, 0.5,
		0.7, 1, 0.7,
		0.5, 0.7, 1,
	})

	for _, iters := range []int{1, 2, 5} {
		want := markovReference(t, s, []float64{0.7, 0.7}, alpha, rho, iters)
		for name, opts := range map[string][]admm.Option{
			"zero lag-2 weight": {admm.WithKernel(adjacent, prox.Laplacian)},
			"max lag 1":         {admm.WithKernel(full, prox.Laplacian), admm.WithMaxLag(1)},
		} {
			opts = append(opts,
				admm.WithAlpha(alpha),
				admm.WithRho(rho),
				admm.WithRhoOptions(frozen),
				admm.WithTolerance(1e-300, 0, iters),
			)
			res, err := admm.SolveKernel(context.Background(), s, nil, opts...)
			require.NoError(t, err)
			require.Equal(t, iters, res.NIter, name)
			for k := 0; k < 3; k++ {
				assert.True(t, mat.EqualApprox(want[k], res.Precision.At(k), 1e-9),
					"%s: slice %d after %d iterations", name, k, iters)
			}
		}
	}
}

func TestSolveKernel_SingleTimePointIsGraphicalLasso(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(4, 0.3), 1, 500)
	const alpha = 0.1
	res, err := admm.SolveKernel(context.Background(), s, nil,
		admm.WithAlpha(alpha),
		admm.WithTolerance(1e-8, 1e-10, 5000),
		admm.WithHistory(),
	)
	require.NoError(t, err)
	require.Equal(t, convergence.Converged, res.Status)
	assert.Less(t, kktGap(t, s.At(0), res.Precision.At(0), alpha), 1e-4)
	assert.Len(t, res.History, res.NIter)

	last, ok := res.History.Last()
	require.True(t, ok)
	assert.True(t, last.Converged())
}

func TestSolveKernel_RecoversChainSupport(t *testing.T) {
	truths := shiftingChain()
	s := sampleSequence(t, truths, 2000)
	k, err := kernel.RBF(1, kernel.Times(3))
	require.NoError(t, err)
	k.Scale(0.02, k)

	res, err := admm.SolveKernel(context.Background(), s, nil,
		admm.WithAlpha(0.05),
		admm.WithKernel(k, prox.L1),
		admm.WithTolerance(1e-3, 1e-3, 100),
	)
	require.NoError(t, err)
	require.Equal(t, convergence.Converged, res.Status, "n_iter=%d", res.NIter)
	assert.Equal(t, 0, supportErrors(res.Precision, truths, 0.1))
	assert.Equal(t, -1, res.Precision.FirstNotPositiveDefinite())
}

func TestSolveKernel_CouplingShrinksTemporalChange(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(4, 0.4), 4, 60)
	run := func(k *mat.Dense) admm.Result {
		res, err := admm.SolveKernel(context.Background(), s, nil,
			admm.WithAlpha(0.05),
			admm.WithKernel(k, prox.Laplacian),
			admm.WithTolerance(1e-6, 1e-6, 500),
		)
		require.NoError(t, err)
		require.NotEqual(t, convergence.Diverged, res.Status)
		require.Equal(t, -1, res.Precision.FirstNotPositiveDefinite())
		return res
	}

	free := run(nil)
	rbf, err := kernel.RBF(10, kernel.Times(4))
	require.NoError(t, err)
	rbf.Scale(50, rbf)
	coupled := run(rbf)

	assert.Less(t, spread(coupled.Precision), spread(free.Precision)/2)
	assert.Equal(t, 4, coupled.Covariance.Len())
	assert.NotEmpty(t, coupled.RunID)
}

func TestSolveKernel_PenaltiesRun(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(3, 0.3), 3, 80)
	k, err := kernel.Constant(1, kernel.Times(3))
	require.NoError(t, err)
	for _, pen := range []prox.Penalty{prox.Laplacian, prox.L1, prox.L2, prox.LInf, prox.Node} {
		t.Run(pen.String(), func(t *testing.T) {
			res, err := admm.SolveKernel(context.Background(), s, nil,
				admm.WithKernel(k, pen),
				admm.WithTolerance(1e-4, 1e-4, 50),
				admm.WithHistory(),
			)
			require.NoError(t, err)
			require.NotEqual(t, convergence.Diverged, res.Status)
			require.NoError(t, matrix.ValidateFinite(res.Precision))
			for _, c := range res.History {
				assert.False(t, math.IsNaN(c.Obj))
			}
		})
	}
}

func TestSolveKernel_StopAt(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(3, 0.3), 2, 80)
	base := []admm.Option{admm.WithTolerance(1e-300, 0, 20), admm.WithHistory()}

	ref, err := admm.SolveKernel(context.Background(), s, nil, base...)
	require.NoError(t, err)
	require.Len(t, ref.History, 20)
	target := ref.History[5].Obj

	res, err := admm.SolveKernel(context.Background(), s, nil,
		append(base, admm.WithStopAt(target, 1e-12))...)
	require.NoError(t, err)
	assert.Equal(t, convergence.TargetReached, res.Status)
	assert.LessOrEqual(t, res.NIter, 6)

	// without objective evaluation the target is never checked
	res, err = admm.SolveKernel(context.Background(), s, nil,
		append(base, admm.WithStopAt(target, 1e-12), admm.WithoutObjective())...)
	require.NoError(t, err)
	assert.Equal(t, convergence.MaxIterReached, res.Status)
	assert.True(t, math.IsNaN(res.History[0].Obj))
}

func TestSolveLatent_LatentIsPositiveSemidefinite(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(4, 0.4), 3, 100)
	k, err := kernel.RBF(1, kernel.Times(3))
	require.NoError(t, err)
	res, err := admm.SolveLatent(context.Background(), s, nil,
		admm.WithAlpha(0.05),
		admm.WithTau(0.1),
		admm.WithKernel(k, prox.Laplacian),
		admm.WithLatentKernel(k, prox.L1),
		admm.WithTolerance(1e-5, 1e-5, 300),
	)
	require.NoError(t, err)
	require.NotNil(t, res.Latent)
	require.NotEqual(t, convergence.Diverged, res.Status)
	for i := 0; i < 3; i++ {
		e, err := matrix.EigenSym(res.Latent.At(i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, e.Min(), -1e-9, "slice %d", i)
	}
}

func TestSolveLatent_LargeTauMatchesKernel(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(4, 0.3), 3, 200)
	k, err := kernel.RBF(2, kernel.Times(3))
	require.NoError(t, err)
	common := []admm.Option{
		admm.WithAlpha(0.05),
		admm.WithKernel(k, prox.Laplacian),
		admm.WithTolerance(1e-8, 1e-8, 5000),
	}

	latent, err := admm.SolveLatent(context.Background(), s, nil, append(common, admm.WithTau(1e9))...)
	require.NoError(t, err)
	assert.Zero(t, latent.Latent.MaxAbs())

	plain, err := admm.SolveKernel(context.Background(), s, nil, common...)
	require.NoError(t, err)
	assert.InDelta(t, 0, matrix.Distance(latent.Precision, plain.Precision), 1e-3)
}

func TestFitIsing_UncoupledSlicesAreIndependentFits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := []mat.Matrix{randomBinary(rng, 80, 3), randomBinary(rng, 80, 3), randomBinary(rng, 80, 3)}

	res, err := admm.FitIsing(context.Background(), x, admm.WithAlpha(0.02))
	require.NoError(t, err)
	assert.Equal(t, convergence.Converged, res.Status)
	assert.Equal(t, 1, res.NIter)
	require.NoError(t, matrix.ValidateSymmetric(res.Precision, 1e-12))

	f, err := loss.NewIsingFitter(x, 0.02)
	require.NoError(t, err)
	for i := range x {
		want, err := f.FitSlice(context.Background(), i, mat.NewDense(3, 3, nil), 0, nil)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(want, res.Precision.At(i), 1e-12), "slice %d", i)
	}
}

func TestSolveIsing_CouplingShrinksTemporalChange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := []mat.Matrix{randomBinary(rng, 60, 3), randomBinary(rng, 60, 3), randomBinary(rng, 60, 3)}
	f, err := loss.NewIsingFitter(x, 0.01)
	require.NoError(t, err)

	free, err := admm.SolveIsing(context.Background(), f)
	require.NoError(t, err)

	k, err := kernel.Constant(20, kernel.Times(3))
	require.NoError(t, err)
	coupled, err := admm.SolveIsing(context.Background(), f,
		admm.WithKernel(k, prox.Laplacian),
		admm.WithTolerance(1e-5, 1e-5, 200),
	)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateSymmetric(coupled.Precision, 1e-12))
	assert.Less(t, spread(coupled.Precision), spread(free.Precision)/2)
}

type emptyFitter struct{}

func (emptyFitter) Len() int { return 0 }
func (emptyFitter) Dim() int { return 0 }
func (emptyFitter) FitSlice(context.Context, int, *mat.Dense, float64, *mat.Dense) (*mat.Dense, error) {
	return nil, nil
}
func (emptyFitter) Objective(int, mat.Matrix) float64 { return 0 }

func TestSolve_ConfigurationErrors(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(3, 0.3), 3, 50)
	ctx := context.Background()

	tests := []struct {
		name string
		opt  admm.Option
		want error
	}{
		{"negative alpha", admm.WithAlpha(-1), admm.ErrInvalidOption},
		{"zero rho", admm.WithRho(0), admm.ErrInvalidOption},
		{"zero tol", admm.WithTolerance(0, 1e-4, 10), admm.ErrInvalidOption},
		{"no iterations", admm.WithTolerance(1e-4, 1e-4, 0), admm.ErrInvalidOption},
		{"negative max lag", admm.WithMaxLag(-1), admm.ErrInvalidOption},
		{"rho options", admm.WithRhoOptions(convergence.RhoOptions{Mu: 10, TauInc: 0.5, TauDec: 2}), convergence.ErrInvalidRhoOptions},
		{"kernel size", admm.WithKernel(kernel.Identity(2), prox.Laplacian), kernel.ErrKernelSize},
		{"psi", admm.WithKernel(nil, prox.Penalty(99)), prox.ErrUnknownPenalty},
		{"phi", admm.WithLatentKernel(nil, prox.Penalty(99)), prox.ErrUnknownPenalty},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := admm.SolveKernel(ctx, s, nil, tc.opt)
			require.ErrorIs(t, err, tc.want)
			_, err = admm.SolveLatent(ctx, s, nil, tc.opt)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := admm.SolveKernel(ctx, s, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = admm.SolveIsing(ctx, emptyFitter{})
	require.ErrorIs(t, err, admm.ErrFitterShape)
}

func TestSolve_Cancelled(t *testing.T) {
	s := sampleCovariances(t, chainPrecision(3, 0.3), 2, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := admm.SolveKernel(ctx, s, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res.Precision)

	res, err = admm.SolveLatent(ctx, s, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res.Latent)
}
