package loss

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/prox"
)

// Defaults for IsingFitter.
const (
	DefaultIsingStep    = 1.0
	DefaultIsingTol     = 1e-6
	DefaultIsingMaxIter = 200

	// isingMaxBacktrack bounds the step halvings inside one proximal step.
	isingMaxBacktrack = 60
)

// softplus returns log(1 + exp(z)) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}

	return math.Log1p(math.Exp(z))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)

	return e / (1 + e)
}

// ToSpins copies x mapping 0 to -1. Any value other than -1, 0 or 1 is an
// error.
func ToSpins(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			switch v := x.At(i, j); v {
			case 1:
				out.Set(i, j, 1)
			case 0, -1:
				out.Set(i, j, -1)
			default:
				return nil, fmt.Errorf("ToSpins: value %v at (%d,%d): %w", v, i, j, ErrInvalidLoss)
			}
		}
	}

	return out, nil
}

// fields returns η_ri = K_ii + Σ_{j≠i} K_ij·x_rj.
func fields(x *mat.Dense, k mat.Matrix) *mat.Dense {
	n, p := x.Dims()
	var eta mat.Dense
	eta.Mul(x, k) // Σ_j x_rj K_ji = Σ_j K_ij x_rj for symmetric K
	for r := 0; r < n; r++ {
		for i := 0; i < p; i++ {
			kii := k.At(i, i)
			eta.Set(r, i, eta.At(r, i)-kii*x.At(r, i)+kii)
		}
	}

	return &eta
}

// IsingLoss returns the negative mean log pseudo-likelihood of spins x
// (n×p, entries ±1) under the symmetric interaction matrix k:
//
//	(1/n)·Σ_r Σ_i log(1 + exp(-2·x_ri·η_ri)).
func IsingLoss(x *mat.Dense, k mat.Matrix) float64 {
	n, p := x.Dims()
	eta := fields(x, k)
	var s float64
	for r := 0; r < n; r++ {
		for i := 0; i < p; i++ {
			s += softplus(-2 * x.At(r, i) * eta.At(r, i))
		}
	}

	return s / float64(n)
}

// IsingGradient writes the symmetrized gradient of IsingLoss into dst.
func IsingGradient(dst *mat.Dense, x *mat.Dense, k mat.Matrix) {
	n, p := x.Dims()
	eta := fields(x, k)
	c := mat.NewDense(n, p, nil)
	for r := 0; r < n; r++ {
		for i := 0; i < p; i++ {
			xi := x.At(r, i)
			c.Set(r, i, -2*xi*sigmoid(-2*xi*eta.At(r, i))/float64(n))
		}
	}
	// G_ij = Σ_r c_ri·x_rj for i≠j, G_ii = Σ_r c_ri
	var g mat.Dense
	g.Mul(c.T(), x)
	for i := 0; i < p; i++ {
		var s float64
		for r := 0; r < n; r++ {
			s += c.At(r, i)
		}
		g.Set(i, i, s)
	}
	dst.Add(&g, g.T())
	dst.Scale(0.5, dst)
}

// IsingFitter solves the per-slice ADMM subproblem
//
//	min_K  L_t(K) + Alpha·‖K‖_od,1 + w/2·‖K - A‖²
//
// with proximal gradient and backtracking on the smooth part.
type IsingFitter struct {
	X       []*mat.Dense // spins, one n_t×p matrix per time point
	Alpha   float64
	Step    float64
	Tol     float64
	MaxIter int
}

// NewIsingFitter converts the data to spins and applies defaults.
func NewIsingFitter(x []mat.Matrix, alpha float64) (*IsingFitter, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("NewIsingFitter: no time points: %w", ErrInvalidLoss)
	}
	if alpha < 0 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("NewIsingFitter: alpha=%v: %w", alpha, ErrInvalidLoss)
	}
	_, p := x[0].Dims()
	spins := make([]*mat.Dense, len(x))
	for t, xt := range x {
		if _, c := xt.Dims(); c != p {
			return nil, fmt.Errorf("NewIsingFitter: time %d has %d variables, want %d: %w", t, c, p, ErrInvalidLoss)
		}
		s, err := ToSpins(xt)
		if err != nil {
			return nil, fmt.Errorf("NewIsingFitter: time %d: %w", t, err)
		}
		spins[t] = s
	}

	return &IsingFitter{
		X:       spins,
		Alpha:   alpha,
		Step:    DefaultIsingStep,
		Tol:     DefaultIsingTol,
		MaxIter: DefaultIsingMaxIter,
	}, nil
}

// Len returns the number of time points.
func (f *IsingFitter) Len() int { return len(f.X) }

// Dim returns the number of variables.
func (f *IsingFitter) Dim() int {
	_, p := f.X[0].Dims()

	return p
}

// Objective returns L_t(K) + Alpha·‖K‖_od,1.
func (f *IsingFitter) Objective(t int, k mat.Matrix) float64 {
	return IsingLoss(f.X[t], k) + f.Alpha*prox.L1OffDiagonal(k)
}

// FitSlice minimizes the slice subproblem around a with coupling weight w,
// starting from warm (zero when nil). The result is symmetric.
func (f *IsingFitter) FitSlice(ctx context.Context, t int, a *mat.Dense, w float64, warm *mat.Dense) (*mat.Dense, error) {
	p := f.Dim()
	x := f.X[t]
	k := mat.NewDense(p, p, nil)
	if warm != nil {
		k.Copy(warm)
	}

	smooth := func(m mat.Matrix) float64 {
		var d mat.Dense
		d.Sub(m, a)
		n := mat.Norm(&d, 2)

		return IsingLoss(x, m) + w/2*n*n
	}

	var (
		grad, trial, diff mat.Dense
		step              = f.Step
	)
	for it := 0; it < f.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		IsingGradient(&grad, x, k)
		diff.Sub(k, a)
		diff.Scale(w, &diff)
		grad.Add(&grad, &diff)

		hk := smooth(k)
		for bt := 0; bt < isingMaxBacktrack; bt++ {
			trial.Scale(-step, &grad)
			trial.Add(&trial, k)
			prox.SoftThresholdOffDiagonalDense(&trial, &trial, step*f.Alpha)
			diff.Sub(&trial, k)
			dn := mat.Norm(&diff, 2)
			if smooth(&trial) <= hk+mat.Sum(mulElem(&grad, &diff))+dn*dn/(2*step) {
				break
			}
			step /= 2
		}

		diff.Sub(&trial, k)
		k.Copy(&trial)
		if mat.Norm(&diff, 2) <= f.Tol*math.Max(1, mat.Norm(k, 2)) {
			break
		}
	}

	var sym mat.Dense
	sym.Add(k, k.T())
	sym.Scale(0.5, &sym)

	return &sym, nil
}

func mulElem(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)

	return &out
}
