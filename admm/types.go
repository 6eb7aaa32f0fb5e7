package admm

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/kernel"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
)

// SliceFitter solves the per-slice primal subproblem of SolveIsing:
//
//	K_t = argmin_K  loss_t(K) + alpha·‖K‖_od,1 + w/2·‖K - a‖²
//
// warm, when non-nil, is the previous K_t. FitSlice is called concurrently
// for distinct t and must return a symmetric Dim()×Dim() matrix.
type SliceFitter interface {
	Len() int
	Dim() int
	FitSlice(ctx context.Context, t int, a *mat.Dense, w float64, warm *mat.Dense) (*mat.Dense, error)
	Objective(t int, k mat.Matrix) float64
}

// Defaults for Options.
const (
	DefaultAlpha    = 0.01
	DefaultTau      = 1.0
	DefaultRho      = 1.0
	DefaultTol      = 1e-4
	DefaultRTol     = 1e-4
	DefaultMaxIter  = 100
	DefaultStopWhen = 1e-4
)

// Options configures the ADMM solvers.
//
// Alpha        – off-diagonal ℓ1 weight, >= 0.
// Tau          – trace weight on the latent component (SolveLatent), >= 0.
// Rho          – initial penalty parameter, > 0.
// Kernel       – T×T weights for ψ; nil means no coupling.
// KernelLatent – T×T weights for φ (SolveLatent); nil means no coupling.
// Psi, Phi     – lag penalties for K (resp. W).
// Tol, RTol    – absolute and relative tolerances, > 0 and >= 0.
// MaxIter      – iteration budget, >= 1.
// RhoOptions   – residual balancing; TauInc = TauDec = 1 freezes rho.
// StopAt       – optional target objective; stop when the relative gap is below StopWhen.
// MaxLag       – if > 0, lags above MaxLag are ignored (1 couples neighbours only).
type Options struct {
	Alpha        float64                `yaml:"alpha"`
	Tau          float64                `yaml:"tau"`
	Rho          float64                `yaml:"rho"`
	Kernel       *mat.Dense             `yaml:"-"`
	KernelLatent *mat.Dense             `yaml:"-"`
	Psi          prox.Penalty           `yaml:"psi"`
	Phi          prox.Penalty           `yaml:"phi"`
	Tol          float64                `yaml:"tol"`
	RTol         float64                `yaml:"rtol"`
	MaxIter      int                    `yaml:"max_iter"`
	RhoOptions   convergence.RhoOptions `yaml:"update_rho"`
	StopAt       *float64               `yaml:"stop_at"`
	StopWhen     float64                `yaml:"stop_when"`
	MaxLag       int                    `yaml:"max_lag"`
	Node         prox.NodeOptions       `yaml:"-"`

	// ComputeObjective evaluates the objective at every check; when false
	// Check.Obj is NaN and StopAt is ignored.
	ComputeObjective bool `yaml:"compute_objective"`
	ReturnHistory    bool `yaml:"return_history"`
	// Workers bounds per-slice and per-lag parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	Logger         *slog.Logger         `yaml:"-"`
	TracerProvider trace.TracerProvider `yaml:"-"`
}

// DefaultOptions returns alpha 0.01, tau 1, rho 1, laplacian penalties,
// tol = rtol = 1e-4, 100 iterations, default rho balancing and the objective
// computed at every iteration.
func DefaultOptions() Options {
	return Options{
		Alpha:            DefaultAlpha,
		Tau:              DefaultTau,
		Rho:              DefaultRho,
		Psi:              prox.Laplacian,
		Phi:              prox.Laplacian,
		Tol:              DefaultTol,
		RTol:             DefaultRTol,
		MaxIter:          DefaultMaxIter,
		RhoOptions:       convergence.DefaultRhoOptions(),
		StopWhen:         DefaultStopWhen,
		Node:             prox.DefaultNodeOptions(),
		ComputeObjective: true,
	}
}

// Option represents a functional option for configuring the solvers.
type Option func(*Options)

// WithOptions replaces the whole option set.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithAlpha sets the off-diagonal ℓ1 weight.
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

// WithTau sets the trace weight of the latent component.
func WithTau(tau float64) Option {
	return func(o *Options) { o.Tau = tau }
}

// WithRho sets the initial penalty parameter.
func WithRho(rho float64) Option {
	return func(o *Options) { o.Rho = rho }
}

// WithKernel sets the ψ kernel and penalty.
func WithKernel(k *mat.Dense, psi prox.Penalty) Option {
	return func(o *Options) {
		o.Kernel = k
		o.Psi = psi
	}
}

// WithLatentKernel sets the φ kernel and penalty.
func WithLatentKernel(k *mat.Dense, phi prox.Penalty) Option {
	return func(o *Options) {
		o.KernelLatent = k
		o.Phi = phi
	}
}

// WithTolerance sets Tol, RTol and MaxIter.
func WithTolerance(tol, rtol float64, maxIter int) Option {
	return func(o *Options) {
		o.Tol = tol
		o.RTol = rtol
		o.MaxIter = maxIter
	}
}

// WithRhoOptions sets the residual-balancing constants.
func WithRhoOptions(r convergence.RhoOptions) Option {
	return func(o *Options) { o.RhoOptions = r }
}

// WithStopAt stops once |obj - target|/|target| < when.
func WithStopAt(target, when float64) Option {
	return func(o *Options) {
		o.StopAt = &target
		o.StopWhen = when
	}
}

// WithMaxLag ignores lags above m.
func WithMaxLag(m int) Option {
	return func(o *Options) { o.MaxLag = m }
}

// WithoutObjective skips objective evaluation.
func WithoutObjective() Option {
	return func(o *Options) { o.ComputeObjective = false }
}

// WithHistory records every convergence check in Result.History.
func WithHistory() Option {
	return func(o *Options) { o.ReturnHistory = true }
}

// WithWorkers bounds parallelism.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithLogger routes diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTracerProvider routes spans to tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) { o.TracerProvider = tp }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func validateOptions(o Options, times int) error {
	bad := func(name string, v float64) error {
		return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidOption)
	}
	finiteNonNeg := func(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
	switch {
	case !finiteNonNeg(o.Alpha):
		return bad("alpha", o.Alpha)
	case !finiteNonNeg(o.Tau):
		return bad("tau", o.Tau)
	case !(o.Rho > 0) || math.IsInf(o.Rho, 0):
		return bad("rho", o.Rho)
	case !(o.Tol > 0):
		return bad("tol", o.Tol)
	case !finiteNonNeg(o.RTol):
		return bad("rtol", o.RTol)
	case o.StopAt != nil && !(o.StopWhen > 0):
		return bad("stop_when", o.StopWhen)
	}
	if o.MaxIter < 1 {
		return fmt.Errorf("max_iter=%d: %w", o.MaxIter, ErrInvalidOption)
	}
	if o.MaxLag < 0 || o.Workers < 0 {
		return fmt.Errorf("max_lag=%d workers=%d: %w", o.MaxLag, o.Workers, ErrInvalidOption)
	}
	if err := o.RhoOptions.Validate(); err != nil {
		return err
	}
	for _, p := range []prox.Penalty{o.Psi, o.Phi} {
		if _, err := prox.ParsePenalty(p.String()); err != nil {
			return err
		}
	}
	for _, k := range []*mat.Dense{o.Kernel, o.KernelLatent} {
		if k == nil {
			continue
		}
		if err := kernel.Validate(k, times); err != nil {
			return err
		}
	}

	return nil
}

// kernelOrIdentity returns k, or the identity (no coupling) when k is nil.
func kernelOrIdentity(k *mat.Dense, times int) *mat.Dense {
	if k == nil {
		return kernel.Identity(times)
	}

	return k
}

// Result is the outcome of an ADMM solve.
//
// Precision is the sparse consensus Z_0 for SolveKernel and SolveLatent and
// the primal K for SolveIsing; Covariance is its slice-wise pseudo-inverse.
// Latent is the low-rank W_0 (SolveLatent only).
//
// SolveKernel and SolveLatent check that Precision is positive definite:
// otherwise Status is Diverged and Precision is the last iterate that was.
// SolveIsing does not, since an interaction matrix need not be definite.
type Result struct {
	Precision  *matrix.Stack
	Covariance *matrix.Stack
	Latent     *matrix.Stack
	History    convergence.History
	NIter      int
	Status     convergence.Status
	// Rho is the penalty parameter after the last update.
	Rho       float64
	NaNChecks int
	RunID     string
}
