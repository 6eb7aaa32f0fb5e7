package fb

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/linesearch"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/prox"
)

// ChooseMode selects which step parameters are backtracked.
type ChooseMode int

const (
	// ChooseGamma backtracks on γ only.
	ChooseGamma ChooseMode = iota
	// ChooseLambda backtracks on λ only.
	ChooseLambda
	// ChooseBoth backtracks on γ, then on λ.
	ChooseBoth
	// ChooseFixed keeps the initial γ and λ.
	ChooseFixed
)

func (c ChooseMode) String() string {
	switch c {
	case ChooseGamma:
		return "gamma"
	case ChooseLambda:
		return "lamda"
	case ChooseBoth:
		return "both"
	case ChooseFixed:
		return "fixed"
	}

	return fmt.Sprintf("ChooseMode(%d)", int(c))
}

func (c ChooseMode) gamma() bool  { return c == ChooseGamma || c == ChooseBoth }
func (c ChooseMode) lambda() bool { return c == ChooseLambda || c == ChooseBoth }

// ParseChooseMode maps gamma, lamda (or lambda), both, fixed to a ChooseMode.
func ParseChooseMode(token string) (ChooseMode, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "gamma":
		return ChooseGamma, nil
	case "lamda", "lambda":
		return ChooseLambda, nil
	case "both":
		return ChooseBoth, nil
	case "fixed":
		return ChooseFixed, nil
	}

	return 0, fmt.Errorf("ParseChooseMode(%q): %w", token, ErrUnknownChooseMode)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChooseMode) UnmarshalText(b []byte) error {
	v, err := ParseChooseMode(string(b))
	if err != nil {
		return err
	}
	*c = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c ChooseMode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Defaults for Options.
const (
	DefaultAlpha    = 0.01
	DefaultBeta     = 1.0
	DefaultTimeNorm = 1.0
	DefaultGamma    = 1.0
	DefaultLambda   = 1.0
	DefaultTol      = 1e-4
	DefaultMaxIter  = 100
	DefaultVareps   = 1e-5
)

// Options configures Solve.
//
// Alpha      – off-diagonal ℓ1 weight, >= 0.
// Beta       – temporal smoothness weight, >= 0.
// TimeNorm   – order p of the temporal norm: 1, 2 or +Inf.
// Gamma      – initial forward step, > 0.
// Lambda     – initial relaxation weight, > 0.
// LineSearch – Delta, Eps and per-call rounds of both controllers.
// Criterion  – acceptance test of the λ controller.
// Choose     – which parameters backtrack.
// Tol        – stopping tolerance, > 0.
// MaxIter    – iteration budget, >= 1.
// Vareps     – ridge weight in the loss, >= 0.
type Options struct {
	Alpha      float64              `yaml:"alpha"`
	Beta       float64              `yaml:"beta"`
	TimeNorm   float64              `yaml:"time_norm"`
	Gamma      float64              `yaml:"gamma"`
	Lambda     float64              `yaml:"lamda"`
	LineSearch linesearch.Config    `yaml:"linesearch"`
	Criterion  linesearch.Criterion `yaml:"criterion"`
	Choose     ChooseMode           `yaml:"choose"`
	Tol        float64              `yaml:"tol"`
	MaxIter    int                  `yaml:"max_iter"`
	Vareps     float64              `yaml:"vareps"`

	Debug         bool `yaml:"debug"`
	ReturnHistory bool `yaml:"return_history"`
	// Workers bounds per-slice parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	Logger         *slog.Logger         `yaml:"-"`
	TracerProvider trace.TracerProvider `yaml:"-"`
}

// DefaultOptions returns the documented defaults: alpha 0.01, beta 1,
// time norm 1, γ = λ = 1, delta 1e-4, eps 0.5, 200 rounds per line search,
// criterion b, choose gamma, tol 1e-4, 100 iterations, vareps 1e-5.
func DefaultOptions() Options {
	return Options{
		Alpha:      DefaultAlpha,
		Beta:       DefaultBeta,
		TimeNorm:   DefaultTimeNorm,
		Gamma:      DefaultGamma,
		Lambda:     DefaultLambda,
		LineSearch: linesearch.DefaultConfig(),
		Criterion:  linesearch.CriterionB,
		Choose:     ChooseGamma,
		Tol:        DefaultTol,
		MaxIter:    DefaultMaxIter,
		Vareps:     DefaultVareps,
	}
}

// Option represents a functional option for configuring Solve.
type Option func(*Options)

// WithOptions replaces the whole option set, typically one decoded from a
// configuration file.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithAlpha sets the off-diagonal ℓ1 weight.
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

// WithBeta sets the temporal smoothness weight.
func WithBeta(beta float64) Option {
	return func(o *Options) { o.Beta = beta }
}

// WithTimeNorm sets the temporal norm order.
func WithTimeNorm(p float64) Option {
	return func(o *Options) { o.TimeNorm = p }
}

// WithChoose selects the backtracked parameters.
func WithChoose(c ChooseMode) Option {
	return func(o *Options) { o.Choose = c }
}

// WithCriterion selects the λ acceptance test.
func WithCriterion(c linesearch.Criterion) Option {
	return func(o *Options) { o.Criterion = c }
}

// WithSteps sets the initial γ and λ.
func WithSteps(gamma, lambda float64) Option {
	return func(o *Options) {
		o.Gamma = gamma
		o.Lambda = lambda
	}
}

// WithLineSearch sets the backtracking constants.
func WithLineSearch(cfg linesearch.Config) Option {
	return func(o *Options) { o.LineSearch = cfg }
}

// WithTolerance sets Tol and MaxIter.
func WithTolerance(tol float64, maxIter int) Option {
	return func(o *Options) {
		o.Tol = tol
		o.MaxIter = maxIter
	}
}

// WithVareps sets the ridge weight.
func WithVareps(v float64) Option {
	return func(o *Options) { o.Vareps = v }
}

// WithHistory records every convergence check in Result.History.
func WithHistory() Option {
	return func(o *Options) { o.ReturnHistory = true }
}

// WithDebug disables the stopping rule.
func WithDebug() Option {
	return func(o *Options) { o.Debug = true }
}

// WithWorkers bounds per-slice parallelism.
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

func validateOptions(o Options) error {
	nonNeg := func(name string, v float64) error {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidOption)
		}
		return nil
	}
	pos := func(name string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidOption)
		}
		return nil
	}
	for _, err := range []error{
		nonNeg("alpha", o.Alpha),
		nonNeg("beta", o.Beta),
		nonNeg("vareps", o.Vareps),
		pos("gamma", o.Gamma),
		pos("lamda", o.Lambda),
		pos("tol", o.Tol),
	} {
		if err != nil {
			return err
		}
	}
	if o.MaxIter < 1 {
		return fmt.Errorf("max_iter=%d: %w", o.MaxIter, ErrInvalidOption)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers=%d: %w", o.Workers, ErrInvalidOption)
	}
	if err := prox.ValidateTimeNorm(o.TimeNorm); err != nil {
		return err
	}
	if err := o.LineSearch.Validate(); err != nil {
		return err
	}
	if _, err := linesearch.ParseCriterion(o.Criterion.String()); err != nil {
		return err
	}
	if _, err := ParseChooseMode(o.Choose.String()); err != nil {
		return err
	}

	return nil
}

// Result is the outcome of Solve.
//
// Precision holds the final iterate (the last positive definite one when
// Status is Diverged); Covariance is its slice-wise inverse.
type Result struct {
	Precision   *matrix.Stack
	Covariance  *matrix.Stack
	History     convergence.History
	NIter       int
	NLineSearch int
	Status      convergence.Status
	// Gamma and Lambda are the step parameters of the last iteration.
	Gamma  float64
	Lambda float64
	// NaNChecks counts convergence checks with a NaN residual.
	NaNChecks int
	RunID     string
}

// iterState is the mutable state carried across iterations.
type iterState struct {
	gamma       float64
	lambda      float64
	maxResidual float64
	nLineSearch int
}
