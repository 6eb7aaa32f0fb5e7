package convergence

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrInvalidRhoOptions is returned by RhoOptions.Validate.
var ErrInvalidRhoOptions = errors.New("convergence: invalid rho options")

// Status is the terminal state of a solve.
type Status int

const (
	// MaxIterReached means the budget ran out before the stopping rule held.
	// The returned iterate does not necessarily satisfy the tolerances.
	MaxIterReached Status = iota
	// Converged means the stopping rule held.
	Converged
	// Diverged means an iterate lost positive definiteness (or the
	// numerics broke down) and the last valid iterate was returned.
	Diverged
	// TargetReached means the objective came within the requested relative
	// gap of a caller-supplied target value.
	TargetReached
)

func (s Status) String() string {
	switch s {
	case MaxIterReached:
		return "max_iter_reached"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case TargetReached:
		return "target_reached"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status as its string form.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Check is one entry of the convergence record.
type Check struct {
	Iteration int     `json:"iteration" yaml:"iteration"`
	Obj       float64 `json:"obj" yaml:"obj"`
	RNorm     float64 `json:"rnorm" yaml:"rnorm"`
	SNorm     float64 `json:"snorm" yaml:"snorm"`
	EPri      float64 `json:"e_pri" yaml:"e_pri"`
	EDual     float64 `json:"e_dual" yaml:"e_dual"`
	Rho       float64 `json:"rho,omitempty" yaml:"rho,omitempty"`
}

// Converged reports rnorm <= e_pri and snorm <= e_dual. NaN never converges.
func (c Check) Converged() bool {
	return c.RNorm <= c.EPri && c.SNorm <= c.EDual
}

// HasNaN reports whether either residual is NaN.
func (c Check) HasNaN() bool {
	return math.IsNaN(c.RNorm) || math.IsNaN(c.SNorm)
}

// LogValue renders the check as a structured slog group.
func (c Check) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("iteration", c.Iteration),
		slog.Float64("obj", c.Obj),
		slog.Float64("rnorm", c.RNorm),
		slog.Float64("snorm", c.SNorm),
		slog.Float64("eps_pri", c.EPri),
		slog.Float64("eps_dual", c.EDual),
	)
}

// History is the append-only convergence record.
type History []Check

// Last returns the most recent check and false when the history is empty.
func (h History) Last() (Check, bool) {
	if len(h) == 0 {
		return Check{}, false
	}

	return h[len(h)-1], true
}

// Objectives extracts the objective trace.
func (h History) Objectives() []float64 {
	out := make([]float64, len(h))
	for i, c := range h {
		out[i] = c.Obj
	}

	return out
}

// Tolerance returns sqrt(n)·tol + rtol·scale, the Boyd et al. absolute plus
// relative threshold for a residual over n entries.
func Tolerance(n int, tol, rtol, scale float64) float64 {
	return math.Sqrt(float64(n))*tol + rtol*scale
}

// WithinTarget reports |obj - target| / |target| < when.
// A zero target uses the absolute gap.
func WithinTarget(obj, target, when float64) bool {
	gap := math.Abs(obj - target)
	if target != 0 {
		gap /= math.Abs(target)
	}

	return gap < when
}
