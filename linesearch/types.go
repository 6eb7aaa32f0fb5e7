package linesearch

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/tvgl/matrix"
)

// Defaults shared by both controllers.
const (
	DefaultDelta   = 1e-4
	DefaultEps     = 0.5
	DefaultMaxIter = 200
)

// Problem is the composite objective F = f + g seen by the controllers.
//
// Loss must return +Inf outside the domain of f; trial points with an
// infinite loss are always rejected.
type Problem interface {
	Loss(x *matrix.Stack) float64
	Gradient(dst, x *matrix.Stack) error
	Penalty(x *matrix.Stack) float64
	Prox(dst, x *matrix.Stack, gamma float64) error
}

// Config carries the backtracking constants.
//
// Delta   – sufficient-decrease constant, > 0.
// Eps     – shrink factor applied on rejection, in (0, 1).
// MaxIter – rounds per call, >= 1.
type Config struct {
	Delta   float64 `yaml:"delta"`
	Eps     float64 `yaml:"eps"`
	MaxIter int     `yaml:"max_iter"`
}

// DefaultConfig returns Delta=1e-4, Eps=0.5, MaxIter=200.
func DefaultConfig() Config {
	return Config{Delta: DefaultDelta, Eps: DefaultEps, MaxIter: DefaultMaxIter}
}

// Validate reports ErrInvalidConfig for out-of-range constants.
func (c Config) Validate() error {
	if !(c.Delta > 0) || math.IsInf(c.Delta, 0) {
		return fmt.Errorf("delta=%v: %w", c.Delta, ErrInvalidConfig)
	}
	if !(c.Eps > 0 && c.Eps < 1) {
		return fmt.Errorf("eps=%v: %w", c.Eps, ErrInvalidConfig)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("max_iter=%d: %w", c.MaxIter, ErrInvalidConfig)
	}

	return nil
}

// Criterion selects the acceptance test of ChooseLambda.
type Criterion int

const (
	// CriterionB accepts when f(x + λd) - f(x) <= λ·(⟨d, ∇f⟩ + δ/γ·‖d‖²).
	CriterionB Criterion = iota
	// CriterionA accepts when ‖∇f(x + λd) - ∇f(x)‖ <= δ·‖λd‖/(γλ).
	CriterionA
	// CriterionC accepts when x + λd stays inside the cone spanned by the
	// eigenvalue bounds and F decreases by (1-δ)·λ·(g(y) - g(x) + ⟨d, ∇f⟩).
	CriterionC
)

// String returns the lowercase token of c.
func (c Criterion) String() string {
	switch c {
	case CriterionA:
		return "a"
	case CriterionB:
		return "b"
	case CriterionC:
		return "c"
	}

	return fmt.Sprintf("Criterion(%d)", int(c))
}

// ParseCriterion maps "a", "b", "c" (case-insensitive) to a Criterion.
func ParseCriterion(token string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "a":
		return CriterionA, nil
	case "b":
		return CriterionB, nil
	case "c":
		return CriterionC, nil
	}

	return 0, fmt.Errorf("ParseCriterion(%q): %w", token, ErrUnknownCriterion)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Criterion) UnmarshalText(b []byte) error {
	v, err := ParseCriterion(string(b))
	if err != nil {
		return err
	}
	*c = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Criterion) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
