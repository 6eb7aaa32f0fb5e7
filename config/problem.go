package config

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/tvgl/admm"
	"github.com/katalvlaran/tvgl/fb"
	"github.com/katalvlaran/tvgl/kernel"
	"github.com/katalvlaran/tvgl/matrix"
)

// Solver selects the algorithm a problem file runs.
type Solver int

const (
	// SolverKernel is the kernel lag-consensus ADMM (the default).
	SolverKernel Solver = iota
	// SolverFB is the forward-backward solver.
	SolverFB
	// SolverLatent is the latent-variable ADMM.
	SolverLatent
	// SolverIsing is the Ising lag-consensus ADMM on binary samples.
	SolverIsing
)

func (s Solver) String() string {
	switch s {
	case SolverKernel:
		return "kernel"
	case SolverFB:
		return "fb"
	case SolverLatent:
		return "latent"
	case SolverIsing:
		return "ising"
	}

	return fmt.Sprintf("Solver(%d)", int(s))
}

// ParseSolver maps a token (case-insensitive) to a Solver.
func ParseSolver(token string) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "kernel", "admm":
		return SolverKernel, nil
	case "fb", "forward_backward":
		return SolverFB, nil
	case "latent":
		return SolverLatent, nil
	case "ising":
		return SolverIsing, nil
	}

	return 0, fmt.Errorf("ParseSolver(%q): %w", token, ErrUnknownSolver)
}

// UnmarshalText decodes a solver token.
func (s *Solver) UnmarshalText(b []byte) error {
	v, err := ParseSolver(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}

// MarshalText returns the canonical token.
func (s Solver) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// KernelSpec describes a T×T kernel either by family or explicitly.
type KernelSpec struct {
	Name   string      `yaml:"name"`
	Theta  float64     `yaml:"theta"`
	Period float64     `yaml:"period"`
	Times  []float64   `yaml:"times"`
	Matrix [][]float64 `yaml:"matrix"`
}

// Build evaluates the kernel for t time points. Times defaults to
// 0 … t-1; an explicit Matrix takes precedence over Name.
func (k *KernelSpec) Build(t int) (*mat.Dense, error) {
	if k == nil {
		return nil, nil
	}
	if k.Matrix != nil {
		m, err := dense(k.Matrix)
		if err != nil {
			return nil, fmt.Errorf("kernel matrix: %w", err)
		}
		if err := kernel.Validate(m, t); err != nil {
			return nil, err
		}

		return m, nil
	}
	f, err := kernel.Lookup(k.Name, k.Period)
	if err != nil {
		return nil, err
	}
	times := k.Times
	if times == nil {
		times = kernel.Times(t)
	}
	if len(times) != t {
		return nil, fmt.Errorf("kernel: %d times for %d time points: %w", len(times), t, kernel.ErrKernelSize)
	}

	return f(k.Theta, times)
}

// Problem is a decoded problem file.
type Problem struct {
	Solver       Solver        `yaml:"solver"`
	Covariances  [][][]float64 `yaml:"covariances"`
	Samples      [][][]float64 `yaml:"samples"`
	NSamples     []float64     `yaml:"n_samples"`
	Kernel       *KernelSpec   `yaml:"kernel"`
	KernelLatent *KernelSpec   `yaml:"kernel_latent"`
	FB           yaml.Node     `yaml:"fb"`
	ADMM         yaml.Node     `yaml:"admm"`
}

// Load reads and parses the problem file at path.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the problem file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Parse decodes a problem from YAML and checks that data is present.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse the problem: %w", err)
	}
	if p.Covariances == nil && p.Samples == nil {
		return nil, ErrNoData
	}
	if p.Solver == SolverIsing && p.Samples == nil {
		return nil, fmt.Errorf("ising needs samples: %w", ErrNoData)
	}

	return &p, nil
}

// Times returns the number of time points.
func (p *Problem) Times() int {
	if p.Covariances != nil {
		return len(p.Covariances)
	}

	return len(p.Samples)
}

// Covariance returns the empirical covariance stack and the sample
// weights. Covariances given directly are used as is; otherwise each slice
// of Samples is centred and its maximum-likelihood covariance (divisor n)
// is used, with n as the default weight.
func (p *Problem) Covariance() (*matrix.Stack, []float64, error) {
	if p.Covariances != nil {
		ms := make([]mat.Matrix, len(p.Covariances))
		for t, c := range p.Covariances {
			m, err := dense(c)
			if err != nil {
				return nil, nil, fmt.Errorf("covariances[%d]: %w", t, err)
			}
			ms[t] = m
		}
		s, err := matrix.StackOf(ms...)
		if err != nil {
			return nil, nil, fmt.Errorf("covariances: %w", err)
		}

		return s, p.NSamples, nil
	}

	xs, err := p.SampleMatrices()
	if err != nil {
		return nil, nil, err
	}
	ms := make([]mat.Matrix, len(xs))
	weights := make([]float64, len(xs))
	for t, x := range xs {
		n, _ := x.Dims()
		var c mat.SymDense
		stat.CovarianceMatrix(&c, x, nil)
		if n > 1 {
			c.ScaleSym(float64(n-1)/float64(n), &c)
		}
		ms[t], weights[t] = &c, float64(n)
	}
	s, err := matrix.StackOf(ms...)
	if err != nil {
		return nil, nil, fmt.Errorf("samples: %w", err)
	}
	if p.NSamples != nil {
		weights = p.NSamples
	}

	return s, weights, nil
}

// SampleMatrices returns Samples as one n_t×p matrix per time point.
func (p *Problem) SampleMatrices() ([]*mat.Dense, error) {
	if p.Samples == nil {
		return nil, ErrNoData
	}
	out := make([]*mat.Dense, len(p.Samples))
	for t, x := range p.Samples {
		m, err := dense(x)
		if err != nil {
			return nil, fmt.Errorf("samples[%d]: %w", t, err)
		}
		out[t] = m
	}

	return out, nil
}

// FBOptions decodes the fb section over fb.DefaultOptions().
func (p *Problem) FBOptions() (fb.Options, error) {
	o := fb.DefaultOptions()
	if p.FB.Kind != 0 {
		if err := p.FB.Decode(&o); err != nil {
			return o, fmt.Errorf("fb: %w", err)
		}
	}

	return o, nil
}

// ADMMOptions decodes the admm section over admm.DefaultOptions() and
// builds both kernels for the problem's time points.
func (p *Problem) ADMMOptions() (admm.Options, error) {
	o := admm.DefaultOptions()
	if p.ADMM.Kind != 0 {
		if err := p.ADMM.Decode(&o); err != nil {
			return o, fmt.Errorf("admm: %w", err)
		}
	}
	t := p.Times()
	var err error
	if o.Kernel, err = p.Kernel.Build(t); err != nil {
		return o, fmt.Errorf("kernel: %w", err)
	}
	if o.KernelLatent, err = p.KernelLatent.Build(t); err != nil {
		return o, fmt.Errorf("kernel_latent: %w", err)
	}

	return o, nil
}

// dense converts a rectangular nested slice to a matrix.
func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix: %w", ErrShape)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, r := range rows {
		if len(r) != c {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(r), c, ErrShape)
		}
		data = append(data, r...)
	}

	return mat.NewDense(len(rows), c, data), nil
}

// Nested converts a stack to T×p×p nested slices for encoding.
func Nested(s *matrix.Stack) [][][]float64 {
	if s == nil {
		return nil
	}
	p := s.Dim()
	out := make([][][]float64, s.Len())
	for t := range out {
		raw := s.SliceData(t)
		out[t] = make([][]float64, p)
		for i := range out[t] {
			out[t][i] = append([]float64(nil), raw[i*p:(i+1)*p]...)
		}
	}

	return out
}
