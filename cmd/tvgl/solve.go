package main

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/admm"
	"github.com/katalvlaran/tvgl/config"
	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/fb"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/network"
)

// report is the YAML document printed by solve.
type report struct {
	Solver     string              `yaml:"solver"`
	RunID      string              `yaml:"run_id"`
	Status     convergence.Status  `yaml:"status"`
	NIter      int                 `yaml:"n_iter"`
	Rho        float64             `yaml:"rho,omitempty"`
	Gamma      float64             `yaml:"gamma,omitempty"`
	Lambda     float64             `yaml:"lamda,omitempty"`
	NaNChecks  int                 `yaml:"nan_checks,omitempty"`
	Precision  [][][]float64       `yaml:"precision"`
	Covariance [][][]float64       `yaml:"covariance"`
	Latent     [][][]float64       `yaml:"latent,omitempty"`
	History    convergence.History `yaml:"history,omitempty"`
	Networks   []networkReport     `yaml:"networks,omitempty"`

	precision *matrix.Stack
}

// networkReport summarises the graph of one time point; Added and Removed
// count the edge changes from the previous one.
type networkReport struct {
	Edges      []network.Edge `yaml:"edges"`
	Components int            `yaml:"components"`
	Added      int            `yaml:"added"`
	Removed    int            `yaml:"removed"`
}

func networks(k *matrix.Stack, threshold float64, ising bool) ([]networkReport, error) {
	sequence := network.Sequence
	if ising {
		sequence = network.InteractionSequence
	}
	gs, err := sequence(k, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]networkReport, len(gs))
	for t, g := range gs {
		out[t] = networkReport{Edges: g.Edges(), Components: len(g.Components())}
		if t == 0 {
			continue
		}
		added, removed, err := network.Diff(gs[t-1], g)
		if err != nil {
			return nil, err
		}
		out[t].Added, out[t].Removed = len(added), len(removed)
	}

	return out, nil
}

func solve(ctx context.Context, p *config.Problem, logger *slog.Logger, workers int) (report, error) {
	if p.Solver == config.SolverFB {
		return solveFB(ctx, p, logger, workers)
	}

	o, err := p.ADMMOptions()
	if err != nil {
		return report{}, err
	}
	o.Logger, o.ReturnHistory, o.Workers = logger, true, workers

	var res admm.Result
	switch p.Solver {
	case config.SolverIsing:
		xs, err := p.SampleMatrices()
		if err != nil {
			return report{}, err
		}
		x := make([]mat.Matrix, len(xs))
		for t := range xs {
			x[t] = xs[t]
		}
		res, err = admm.FitIsing(ctx, x, admm.WithOptions(o))
		if err != nil {
			return report{}, err
		}
	default:
		s, w, err := p.Covariance()
		if err != nil {
			return report{}, err
		}
		run := admm.SolveKernel
		if p.Solver == config.SolverLatent {
			run = admm.SolveLatent
		}
		if res, err = run(ctx, s, w, admm.WithOptions(o)); err != nil {
			return report{}, err
		}
	}

	return report{
		Solver:     p.Solver.String(),
		RunID:      res.RunID,
		Status:     res.Status,
		NIter:      res.NIter,
		Rho:        res.Rho,
		NaNChecks:  res.NaNChecks,
		Precision:  config.Nested(res.Precision),
		Covariance: config.Nested(res.Covariance),
		Latent:     config.Nested(res.Latent),
		History:    res.History,
		precision:  res.Precision,
	}, nil
}

func solveFB(ctx context.Context, p *config.Problem, logger *slog.Logger, workers int) (report, error) {
	o, err := p.FBOptions()
	if err != nil {
		return report{}, err
	}
	s, w, err := p.Covariance()
	if err != nil {
		return report{}, err
	}
	res, err := fb.Solve(ctx, s, w,
		fb.WithOptions(o),
		fb.WithLogger(logger),
		fb.WithWorkers(workers),
		fb.WithHistory(),
	)
	if err != nil {
		return report{}, err
	}

	return report{
		Solver:     p.Solver.String(),
		RunID:      res.RunID,
		Status:     res.Status,
		NIter:      res.NIter,
		Gamma:      res.Gamma,
		Lambda:     res.Lambda,
		NaNChecks:  res.NaNChecks,
		Precision:  config.Nested(res.Precision),
		Covariance: config.Nested(res.Covariance),
		History:    res.History,
		precision:  res.Precision,
	}, nil
}
