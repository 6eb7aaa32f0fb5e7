package admm

import (
	"log/slog"
	"math"

	"github.com/katalvlaran/tvgl/convergence"
	"github.com/katalvlaran/tvgl/matrix"
	"github.com/katalvlaran/tvgl/telemetry"
)

// session applies the stopping and rho rules shared by every solver.
type session struct {
	run *telemetry.Run
	o   Options
	res *Result

	// valid is the last precision offered with every slice positive
	// definite; nil until one is offered.
	valid *matrix.Stack
}

// record stores c and reports whether the solver must stop; res.Status is
// set accordingly. NaN residuals are counted and never stop the loop.
func (s *session) record(c convergence.Check) bool {
	if s.run.Check(c) {
		s.res.NaNChecks++
	}
	if s.o.ReturnHistory {
		s.res.History = append(s.res.History, c)
	}

	switch {
	case s.o.StopAt != nil && s.o.ComputeObjective && convergence.WithinTarget(c.Obj, *s.o.StopAt, s.o.StopWhen):
		s.res.Status = convergence.TargetReached
	case c.Converged():
		s.res.Status = convergence.Converged
	default:
		return false
	}

	return true
}

// nextRho balances the residuals of c. When rho changes, rescale receives
// rho/next so the caller can keep its scaled duals consistent.
func (s *session) nextRho(rho float64, c convergence.Check, rescale func(f float64)) float64 {
	next := convergence.UpdateRho(rho, c.RNorm, c.SNorm, s.o.RhoOptions)
	if next != rho {
		rescale(rho / next)
		s.run.Rho(next)
	}

	return next
}

func (s *session) exhausted() {
	s.run.Logger().Warn("objective did not converge", slog.Int("max_iter", s.o.MaxIter))
}

// objective returns f() or NaN when objective evaluation is disabled.
func (s *session) objective(f func() float64) float64 {
	if !s.o.ComputeObjective {
		return math.NaN()
	}

	return f()
}

// offer snapshots k when every slice is positive definite.
func (s *session) offer(k *matrix.Stack) {
	if k.FirstNotPositiveDefinite() >= 0 {
		return
	}
	if s.valid == nil {
		s.valid = k.Clone()
		return
	}
	s.valid.CopyFrom(k)
}

// settle returns the precision to report. A k with a slice that is not
// positive definite marks the run Diverged and is replaced by the last
// valid snapshot, if any.
func (s *session) settle(k *matrix.Stack) *matrix.Stack {
	bad := k.FirstNotPositiveDefinite()
	if bad < 0 {
		return k
	}
	s.res.Status = convergence.Diverged
	s.run.Logger().Warn("precision is not positive definite",
		slog.Int("slice", bad),
		slog.Bool("fallback", s.valid != nil),
	)
	if s.valid == nil {
		return k
	}

	return s.valid
}
