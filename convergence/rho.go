package convergence

import "fmt"

// Residual-balancing defaults (Boyd et al., §3.4.1).
const (
	DefaultMu     = 10.0
	DefaultTauInc = 2.0
	DefaultTauDec = 2.0
)

// RhoOptions configures UpdateRho. TauInc = TauDec = 1 freezes rho.
type RhoOptions struct {
	Mu     float64 `yaml:"mu"`
	TauInc float64 `yaml:"tau_inc"`
	TauDec float64 `yaml:"tau_dec"`
}

// DefaultRhoOptions returns mu=10, tau_inc=2, tau_dec=2.
func DefaultRhoOptions() RhoOptions {
	return RhoOptions{Mu: DefaultMu, TauInc: DefaultTauInc, TauDec: DefaultTauDec}
}

// Validate rejects non-positive factors.
func (o RhoOptions) Validate() error {
	if !(o.Mu > 0) || !(o.TauInc >= 1) || !(o.TauDec >= 1) {
		return fmt.Errorf("mu=%v tau_inc=%v tau_dec=%v: %w", o.Mu, o.TauInc, o.TauDec, ErrInvalidRhoOptions)
	}

	return nil
}

// UpdateRho increases rho when the primal residual dominates the dual one by
// more than Mu, decreases it in the opposite case, and leaves it otherwise.
//
// Callers holding scaled duals must multiply them by rho/newRho.
func UpdateRho(rho, rnorm, snorm float64, o RhoOptions) float64 {
	switch {
	case rnorm > o.Mu*snorm:
		return rho * o.TauInc
	case snorm > o.Mu*rnorm:
		return rho / o.TauDec
	default:
		return rho
	}
}
