// Package loss provides the smooth data-fit terms of the time-varying
// graphical models.
//
// Gaussian:
//
//	L(K) = Σ_t -n_t·(log det K_t - ⟨S_t, K_t⟩) + vareps/2·⟨K, K⟩
//	∇L(K)_t = n_t·(S_t - K_t⁻¹) + vareps·K_t
//
// The ridge term vareps keeps L coercive when some S_t is singular. L is
// +Inf outside the positive definite cone, which the line searches rely on
// to reject infeasible trial points. Gradients take the inverse from a
// caller-supplied eigendecomposition so the same factorization also serves
// the eigenvalue bounds of the step-size controllers.
//
// Ising:
//
//	Binary data (±1, with 0 mapped to -1) enter through the negative mean
//	log pseudo-likelihood. IsingFitter solves the per-slice subproblem
//	min_K L_t(K) + α‖K‖_od,1 + w/2‖K - A‖² consumed by the ADMM solver.
package loss
