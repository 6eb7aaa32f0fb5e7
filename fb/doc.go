// Package fb implements the forward-backward solver for the time-varying
// graphical lasso
//
//	min_K  Σ_t -n_t·(log det K_t - ⟨S_t, K_t⟩) + vareps/2·‖K‖²
//	       + alpha·Σ_t ‖K_t‖_od,1 + beta·‖vec(K[1:] - K[:-1])‖_p
//
// with adaptive backtracking on the step size γ and the relaxation weight λ.
//
// Each iteration:
//
//	1. verify every K_t is positive definite (otherwise stop with Diverged and
//	   return the last valid iterate);
//	2. eigendecompose K_t and form ∇L(K);
//	3. optionally backtrack on γ (linesearch.ChooseGamma);
//	4. y = FusedLasso(K - γ∇L(K), βγ, αγ);
//	5. optionally backtrack on λ (linesearch.ChooseLambda);
//	6. K ← K + max(λ, 0)·(y - K);
//	7. record the convergence check and apply the stopping rule.
//
// Stopping rule: with r = ‖K - K_prev‖/γ, stop after at least one iteration
// when r / max_i r_i <= Tol or r / (max(‖∇L‖, ‖(x̂ - K)/γ‖) + 1e-6) <= Tol.
//
// Options:
//
//	– Choose:     which parameters backtrack (gamma, lamda, both, fixed).
//	– Criterion:  acceptance test for λ (a, b, c).
//	– TimeNorm:   1, 2 or +Inf for the temporal penalty.
//	– Debug:      disables the stopping rule (runs MaxIter iterations).
//
// Errors (sentinel):
//
//	– ErrUnknownChooseMode if a choose token is not recognized.
//	– ErrInvalidOption     for out-of-range numeric options.
//
// Numerical divergence and budget exhaustion are not errors; they are
// reported through Result.Status.
package fb
