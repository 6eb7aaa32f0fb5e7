// Package admm implements the lag-consensus ADMM solvers of the
// time-varying graphical models.
//
// Every pair of time points (i, i+m) is coupled through the kernel weight
// k(i, i+m) and a penalty ψ on the difference of their precisions:
//
//	min  Σ_t loss_t(K_t) + alpha·Σ_t ‖K_t‖_od,1
//	     + Σ_m Σ_i k(i, i+m)·ψ(K_{i+m} - K_i)
//
// Each active lag m (at least one positive weight on the m-th
// super-diagonal) owns a pair of consensus copies Z_L ≈ K[:-m],
// Z_R ≈ K[m:] with scaled duals. The lag records live in one arena slice and
// are updated in parallel; the primal update averages over the d_t
// constraints touching slice t.
//
// Solvers:
//
//	– SolveKernel: Gaussian likelihood, primal K, sparse copy Z_0.
//	– SolveLatent: Gaussian likelihood of R = Z_0 - W_0 with a low-rank
//	  positive semidefinite W_0 (τ·trace), a second kernel and penalty φ
//	  coupling W in time.
//	– SolveIsing:  any per-slice loss behind SliceFitter (the pseudo
//	  likelihood of binary data in package loss).
//
// Stopping: primal and dual residuals against √N·tol + rtol·scale, or the
// relative gap to StopAt when set. Rho is adapted by residual balancing and
// the scaled duals are rescaled accordingly.
//
// Errors (sentinel):
//
//	– ErrInvalidOption  for out-of-range numeric options.
//	– ErrFitterShape    if a SliceFitter does not match the kernel.
//	– prox.ErrUnknownPenalty, kernel.ErrKernelSize and the matrix input
//	  sentinels, returned before iterating.
package admm
