// Package tvgl estimates time-varying sparse inverse covariance matrices.
//
// What is tvgl?
//
//	Given T empirical covariances S_1 … S_T (one per time point), tvgl
//	fits precisions K_1 … K_T that are sparse at every time point and
//	change smoothly, or in a structured way, from one time point to the
//	next:
//
//		min_K  Σ_t -n_t·(log det K_t - ⟨S_t, K_t⟩)
//		       + alpha·Σ_t ‖K_t‖_od,1  +  temporal penalty
//
// Solvers:
//
//	fb/    – forward-backward splitting with a fused-lasso temporal prox
//	         (adjacent time points) and γ/λ backtracking.
//	admm/  – lag-consensus ADMM where every pair (s, t) is weighted by a
//	         kernel k(s, t) and a penalty ψ ∈ {laplacian, l1, l2, linf, node}:
//	         SolveKernel, SolveLatent (sparse minus low-rank) and
//	         SolveIsing (binary data, pseudo-likelihood).
//
// Building blocks:
//
//	matrix/      – Stack (T×p×p contiguous), spectral helpers, validators
//	prox/        – proximal operators and the Penalty enumeration
//	loss/        – Gaussian loss and gradient, Ising pseudo-likelihood
//	linesearch/  – step and relaxation backtracking
//	convergence/ – Check, History, Status, tolerances, rho balancing
//	kernel/      – RBF, Matern12, ExpSineSquared, Constant kernels
//	telemetry/   – prometheus metrics and OpenTelemetry spans per solve
//	network/     – dependency graphs, components and edge changes of an estimate
//	config/      – YAML problem files
//	cmd/tvgl     – command line front end
//
// Quick example:
//
//	s, _ := matrix.StackOf(c1, c2, c3)
//	k, _ := kernel.RBF(2, kernel.Times(3))
//	res, err := admm.SolveKernel(ctx, s, nil,
//		admm.WithAlpha(0.05),
//		admm.WithKernel(k, prox.L1),
//	)
//
// Every solver validates its options before iterating, honours ctx
// cancellation between iterations and reports a convergence.Status
// together with the final iterate.
package tvgl
