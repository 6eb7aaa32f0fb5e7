// Package kernel builds and validates the T×T temporal kernels that couple
// time points in the ADMM lag-consensus solver.
//
// Entry (s, t) weights the penalty between K_s and K_t; only the strict upper
// triangle is read by the solver, and the m-th super-diagonal holds the
// weights of lag m. A kernel must be square of size T, symmetric, finite and
// non-negative.
//
// Constructors follow the usual stationary families evaluated on a vector of
// time stamps, parameterized by a single hyperparameter theta:
//
//	– RBF            exp(-(s-t)² / (2θ²))
//	– Matern12       exp(-|s-t| / θ)
//	– ExpSineSquared exp(-2·sin²(π|s-t|/period) / θ²)
//	– Constant       θ everywhere
//
// Errors (sentinel):
//
//	– ErrKernelSize        if the kernel is not T×T.
//	– ErrKernelValue       if an entry is negative, NaN or infinite.
//	– ErrKernelAsymmetric  if k(s,t) != k(t,s).
//	– ErrUnknownKernel     if a name does not resolve in Lookup.
//	– ErrBadHyperparameter if theta or the period is not usable.
package kernel
