// Package config loads tvgl problem files.
//
// A problem file is YAML:
//
//	solver: kernel            # fb | kernel | latent | ising
//	covariances: [...]        # T×p×p empirical covariances, or
//	samples: [...]            # T×n×p raw samples (binary for ising)
//	n_samples: [...]          # optional per-slice weights
//	kernel:                   # ψ kernel (admm); kernel_latent for φ
//	  name: rbf               # rbf | matern12 | exp_sine_squared | constant
//	  theta: 2
//	fb:   {alpha: 0.05, beta: 1, choose: both}
//	admm: {alpha: 0.05, psi: l1, update_rho: {mu: 10}}
//
// Solver sections are decoded over the solver defaults, so omitted keys
// keep their default values.
//
// Errors (sentinel):
//
//	– ErrUnknownSolver  for a solver token outside the closed set.
//	– ErrNoData         when neither covariances nor samples are given.
//	– ErrShape          for ragged or inconsistent arrays.
package config
