// Package convergence holds the per-iteration diagnostics shared by the
// forward-backward and ADMM solvers: the Check record, the terminal Status,
// absolute+relative tolerance schedules and the residual-balancing update of
// the augmented-Lagrangian parameter rho.
package convergence
