// Package network reads the conditional-independence graphs encoded by
// estimated precision matrices.
//
// Nodes are the p features; an undirected edge {i, j} exists at time t when
// |K_t[i, j]| > threshold. Its weight is the partial correlation
//
//	ρ_ij = -K_ij / sqrt(K_ii · K_jj).
//
// Operations:
//
//	FromPrecision       – one graph from one precision matrix.
//	FromInteractions    – one graph from an Ising interaction matrix,
//	                      weighted by the raw couplings K_ij.
//	Sequence            – one graph per time point of a matrix.Stack.
//	InteractionSequence – the same for Ising estimates.
//	Components          – connected components by breadth-first search.
//	Diff                – edges added and removed between two time points.
//	ValidateThreshold   – the threshold check shared by every builder.
//
// Errors (sentinel):
//
//	– ErrThreshold     threshold is negative or NaN.
//	– ErrDiagonal      a diagonal entry is not strictly positive.
//	– ErrNotSquare     the matrix is not square.
//	– ErrOrderMismatch Diff over graphs with different node counts.
package network
