// SPDX-License-Identifier: MIT

// Package matrix provides the storage and numeric kernels shared by every
// solver in tvgl: a contiguous stack of T square p×p matrices, per-slice
// spectral helpers built on gonum's symmetric eigendecomposition, central
// validators and a bounded parallel-for over independent slices.
//
// Layout:
//
//	Stack stores T·p·p float64 values in one row-major buffer. Slice t
//	occupies data[t·p·p : (t+1)·p·p]. At(t) returns a *mat.Dense that shares
//	this memory, and Slice(from, to) returns a sub-stack view, so lagged views
//	such as "all but the last m slices" cost nothing.
//
// Numeric policy:
//   - Stacks handed to solvers must be finite (ValidateFinite).
//   - Covariance and precision slices must be symmetric within Epsilon.
//   - Positive definiteness is tested with a Cholesky factorization.
//
// Errors:
//
//	All failures are reported via the sentinels in errors.go, wrapped with
//	the operation tag, and are matched with errors.Is.
//
// Concurrency:
//
//	A Stack is not safe for concurrent mutation of the same slice.
//	Distinct slices may be written concurrently, which is what ParallelFor
//	is used for.
package matrix
