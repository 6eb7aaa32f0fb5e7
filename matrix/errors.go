// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// Every message is prefixed with "matrix: ..." so it can be grepped in logs.
// Validators wrap these with an operation tag; callers match with errors.Is.

package matrix

import "errors"

var (
	// ErrBadShape is returned when a requested stack shape is invalid (T<=0 or p<=0),
	// or when a backing buffer does not hold exactly T·p·p values.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrNilStack indicates that a nil *Stack was passed where data is required.
	ErrNilStack = errors.New("matrix: nil stack")

	// ErrDimensionMismatch indicates incompatible shapes between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrAsymmetry signals that a slice expected to be symmetric is not, within eps.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNotPositiveDefinite signals that a slice failed the Cholesky test.
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrEigenFailed signals that the symmetric eigendecomposition did not converge.
	ErrEigenFailed = errors.New("matrix: eigendecomposition failed")

	// ErrNonPositiveWeight indicates a per-slice weight that is not strictly positive.
	ErrNonPositiveWeight = errors.New("matrix: weights must be strictly positive")
)
