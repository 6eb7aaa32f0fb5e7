// SPDX-License-Identifier: MIT

package prox

import "errors"

var (
	// ErrUnknownPenalty is returned by ParsePenalty for an unrecognized token.
	ErrUnknownPenalty = errors.New("prox: unknown penalty")

	// ErrUnsupportedNorm is returned by FusedLasso when the temporal norm
	// order is not 1, 2 or +Inf.
	ErrUnsupportedNorm = errors.New("prox: unsupported temporal norm")

	// ErrNegativeThreshold is returned when a threshold λ is negative or NaN.
	ErrNegativeThreshold = errors.New("prox: threshold must be non-negative")
)
