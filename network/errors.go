package network

import "errors"

var (
	// ErrThreshold is returned for a negative or NaN edge threshold.
	ErrThreshold = errors.New("network: threshold must be a non-negative number")

	// ErrDiagonal is returned when K_ii <= 0, which leaves ρ_ij undefined.
	ErrDiagonal = errors.New("network: precision diagonal must be positive")

	// ErrNotSquare is returned for a non-square precision matrix.
	ErrNotSquare = errors.New("network: precision matrix is not square")

	// ErrOrderMismatch is returned when comparing graphs over different node sets.
	ErrOrderMismatch = errors.New("network: graphs have different node counts")
)
