package config

import "errors"

var (
	// ErrUnknownSolver indicates an unrecognised solver token.
	ErrUnknownSolver = errors.New("config: unknown solver")

	// ErrNoData indicates a problem with neither covariances nor samples.
	ErrNoData = errors.New("config: problem has no data")

	// ErrShape indicates ragged or inconsistent nested arrays.
	ErrShape = errors.New("config: inconsistent data shape")
)
