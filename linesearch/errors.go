package linesearch

import "errors"

var (
	// ErrUnknownCriterion indicates a criterion token other than a, b or c.
	ErrUnknownCriterion = errors.New("linesearch: unknown criterion")

	// ErrInvalidConfig indicates Delta <= 0, Eps outside (0,1) or MaxIter < 1.
	ErrInvalidConfig = errors.New("linesearch: invalid configuration")
)
