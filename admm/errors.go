package admm

import "errors"

var (
	// ErrInvalidOption indicates an out-of-range numeric option.
	ErrInvalidOption = errors.New("admm: invalid option")

	// ErrFitterShape indicates a SliceFitter with no time points or no
	// variables.
	ErrFitterShape = errors.New("admm: slice fitter has an empty shape")
)
