package kernel

import "errors"

var (
	// ErrKernelSize indicates a kernel whose shape is not T×T.
	ErrKernelSize = errors.New("kernel: size does not match the number of time points")

	// ErrKernelValue indicates a negative, NaN or infinite kernel entry.
	ErrKernelValue = errors.New("kernel: entries must be finite and non-negative")

	// ErrKernelAsymmetric indicates k(s,t) != k(t,s).
	ErrKernelAsymmetric = errors.New("kernel: matrix is not symmetric")

	// ErrUnknownKernel indicates a kernel name Lookup does not know.
	ErrUnknownKernel = errors.New("kernel: unknown kernel")

	// ErrBadHyperparameter indicates a non-positive length scale or period.
	ErrBadHyperparameter = errors.New("kernel: hyperparameter must be positive and finite")
)
