package fb

import "errors"

var (
	// ErrUnknownChooseMode indicates a choose token other than gamma, lamda,
	// both or fixed.
	ErrUnknownChooseMode = errors.New("fb: unknown choose mode")

	// ErrInvalidOption indicates an out-of-range numeric option.
	ErrInvalidOption = errors.New("fb: invalid option")
)
