package calculator

import "errors"

var (
	ErrInvalidWindow    = errors.New("invalid window length")
	ErrLengthMismatch   = errors.New("series length mismatch")
	ErrInsufficientData = errors.New("insufficient data points")
	ErrDivisionByZero   = errors.New("division by zero")
)
