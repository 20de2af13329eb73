package common

import "errors"

var (
	ErrInvalidUnit              = errors.New("invalid unit")
	ErrInvalidFormat            = errors.New("invalid size format")
	ErrNegativeResult           = errors.New("result would be negative")
	ErrDivisionByZero           = errors.New("division by zero")
	ErrOverflow                 = errors.New("size overflow")
	ErrUnsupportedFlashType     = errors.New("unsupported flash type")
	ErrUnsupportedInterfaceType = errors.New("unsupported interface type")
)
