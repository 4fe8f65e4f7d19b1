package hexa

import (
	"code.extranets.org/golang/internal/utils"
)

// errorFlag is a private error type that allows declaring error constants.
type errorFlag string

const (
	// All package errors are wrapping Error
	Error            = errorFlag("hexa: error")
	ErrInvalidFormat = errorFlag("hexa: invalid hexadecimal text")
	noError          = errorFlag("")
)

// Error implements the error interface.
func (self errorFlag) Error() string {
	return string(self)
}

func (self errorFlag) Unwrap() error {
	if Error == self || noError == self {
		return nil
	}
	return Error
}

// newError returns a utils.RaisedErr{} that contains file & line of where it was called.
func newError(flag error, msg string, args ...any) error {
	return utils.NewError(1, flag, msg, args...)
}
