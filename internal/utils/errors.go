package utils

import (
	"errors"
	"fmt"
	"path"
	"runtime"
)

// RaisedErr is an error type that records where it was raised.
// Errors returned by the packages of this module are RaisedErr instances.
//
// Each package declares a private flag error type and a set of **constant** errors of that type.
// A flag is attached to every RaisedErr so that callers can classify errors with errors.Is.
type RaisedErr struct {
	// Flag classifies the error (eg. invalid argument, format error...).
	Flag error

	// Cause is the error that triggered the RaisedErr{}, it may be nil.
	Cause error

	// Msg describes what happened.
	Msg string

	// Filename is the source file that raised the error, as "pkgdir/file.go".
	Filename string

	// Line is the line in Filename where the error was raised.
	Line int
}

// Error implements the error interface.
func (self RaisedErr) Error() string {
	if nil == self.Cause {
		return fmt.Sprintf("%s: %s [%s:%d]", path.Dir(self.Filename), self.Msg, self.Filename, self.Line)
	}
	return fmt.Sprintf("%s: %s [%s:%d]\n  caused by: %v", path.Dir(self.Filename), self.Msg, self.Filename, self.Line, self.Cause)
}

// Unwrap returns the Flag and the Cause of the RaisedErr.
func (self RaisedErr) Unwrap() []error {
	rv := make([]error, 0, 2)
	if nil != self.Flag {
		rv = append(rv, self.Flag)
	}
	if nil != self.Cause {
		rv = append(rv, self.Cause)
	}
	return rv
}

// NewError returns a RaisedErr{} holding file & line of the caller.
//
// skip controls Caller frame resolution, when calling NewError directly set skip to 0,
// when calling NewError from a package level newError helper set skip to 1...
func NewError(skip int, flag error, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	err := RaisedErr{Flag: flag, Msg: msg}
	addCallerFileLine(skip, &err)
	return err
}

// WrapError returns a RaisedErr{} holding cause and file & line of the caller.
// It returns nil if cause is nil.
//
// skip has the same meaning as in NewError.
func WrapError(cause error, skip int, flag error, msg string, args ...any) error {
	if nil == cause {
		return nil
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	err := RaisedErr{Flag: flag, Cause: cause, Msg: msg}
	addCallerFileLine(skip, &err)
	return err
}

// FlagOf returns the Flag of the outermost RaisedErr found in err chain.
// It returns nil if err does not contain a RaisedErr.
func FlagOf(err error) error {
	var raised RaisedErr
	if errors.As(err, &raised) {
		return raised.Flag
	}
	return nil
}

func addCallerFileLine(skip int, err *RaisedErr) {
	_, filename, line, ok := runtime.Caller(2 + skip)
	if ok {
		dirname, basename := path.Split(filename)
		err.Filename = path.Join(path.Base(dirname), basename)
		err.Line = line
	}
}
