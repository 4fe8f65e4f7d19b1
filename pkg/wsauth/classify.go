package wsauth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
)

// Category classifies the failures of an authentication call.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryMalformedURL
	CategoryConnectionDenied
	CategoryTimeout
	CategoryUnknownHost
	CategoryIO
)

var categoryMessages = [...]string{
	CategoryUnknown:          "Unknown error",
	CategoryMalformedURL:     "Malformed URL",
	CategoryConnectionDenied: "Connection denied or reset",
	CategoryTimeout:          "Connection timeout",
	CategoryUnknownHost:      "Unknown host",
	CategoryIO:               "Connection error",
}

// Message returns the human readable message of the Category.
func (self Category) Message() string {
	if self < 0 || int(self) >= len(categoryMessages) {
		return categoryMessages[CategoryUnknown]
	}
	return categoryMessages[self]
}

func (self Category) String() string {
	return self.Message()
}

// TransportError is returned by Strategy methods that know the Category of their failure.
type TransportError struct {
	Category Category
	Cause    error
}

func (self *TransportError) Error() string {
	if nil == self.Cause {
		return "wsauth: " + self.Category.Message()
	}
	return "wsauth: " + self.Category.Message() + ", " + self.Cause.Error()
}

func (self *TransportError) Unwrap() error {
	return self.Cause
}

// Classify returns the Category of err.
func Classify(err error) Category {
	if nil == err {
		return CategoryUnknown
	}

	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Category
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryUnknownHost
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) {
		return CategoryConnectionDenied
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && "dial" == opErr.Op {
		return CategoryConnectionDenied
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && "parse" == urlErr.Op {
		return CategoryMalformedURL
	}
	if errors.Is(err, ErrStatus) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.Canceled) ||
		nil != opErr || nil != urlErr {
		return CategoryIO
	}

	return CategoryUnknown
}
