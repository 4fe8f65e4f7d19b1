package wsauth

import (
	"fmt"
)

// Status is the tri-state result of an authentication call.
type Status int

const (
	NotAuthenticated Status = iota
	Authenticated
	StatusError
)

var statusNames = [...]string{
	NotAuthenticated: "NOT_AUTHENTICATED",
	Authenticated:    "AUTHENTICATED",
	StatusError:      "ERROR",
}

// String returns AUTHENTICATED, NOT_AUTHENTICATED or ERROR.
func (self Status) String() string {
	if self < 0 || int(self) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(self))
	}
	return statusNames[self]
}

// Bool returns true only for Authenticated.
func (self Status) Bool() bool {
	return Authenticated == self
}

// MarshalText implements encoding.TextMarshaler.
func (self Status) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

// Outcome is the result of Client.Authenticate. Only StatusError outcomes carry a Message.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Success returns the Authenticated Outcome.
func Success() Outcome {
	return Outcome{Status: Authenticated}
}

// Failure returns the NotAuthenticated Outcome.
func Failure() Outcome {
	return Outcome{Status: NotAuthenticated}
}

// ErrorOutcome returns a StatusError Outcome holding msg.
func ErrorOutcome(msg string) Outcome {
	return Outcome{Status: StatusError, Message: msg}
}

func (self Outcome) String() string {
	if "" == self.Message {
		return self.Status.String()
	}
	return self.Status.String() + ": " + self.Message
}
