package wsauth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	testcases := []struct {
		name     string
		err      error
		expected Category
	}{
		{name: "nil", err: nil, expected: CategoryUnknown},
		{name: "other", err: errors.New("boom"), expected: CategoryUnknown},
		{
			name:     "transport error",
			err:      wrapError(&TransportError{Category: CategoryMalformedURL}, Error, "failed"),
			expected: CategoryMalformedURL,
		},
		{
			name:     "dns",
			err:      &url.Error{Op: "Get", URL: "http://nowhere.invalid", Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}},
			expected: CategoryUnknownHost,
		},
		{name: "deadline", err: wrapError(context.DeadlineExceeded, Error, "failed"), expected: CategoryTimeout},
		{
			name:     "dial timeout",
			err:      &url.Error{Op: "Get", URL: "http://10.0.0.1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: &timeoutError{}}},
			expected: CategoryTimeout,
		},
		{
			name:     "refused",
			err:      &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}},
			expected: CategoryConnectionDenied,
		},
		{
			name:     "reset",
			err:      &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)},
			expected: CategoryConnectionDenied,
		},
		{
			name:     "dial other",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route")},
			expected: CategoryConnectionDenied,
		},
		{name: "parse", err: &url.Error{Op: "parse", URL: "::", Err: errors.New("missing protocol scheme")}, expected: CategoryMalformedURL},
		{name: "status", err: newError(ErrStatus, "got status 503"), expected: CategoryIO},
		{name: "truncated body", err: io.ErrUnexpectedEOF, expected: CategoryIO},
		{name: "canceled", err: context.Canceled, expected: CategoryIO},
		{name: "other url error", err: &url.Error{Op: "Get", URL: "http://x", Err: errors.New("http: server gave HTTP response to HTTPS client")}, expected: CategoryIO},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); tc.expected != got {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestCategoryMessage(t *testing.T) {
	expected := map[Category]string{
		CategoryMalformedURL:     "Malformed URL",
		CategoryConnectionDenied: "Connection denied or reset",
		CategoryTimeout:          "Connection timeout",
		CategoryUnknownHost:      "Unknown host",
		CategoryIO:               "Connection error",
		CategoryUnknown:          "Unknown error",
		Category(42):             "Unknown error",
	}
	for cat, msg := range expected {
		if msg != cat.Message() {
			t.Errorf("got %q, expected %q", cat.Message(), msg)
		}
	}
}

func TestStatus(t *testing.T) {
	testcases := []struct {
		outcome Outcome
		name    string
		ok      bool
	}{
		{outcome: Success(), name: "AUTHENTICATED", ok: true},
		{outcome: Failure(), name: "NOT_AUTHENTICATED", ok: false},
		{outcome: ErrorOutcome("Connection timeout"), name: "ERROR", ok: false},
	}
	for _, tc := range testcases {
		if tc.name != tc.outcome.Status.String() || tc.ok != tc.outcome.Status.Bool() {
			t.Errorf("got %s %v, expected %s %v", tc.outcome.Status, tc.outcome.Status.Bool(), tc.name, tc.ok)
		}
	}
	if "" != Success().Message || "" != Failure().Message {
		t.Error("non error outcome carries a message")
	}
	if "ERROR: Connection timeout" != ErrorOutcome("Connection timeout").String() {
		t.Errorf("got %q", ErrorOutcome("Connection timeout").String())
	}
	if txt, _ := StatusError.MarshalText(); "ERROR" != string(txt) {
		t.Errorf("got %q", string(txt))
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
