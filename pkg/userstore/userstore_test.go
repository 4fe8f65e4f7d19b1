package userstore

import (
	"context"
	"errors"
	"testing"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy source failure")
}

// testCost keeps scrypt fast in tests.
var testCost = WithCost(4, 8, 1)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("s3cret", testCost)
	if nil != err {
		t.Fatalf("failed HashPassword, got error %v", err)
	}
	if err = h.Check(); nil != err {
		t.Errorf("invalid Hash, got error %v", err)
	}
	if !h.Match("s3cret") {
		t.Error("Hash does not match its password")
	}
	if h.Match("s3cret ") || h.Match("") {
		t.Error("Hash matches another password")
	}

	other, err := HashPassword("s3cret", testCost)
	if nil != err {
		t.Fatalf("failed HashPassword, got error %v", err)
	}
	if string(h.Salt) == string(other.Salt) || string(h.Key) == string(other.Key) {
		t.Error("salt is not random")
	}
}

func TestHashPasswordFail(t *testing.T) {
	testcases := []struct {
		name string
		opt  HashOption
	}{
		{name: "logN", opt: WithCost(0, 8, 1)},
		{name: "r", opt: WithCost(4, 0, 1)},
		{name: "p", opt: WithCost(4, 8, 0)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := HashPassword("pwd", tc.opt)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("did not fail with ErrInvalidArgument, got %v", err)
			}
		})
	}

	reader := saltReader
	saltReader = failingReader{}
	_, err := HashPassword("pwd", testCost)
	saltReader = reader
	if !errors.Is(err, Error) {
		t.Errorf("failing salt source did not fail HashPassword, got %v", err)
	}

	var zero Hash
	if nil == zero.Check() {
		t.Error("zero Hash passed Check")
	}
	if zero.Match("") {
		t.Error("zero Hash matched")
	}
}

func TestNewRecord(t *testing.T) {
	_, err := NewRecord(" ", "pwd", testCost)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("blank userID did not fail with ErrInvalidArgument, got %v", err)
	}
	_, err = NewRecord("alice", "", testCost)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty password did not fail with ErrInvalidArgument, got %v", err)
	}
	rec, err := NewRecord("alice", "pwd", testCost)
	if nil != err {
		t.Fatalf("failed NewRecord, got error %v", err)
	}
	if err = rec.Check(); nil != err {
		t.Errorf("invalid Record, got error %v", err)
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testCost)

	if err := store.SaveUser(ctx, "alice", "wonderland"); nil != err {
		t.Fatalf("failed SaveUser, got error %v", err)
	}
	if err := store.SaveUser(ctx, "bob", "builder"); nil != err {
		t.Fatalf("failed SaveUser, got error %v", err)
	}

	testcases := []struct {
		userID   string
		password string
		expected bool
	}{
		{userID: "alice", password: "wonderland", expected: true},
		{userID: "alice", password: "builder", expected: false},
		{userID: "bob", password: "builder", expected: true},
		{userID: "carol", password: "wonderland", expected: false},
	}
	for _, tc := range testcases {
		ok, err := store.CheckPassword(ctx, tc.userID, tc.password)
		if nil != err || tc.expected != ok {
			t.Errorf("CheckPassword(%q, %q) returned %v, %v", tc.userID, tc.password, ok, err)
		}
	}

	// update
	if err := store.SaveUser(ctx, "alice", "looking glass"); nil != err {
		t.Fatalf("failed SaveUser, got error %v", err)
	}
	if ok, _ := store.CheckPassword(ctx, "alice", "wonderland"); ok {
		t.Error("old password still valid")
	}
	if count, _ := store.UserCount(ctx); 2 != count {
		t.Errorf("got UserCount %d", count)
	}

	if err := store.RemoveUser(ctx, "bob"); nil != err {
		t.Errorf("failed RemoveUser, got error %v", err)
	}
	if err := store.RemoveUser(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveUser did not fail with ErrNotFound, got %v", err)
	}
	if count, _ := store.UserCount(ctx); 1 != count {
		t.Errorf("got UserCount %d", count)
	}
}
