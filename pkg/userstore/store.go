// Package userstore checks user credentials against stored scrypt password hashes.
package userstore

import (
	"context"
	"strings"
)

// PasswordChecker checks user credentials.
type PasswordChecker interface {
	// CheckPassword returns true if password is the password of userID.
	// Unknown users return false and a nil error.
	CheckPassword(ctx context.Context, userID, password string) (bool, error)
}

// Store is a PasswordChecker that manages its users.
type Store interface {
	PasswordChecker

	// SaveUser creates or updates userID with password.
	SaveUser(ctx context.Context, userID, password string) error

	// RemoveUser deletes userID. It errors with ErrNotFound if userID does not exist.
	RemoveUser(ctx context.Context, userID string) error

	// UserCount returns the number of users in the Store.
	UserCount(ctx context.Context) (int, error)
}

// Record is a stored user.
type Record struct {
	UserID string `json:"userID" cbor:"1,keyasint"`
	Hash   Hash   `json:"hash" cbor:"2,keyasint"`
}

// Check returns an error if the Record is not usable.
func (self Record) Check() error {
	if err := CheckUserID(self.UserID); nil != err {
		return err
	}
	return self.Hash.Check()
}

// NewRecord returns a Record for userID with the Hash of password.
func NewRecord(userID, password string, opts ...HashOption) (Record, error) {
	if err := CheckUserID(userID); nil != err {
		return Record{}, err
	}
	if "" == password {
		return Record{}, newError(ErrInvalidArgument, "empty password")
	}
	h, err := HashPassword(password, opts...)
	if nil != err {
		return Record{}, err
	}
	return Record{UserID: userID, Hash: h}, nil
}

// CheckUserID errors if userID is blank.
func CheckUserID(userID string) error {
	if "" == strings.TrimSpace(userID) {
		return newError(ErrInvalidArgument, "blank userID")
	}
	return nil
}
