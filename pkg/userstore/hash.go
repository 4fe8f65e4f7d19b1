package userstore

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"golang.org/x/crypto/scrypt"

	"code.extranets.org/golang/pkg/hexa"
)

const (
	DefaultLogN     uint8 = 15
	DefaultRelBlock uint8 = 8
	DefaultCPUCost  uint8 = 1
	SaltSize              = 16
	KeySize               = 32
)

// saltReader is the entropy source of password salts.
var saltReader io.Reader = rand.Reader

// Hash is a scrypt password hash with its cost parameters.
type Hash struct {
	LogN uint8      `json:"logN" cbor:"1,keyasint"`
	R    uint8      `json:"r" cbor:"2,keyasint"`
	P    uint8      `json:"p" cbor:"3,keyasint"`
	Salt hexa.Bytes `json:"salt" cbor:"4,keyasint"`
	Key  hexa.Bytes `json:"key" cbor:"5,keyasint"`
}

// HashOption configures HashPassword.
type HashOption = func(*Hash) error

// WithCost sets scrypt cost parameters, N is 2^logN.
func WithCost(logN, r, p uint8) HashOption {
	return func(h *Hash) error {
		if logN < 1 || logN > 30 || r < 1 || p < 1 {
			return newError(ErrInvalidArgument, "invalid scrypt cost logN=%d r=%d p=%d", logN, r, p)
		}
		h.LogN, h.R, h.P = logN, r, p
		return nil
	}
}

// HashPassword returns the Hash of password using a random salt.
func HashPassword(password string, opts ...HashOption) (Hash, error) {
	h := Hash{LogN: DefaultLogN, R: DefaultRelBlock, P: DefaultCPUCost}
	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return Hash{}, err
		}
	}

	h.Salt = make([]byte, SaltSize)
	if _, err := io.ReadFull(saltReader, h.Salt); nil != err {
		return Hash{}, wrapError(err, Error, "failed generating salt")
	}

	key, err := h.derive(password)
	if nil != err {
		return Hash{}, err
	}
	h.Key = key

	return h, nil
}

// Match returns true if password hashes to the Hash key.
func (self Hash) Match(password string) bool {
	key, err := self.derive(password)
	if nil != err {
		return false
	}
	return 1 == subtle.ConstantTimeCompare(key, self.Key)
}

// Check returns an error if the Hash is not usable.
func (self Hash) Check() error {
	if self.LogN < 1 || self.LogN > 30 || 0 == self.R || 0 == self.P {
		return newError(ErrInvalidArgument, "invalid scrypt cost")
	}
	if len(self.Salt) != SaltSize || len(self.Key) != KeySize {
		return newError(ErrInvalidArgument, "invalid salt or key size")
	}
	return nil
}

func (self Hash) derive(password string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), self.Salt, 1<<self.LogN, int(self.R), int(self.P), KeySize)
	if nil != err {
		return nil, wrapError(err, ErrInvalidArgument, "failed scrypt key derivation")
	}
	return key, nil
}
