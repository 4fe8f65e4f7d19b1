package obfs

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode/utf8"

	"code.extranets.org/golang/pkg/hexa"
)

const (
	// DefaultPadding is the number of random letters added around the source.
	DefaultPadding = 10

	// DefaultKey is the XOR key shared with the historical peers. DO NOT EDIT.
	DefaultKey = "La créature de Roswell"

	// MaxSourceLen bounds the source length, offset & length are written with 2 digits.
	MaxSourceLen = 99

	minStart   = 3 // 2 digits start + 1 based position
	digitsSize = 2
)

// Codec obfuscates short strings. Codec is safe for concurrent use.
type Codec struct {
	padding int
	key     []byte
	random  io.Reader
}

// Option configures a Codec.
type Option = func(*Codec) error

// WithPadding sets the number of random letters added around the source.
func WithPadding(n int) Option {
	return func(c *Codec) error {
		if n < 0 {
			return newError(ErrInvalidArgument, "padding count %d < 0", n)
		}
		if n > 96 {
			// start offset must fit in 2 digits
			return newError(ErrInvalidArgument, "padding count %d > 96", n)
		}
		c.padding = n
		return nil
	}
}

// WithKey sets the XOR key. The key must be a non empty ISO-8859-1 string.
func WithKey(key string) Option {
	return func(c *Codec) error {
		if "" == key {
			return newError(ErrInvalidArgument, "empty key")
		}
		if !isLatin1(key) {
			return newError(ErrInvalidArgument, "key is not representable in ISO-8859-1")
		}
		c.key = latin1Bytes(key)
		return nil
	}
}

// WithRandom sets the entropy source used for offsets & padding. It defaults to crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) error {
		if nil == r {
			return newError(ErrInvalidArgument, "nil random source")
		}
		c.random = r
		return nil
	}
}

// New returns a Codec configured with opts.
// By default the Codec uses DefaultPadding & DefaultKey.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		padding: DefaultPadding,
		key:     latin1Bytes(DefaultKey),
		random:  rand.Reader,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Padding returns the number of random letters added around the source.
func (self *Codec) Padding() int {
	return self.padding
}

// TokenLen returns the length of the token produced for a source of srcLen characters.
func (self *Codec) TokenLen(srcLen int) int {
	return 2 * (digitsSize + self.padding + srcLen + digitsSize)
}

// Encode returns the obfuscated token for source.
// It errors with ErrInvalidArgument if source is blank, has more than MaxSourceLen characters
// or contains a character that ISO-8859-1 can not represent.
func (self *Codec) Encode(source string) (string, error) {
	if "" == strings.TrimSpace(source) {
		return "", newError(ErrInvalidArgument, "blank source")
	}
	if !isLatin1(source) {
		return "", newError(ErrInvalidArgument, "source is not representable in ISO-8859-1")
	}
	srcLen := utf8.RuneCountInString(source)
	if srcLen > MaxSourceLen {
		return "", newError(ErrInvalidArgument, "source has %d characters, max is %d", srcLen, MaxSourceLen)
	}

	start, err := self.randomIn(minStart, max(minStart, self.padding+2))
	if nil != err {
		return "", err
	}
	before := start - minStart
	after := max(0, self.padding-before)

	frame := make([]byte, 0, self.TokenLen(srcLen)/2)
	frame = fmt.Appendf(frame, "%02d", start)
	frame, err = self.appendLetters(frame, before)
	if nil != err {
		return "", err
	}
	frame = append(frame, latin1Bytes(source)...)
	frame, err = self.appendLetters(frame, after)
	if nil != err {
		return "", err
	}
	frame = fmt.Appendf(frame, "%02d", srcLen)

	screened, err := Screen(self.key, frame)
	if nil != err {
		return "", wrapError(err, ErrInternal, "failed screening frame")
	}

	return hexa.ToHex(screened), nil
}

// Decode returns the source embedded in token.
// It errors with ErrFormat if token is not valid hexadecimal text or if the frame is inconsistent.
func (self *Codec) Decode(token string) (string, error) {
	raw, err := hexa.FromHex(token)
	if nil != err {
		return "", wrapError(err, ErrFormat, "token is not hexadecimal text")
	}
	frame, err := Screen(self.key, raw)
	if nil != err {
		return "", wrapError(err, ErrInternal, "failed unscreening token")
	}
	if len(frame) < 2*digitsSize {
		return "", newError(ErrFormat, "frame too short, %d bytes", len(frame))
	}

	start, ok := parseDigits(frame[:digitsSize])
	if !ok {
		return "", newError(ErrFormat, "invalid start digits")
	}
	srcLen, ok := parseDigits(frame[len(frame)-digitsSize:])
	if !ok {
		return "", newError(ErrFormat, "invalid length digits")
	}

	lo := start - 1
	hi := lo + srcLen
	if lo < digitsSize || hi > len(frame)-digitsSize {
		return "", newError(ErrFormat, "source [%d, %d) out of frame bounds", lo, hi)
	}

	return latin1String(frame[lo:hi]), nil
}

// randomIn returns a uniform random integer in [lo, hi].
func (self *Codec) randomIn(lo, hi int) (int, error) {
	n, err := rand.Int(self.random, big.NewInt(int64(hi-lo+1)))
	if nil != err {
		return 0, wrapError(err, ErrInternal, "failed reading random source")
	}
	return lo + int(n.Int64()), nil
}

// appendLetters appends count random uppercase letters to dst.
func (self *Codec) appendLetters(dst []byte, count int) ([]byte, error) {
	for range count {
		n, err := self.randomIn(0, 'Z'-'A')
		if nil != err {
			return nil, err
		}
		dst = append(dst, byte('A'+n))
	}
	return dst, nil
}

func parseDigits(b []byte) (int, bool) {
	rv := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		rv = 10*rv + int(c-'0')
	}
	return rv, true
}

var defaultCodec = func() *Codec {
	c, err := New()
	if nil != err {
		panic(err)
	}
	return c
}()

// Default returns the Codec configured with DefaultPadding & DefaultKey.
func Default() *Codec {
	return defaultCodec
}

// Encode obfuscates source using the Default Codec.
func Encode(source string) (string, error) {
	return defaultCodec.Encode(source)
}

// Decode recovers the source of token using the Default Codec.
func Decode(token string) (string, error) {
	return defaultCodec.Decode(token)
}
