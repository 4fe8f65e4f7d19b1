// Package paramsig binds a set of request parameters to their emission date with a keyed digest.
//
// A Signer renders parameters in canonical order, adds the emission date and appends the
// digest of the resulting string. The receiver recomputes the digest and rejects stale dates.
// The digest is the hash of the signing key followed by the canonical string it covers.
package paramsig

import (
	"crypto/subtle"
	"log/slog"
	"maps"
	"strings"
	"time"

	"code.extranets.org/golang/internal/algos"
	"code.extranets.org/golang/pkg/hexa"
)

const (
	DefaultValidity      = 5 * time.Minute
	DefaultHash          = algos.HASH_MD5
	DefaultDateName      = "date"
	DefaultSignatureName = "signature"

	// names used by the historical peers
	LegacyDateName      = "rp1"
	LegacySignatureName = "rp2"
)

// Signer signs and verifies Params. Signer is safe for concurrent use.
type Signer struct {
	key      []byte
	validity time.Duration
	hashName string
	dateName string
	sigName  string
	now      func() time.Time
	guard    *ReplayGuard
	log      *slog.Logger
}

// Option configures a Signer.
type Option = func(*Signer) error

// WithValidity sets the maximum skew between emission & verification dates.
func WithValidity(d time.Duration) Option {
	return func(s *Signer) error {
		if d <= 0 {
			return newError(ErrInvalidArgument, "invalid validity %v <= 0", d)
		}
		s.validity = d
		return nil
	}
}

// WithValidityMinutes sets the validity as a number of minutes.
func WithValidityMinutes(n int) Option {
	return func(s *Signer) error {
		if n <= 0 {
			return newError(ErrInvalidArgument, "invalid validity %d minutes <= 0", n)
		}
		s.validity = time.Duration(n) * time.Minute
		return nil
	}
}

// WithHash sets the digest algorithm, name is one of algos.ListHashes().
func WithHash(name string) Option {
	return func(s *Signer) error {
		_, err := algos.GetHash(name)
		if nil != err {
			return wrapError(err, ErrInvalidArgument, "invalid hash")
		}
		s.hashName = name
		return nil
	}
}

// WithReservedNames sets the names of the date & signature parameters.
func WithReservedNames(dateName, sigName string) Option {
	return func(s *Signer) error {
		if "" == dateName || "" == sigName || dateName == sigName {
			return newError(ErrInvalidArgument, "invalid reserved names %q, %q", dateName, sigName)
		}
		s.dateName = dateName
		s.sigName = sigName
		return nil
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) error {
		if nil == now {
			return newError(ErrInvalidArgument, "nil clock")
		}
		s.now = now
		return nil
	}
}

// WithReplayGuard makes Verify reject signatures that it already accepted.
func WithReplayGuard(guard *ReplayGuard) Option {
	return func(s *Signer) error {
		s.guard = guard
		return nil
	}
}

// WithLogger sets the Logger that receives Verify rejection reasons.
func WithLogger(log *slog.Logger) Option {
	return func(s *Signer) error {
		s.log = log
		return nil
	}
}

// New returns a Signer using signingKey. It errors if signingKey is blank or if an Option fails.
func New(signingKey string, opts ...Option) (*Signer, error) {
	if "" == strings.TrimSpace(signingKey) {
		return nil, newError(ErrInvalidArgument, "blank signing key")
	}
	s := &Signer{
		key:      []byte(signingKey),
		validity: DefaultValidity,
		hashName: DefaultHash,
		dateName: DefaultDateName,
		sigName:  DefaultSignatureName,
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Validity returns the maximum skew between emission & verification dates.
func (self *Signer) Validity() time.Duration {
	return self.validity
}

// ReservedNames returns the names of the date & signature parameters.
func (self *Signer) ReservedNames() (string, string) {
	return self.dateName, self.sigName
}

// Encode returns the canonical form of params. It neither adds date nor signature.
func (self *Signer) Encode(params Params) string {
	return EncodeParams(params)
}

// Sign returns the canonical form of params with the current date and the signature appended.
// It errors with ErrInvalidArgument if params uses a reserved name.
func (self *Signer) Sign(params Params) (string, error) {
	for _, name := range []string{self.dateName, self.sigName} {
		if _, found := params[name]; found {
			return "", newError(ErrInvalidArgument, "reserved parameter name %q", name)
		}
	}

	signed := maps.Clone(params)
	if nil == signed {
		signed = make(Params, 1)
	}
	signed[self.dateName] = FormatDate(self.now())

	encoded := self.Encode(signed)
	sig, err := self.digest(encoded)
	if nil != err {
		return "", err
	}

	return encoded + "&" + FormEscape(self.sigName) + "=" + sig, nil
}

// Verify returns true if params carries a valid signature and a fresh date.
// It never errors, any failure returns false.
func (self *Signer) Verify(params Params) bool {
	log := self.logger()

	sig, found := params[self.sigName]
	if !found {
		log.Debug("signature check failed, missing signature")
		return false
	}
	dateText, found := params[self.dateName]
	if !found {
		log.Debug("signature check failed, missing date")
		return false
	}
	date, err := ParseDate(dateText)
	if nil != err {
		log.Debug("signature check failed, invalid date", "date", dateText)
		return false
	}
	skew := self.now().Sub(date).Abs()
	if skew > self.validity {
		log.Debug("signature check failed, stale date", "skew", skew, "validity", self.validity)
		return false
	}

	unsigned := maps.Clone(params)
	delete(unsigned, self.sigName)
	expected, err := self.digest(self.Encode(unsigned))
	if nil != err {
		log.Error("signature check failed, digest error", "error", err)
		return false
	}
	if 1 != subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) {
		log.Debug("signature check failed, digest mismatch")
		return false
	}

	if nil != self.guard && self.guard.Seen(sig, date) {
		log.Debug("signature check failed, replayed signature")
		return false
	}

	return true
}

// VerifyQuery parses rawQuery and verifies the resulting Params.
func (self *Signer) VerifyQuery(rawQuery string) bool {
	params, err := ParseQuery(rawQuery)
	if nil != err {
		self.logger().Debug("signature check failed, invalid query", "error", err)
		return false
	}
	return self.Verify(params)
}

func (self *Signer) digest(encoded string) (string, error) {
	h, err := algos.NewHash(self.hashName)
	if nil != err {
		return "", wrapError(err, ErrInternal, "failed loading hash")
	}
	h.Write(self.key)
	h.Write([]byte(encoded))
	return hexa.ToHex(h.Sum(nil)), nil
}

func (self *Signer) logger() *slog.Logger {
	if nil == self.log {
		return slog.Default()
	}
	return self.log
}
