// Package wsauth authenticates users against a remote web service.
//
// A Client obfuscates the credentials (package obfs), signs them (package paramsig) and sends them
// with an HTTP GET. The service answers an XML document whose root text content is true or false.
// AuthEndpoint implements the service side of the protocol.
package wsauth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"code.extranets.org/golang/internal/observability"
	"code.extranets.org/golang/pkg/obfs"
	"code.extranets.org/golang/pkg/paramsig"
)

const (
	// DefaultSigningKey is the digest starting key shared with the historical peers.
	DefaultSigningKey = "sopra.servlet.util.HttpServletRequestParametersDigest"

	DefaultValidityMinutes = 1
	DefaultConnectTimeout  = 15 * time.Second
	DefaultReadTimeout     = 20 * time.Second
)

// Client authenticates users against the service at a base URL. Client is safe for concurrent use.
type Client struct {
	baseURL    string
	signer     *paramsig.Signer
	codec      *obfs.Codec
	httpClient *http.Client
	strategy   Strategy
	log        *slog.Logger
}

type clientConfig struct {
	validityMinutes int
	signingKey      string
	signerOpts      []paramsig.Option
	codec           *obfs.Codec
	connectTimeout  time.Duration
	readTimeout     time.Duration
	httpClient      *http.Client
	strategy        Strategy
	log             *slog.Logger
}

// ClientOption configures a Client.
type ClientOption = func(*clientConfig) error

// WithValidityMinutes sets the validity of the signed requests.
func WithValidityMinutes(n int) ClientOption {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return newError(ErrInvalidArgument, "invalid validity %d minutes <= 0", n)
		}
		cfg.validityMinutes = n
		return nil
	}
}

// WithSigningKey sets the key of the request signatures.
func WithSigningKey(key string) ClientOption {
	return func(cfg *clientConfig) error {
		if "" == strings.TrimSpace(key) {
			return newError(ErrInvalidArgument, "blank signing key")
		}
		cfg.signingKey = key
		return nil
	}
}

// WithSignerOptions adds opts to the options of the request Signer.
func WithSignerOptions(opts ...paramsig.Option) ClientOption {
	return func(cfg *clientConfig) error {
		cfg.signerOpts = append(cfg.signerOpts, opts...)
		return nil
	}
}

// WithCodec sets the Codec that obfuscates the credentials.
func WithCodec(codec *obfs.Codec) ClientOption {
	return func(cfg *clientConfig) error {
		if nil == codec {
			return newError(ErrInvalidArgument, "nil codec")
		}
		cfg.codec = codec
		return nil
	}
}

// WithTimeouts sets the connection & read timeouts. They are ignored if WithHTTPClient is used.
func WithTimeouts(connect, read time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if connect <= 0 || read <= 0 {
			return newError(ErrInvalidArgument, "invalid timeouts %v, %v", connect, read)
		}
		cfg.connectTimeout = connect
		cfg.readTimeout = read
		return nil
	}
}

// WithHTTPClient sets the http.Client that sends the requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(cfg *clientConfig) error {
		if nil == hc {
			return newError(ErrInvalidArgument, "nil http client")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithStrategy sets the Strategy that performs the authentication steps.
func WithStrategy(s Strategy) ClientOption {
	return func(cfg *clientConfig) error {
		if nil == s {
			return newError(ErrInvalidArgument, "nil strategy")
		}
		cfg.strategy = s
		return nil
	}
}

// WithLogger sets the Client Logger. By default the Logger is taken from the call Context.
func WithLogger(log *slog.Logger) ClientOption {
	return func(cfg *clientConfig) error {
		cfg.log = log
		return nil
	}
}

// NewClient returns a Client for the service at baseURL.
//
// The signed query is appended to baseURL, which usually ends with "?".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if "" == strings.TrimSpace(baseURL) {
		return nil, newError(ErrInvalidArgument, "blank base URL")
	}

	cfg := clientConfig{
		validityMinutes: DefaultValidityMinutes,
		signingKey:      DefaultSigningKey,
		connectTimeout:  DefaultConnectTimeout,
		readTimeout:     DefaultReadTimeout,
		strategy:        DefaultStrategy{},
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	signerOpts := append([]paramsig.Option{paramsig.WithValidityMinutes(cfg.validityMinutes)}, cfg.signerOpts...)
	signer, err := paramsig.New(cfg.signingKey, signerOpts...)
	if nil != err {
		return nil, wrapError(err, ErrInvalidArgument, "failed creating signer")
	}

	codec := cfg.codec
	if nil == codec {
		codec = obfs.Default()
	}

	hc := cfg.httpClient
	if nil == hc {
		hc = newHTTPClient(cfg.connectTimeout, cfg.readTimeout)
	}

	return &Client{
		baseURL:    baseURL,
		signer:     signer,
		codec:      codec,
		httpClient: hc,
		strategy:   cfg.strategy,
		log:        cfg.log,
	}, nil
}

// newHTTPClient returns an http.Client that bounds connection by connect & response by read.
func newHTTPClient(connect, read time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   connect,
			ResponseHeaderTimeout: read,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
		},
		Timeout: connect + read,
	}
}

// BaseURL returns the service URL the signed query is appended to.
func (self *Client) BaseURL() string {
	return self.baseURL
}

// Signer returns the Signer of authentication requests.
func (self *Client) Signer() *paramsig.Signer {
	return self.signer
}

// Codec returns the Codec that obfuscates credentials.
func (self *Client) Codec() *obfs.Codec {
	return self.codec
}

// HTTPClient returns the http.Client used to call the service.
func (self *Client) HTTPClient() *http.Client {
	return self.httpClient
}

// Authenticate checks userID & userPWD against the remote service.
//
// It errors with ErrInvalidArgument if userID or userPWD is blank or can not be obfuscated.
// Failures of the remote call are reported in a StatusError Outcome.
func (self *Client) Authenticate(ctx context.Context, userID, userPWD string) (Outcome, error) {
	if "" == strings.TrimSpace(userID) {
		return Outcome{}, newError(ErrInvalidArgument, "blank userID")
	}
	if "" == strings.TrimSpace(userPWD) {
		return Outcome{}, newError(ErrInvalidArgument, "blank userPWD")
	}

	log := observability.Logger(ctx, self.log).With("userID", userID)

	authenticated, err := self.call(ctx, userID, userPWD)
	var outcome Outcome
	switch {
	case nil != err:
		var terr *TransportError
		if !errors.As(err, &terr) && (errors.Is(err, ErrInvalidArgument) || errors.Is(err, paramsig.ErrInvalidArgument)) {
			return Outcome{}, err
		}
		category := Classify(err)
		log.Error("authentication call failed", "category", category.Message(), "error", err)
		outcome = ErrorOutcome(category.Message())
	case authenticated:
		outcome = Success()
	default:
		outcome = Failure()
	}

	if outcome.Status.Bool() {
		log.Info("authentication outcome", "status", outcome.Status)
	} else {
		log.Error("authentication outcome", "status", outcome.Status, "message", outcome.Message)
	}

	return outcome, nil
}

func (self *Client) call(ctx context.Context, userID, userPWD string) (bool, error) {
	params, err := self.strategy.BuildParameters(self, userID, userPWD)
	if nil != err {
		return false, err
	}
	target, err := self.strategy.BuildURL(self, params)
	if nil != err {
		return false, err
	}
	body, err := self.strategy.Open(ctx, self, target)
	if nil != err {
		return false, err
	}
	defer body.Close()

	return self.strategy.ReadResult(self, body)
}

// Authenticate checks userID & userPWD against the service at baseURL using a default Client.
func Authenticate(ctx context.Context, userID, userPWD, baseURL string, validityMinutes int) (Outcome, error) {
	client, err := NewClient(baseURL, WithValidityMinutes(validityMinutes))
	if nil != err {
		return Outcome{}, err
	}
	return client.Authenticate(ctx, userID, userPWD)
}
