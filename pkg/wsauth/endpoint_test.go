package wsauth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"code.extranets.org/golang/internal/observability"
	"code.extranets.org/golang/pkg/obfs"
	"code.extranets.org/golang/pkg/paramsig"
	"code.extranets.org/golang/pkg/userstore"
)

type failingChecker struct{}

func (failingChecker) CheckPassword(_ context.Context, _, _ string) (bool, error) {
	return false, errors.New("store unavailable")
}

func newEndpointServer(t *testing.T, users userstore.PasswordChecker, opts ...paramsig.Option) *httptest.Server {
	opts = append([]paramsig.Option{paramsig.WithValidityMinutes(1), paramsig.WithLogger(observability.NoopLogger())}, opts...)
	signer, err := paramsig.New(DefaultSigningKey, opts...)
	if nil != err {
		t.Fatalf("failed paramsig.New, got error %v", err)
	}
	endpoint, err := NewAuthEndpoint(signer, obfs.Default(), users)
	if nil != err {
		t.Fatalf("failed NewAuthEndpoint, got error %v", err)
	}
	mw := observability.Middleware{Logger: observability.NoopLogger()}
	srv := httptest.NewServer(mw.Wrap(endpoint))
	t.Cleanup(srv.Close)
	return srv
}

func newUsers(t *testing.T) *userstore.MemStore {
	users := userstore.NewMemStore(userstore.WithCost(4, 8, 1))
	if err := users.SaveUser(context.Background(), "alice", "wonderland"); nil != err {
		t.Fatalf("failed SaveUser, got error %v", err)
	}
	return users
}

func TestEndpointRoundTrip(t *testing.T) {
	srv := newEndpointServer(t, newUsers(t))
	client := newTestClient(t, srv.URL+"/auth?")

	testcases := []struct {
		userID   string
		userPWD  string
		expected Outcome
	}{
		{userID: "alice", userPWD: "wonderland", expected: Success()},
		{userID: "alice", userPWD: "looking glass", expected: Failure()},
		{userID: "bob", userPWD: "wonderland", expected: Failure()},
		{userID: "alice", userPWD: "mot de passe éèà", expected: Failure()},
	}

	for _, tc := range testcases {
		outcome, err := client.Authenticate(context.Background(), tc.userID, tc.userPWD)
		if nil != err {
			t.Fatalf("failed Authenticate, got error %v", err)
		}
		if tc.expected != outcome {
			t.Errorf("Authenticate(%q, %q) returned %v", tc.userID, tc.userPWD, outcome)
		}
	}
}

func TestAuthenticateNonLatin1(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()
	for userID, password := range map[string]string{"bob": "pa?ss", "carol": "pa€ss"} {
		if err := users.SaveUser(ctx, userID, password); nil != err {
			t.Fatalf("failed SaveUser, got error %v", err)
		}
	}
	srv := newEndpointServer(t, users)
	client := newTestClient(t, srv.URL+"/auth?")

	outcome, err := client.Authenticate(ctx, "bob", "pa?ss")
	if nil != err || Success() != outcome {
		t.Fatalf("Authenticate(bob, pa?ss) returned %v, %v", outcome, err)
	}

	for _, tc := range [][2]string{{"bob", "pa日ss"}, {"carol", "pa€ss"}, {"b€b", "pa?ss"}} {
		outcome, err = client.Authenticate(ctx, tc[0], tc[1])
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Authenticate(%q, %q) returned %v, %v", tc[0], tc[1], outcome, err)
		}
	}
}

func TestEndpointRejectsBadSignature(t *testing.T) {
	srv := newEndpointServer(t, newUsers(t))

	testcases := []struct {
		name string
		opts []ClientOption
	}{
		{name: "other key", opts: []ClientOption{WithSigningKey("not the shared key")}},
		{
			name: "legacy names",
			opts: []ClientOption{WithSignerOptions(paramsig.WithReservedNames(paramsig.LegacyDateName, paramsig.LegacySignatureName))},
		},
		{
			name: "stale date",
			opts: []ClientOption{WithSignerOptions(paramsig.WithClock(func() time.Time { return time.Now().Add(-2 * time.Minute) }))},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, srv.URL+"/auth?", tc.opts...)
			outcome, err := client.Authenticate(context.Background(), "alice", "wonderland")
			if nil != err {
				t.Fatalf("failed Authenticate, got error %v", err)
			}
			if Failure() != outcome {
				t.Errorf("got outcome %v", outcome)
			}
		})
	}
}

func TestEndpointLegacyNames(t *testing.T) {
	legacy := paramsig.WithReservedNames(paramsig.LegacyDateName, paramsig.LegacySignatureName)
	srv := newEndpointServer(t, newUsers(t), legacy)
	client := newTestClient(t, srv.URL+"/auth?", WithSignerOptions(legacy))

	outcome, err := client.Authenticate(context.Background(), "alice", "wonderland")
	if nil != err {
		t.Fatalf("failed Authenticate, got error %v", err)
	}
	if Success() != outcome {
		t.Errorf("got outcome %v", outcome)
	}
}

func TestEndpointReplay(t *testing.T) {
	guard, err := paramsig.NewReplayGuard(time.Minute)
	if nil != err {
		t.Fatalf("failed NewReplayGuard, got error %v", err)
	}
	srv := newEndpointServer(t, newUsers(t), paramsig.WithReplayGuard(guard))

	var query string
	client := newTestClient(t, srv.URL+"/auth?", WithStrategy(recordingStrategy{target: &query}))
	outcome, err := client.Authenticate(context.Background(), "alice", "wonderland")
	if nil != err || Success() != outcome {
		t.Fatalf("Authenticate returned %v, %v", outcome, err)
	}

	body := get(t, query, http.StatusOK)
	if !strings.Contains(body, "<authenticated>false</authenticated>") {
		t.Errorf("replayed request accepted, got %q", body)
	}
}

// recordingStrategy records the request URL.
type recordingStrategy struct {
	DefaultStrategy
	target *string
}

func (self recordingStrategy) BuildURL(c *Client, params paramsig.Params) (string, error) {
	target, err := self.DefaultStrategy.BuildURL(c, params)
	*self.target = target
	return target, err
}

func TestEndpointResponse(t *testing.T) {
	srv := newEndpointServer(t, newUsers(t))

	body := get(t, srv.URL+"/auth?userID=00", http.StatusOK)
	expected := `<?xml version="1.0"?><authenticated>false</authenticated>`
	if expected != body {
		t.Errorf("got body %q, expected %q", body, expected)
	}

	body = get(t, srv.URL+"/auth?userID=%zz", http.StatusOK)
	if expected != body {
		t.Errorf("got body %q, expected %q", body, expected)
	}

	resp, err := http.Post(srv.URL+"/auth", "text/plain", strings.NewReader(""))
	if nil != err {
		t.Fatalf("failed POST, got error %v", err)
	}
	resp.Body.Close()
	if http.StatusMethodNotAllowed != resp.StatusCode {
		t.Errorf("got status %d for POST", resp.StatusCode)
	}
	if "" == resp.Header.Get(observability.DefaultTraceIdHeader) {
		t.Error("missing trace id header")
	}
}

func TestEndpointStoreError(t *testing.T) {
	srv := newEndpointServer(t, failingChecker{})
	client := newTestClient(t, srv.URL+"/auth?")

	outcome, err := client.Authenticate(context.Background(), "alice", "wonderland")
	if nil != err {
		t.Fatalf("failed Authenticate, got error %v", err)
	}
	if ErrorOutcome("Connection error") != outcome {
		t.Errorf("got outcome %v", outcome)
	}
}

func TestNewAuthEndpointFail(t *testing.T) {
	signer, err := paramsig.New(DefaultSigningKey)
	if nil != err {
		t.Fatalf("failed paramsig.New, got error %v", err)
	}
	_, err = NewAuthEndpoint(signer, obfs.Default(), nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewAuthEndpoint did not fail with ErrInvalidArgument, got %v", err)
	}
	_, err = NewAuthEndpoint(nil, obfs.Default(), newUsers(t))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewAuthEndpoint did not fail with ErrInvalidArgument, got %v", err)
	}
}

func get(t *testing.T, target string, status int) string {
	resp, err := http.Get(target)
	if nil != err {
		t.Fatalf("failed GET, got error %v", err)
	}
	defer resp.Body.Close()
	if status != resp.StatusCode {
		t.Errorf("got status %d, expected %d", resp.StatusCode, status)
	}
	if ct := resp.Header.Get("Content-Type"); http.StatusOK == status && "application/xml" != ct {
		t.Errorf("got Content-Type %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if nil != err {
		t.Fatalf("failed reading body, got error %v", err)
	}
	return string(body)
}
