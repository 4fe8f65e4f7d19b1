package wsauth

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"code.extranets.org/golang/internal/transport"
	"code.extranets.org/golang/pkg/paramsig"
)

const (
	// UserIDParam & UserPWDParam name the obfuscated credentials parameters.
	UserIDParam  = "userID"
	UserPWDParam = "userPWD"

	// maxResponseSize bounds the size of the response document.
	maxResponseSize = 1 << 16
)

// Strategy provides the steps of an authentication call.
//
// Embed DefaultStrategy in a struct to replace some of the steps.
type Strategy interface {
	// BuildParameters returns the parameters that carry the credentials.
	BuildParameters(c *Client, userID, userPWD string) (paramsig.Params, error)

	// BuildURL returns the URL of the signed request.
	BuildURL(c *Client, params paramsig.Params) (string, error)

	// Open sends the request and returns the response body.
	Open(ctx context.Context, c *Client, target string) (io.ReadCloser, error)

	// ReadResult interprets the response body.
	ReadResult(c *Client, body io.Reader) (bool, error)
}

// DefaultStrategy obfuscates credentials, signs them and sends them with an HTTP GET.
// The response is an XML document whose root text is true or false.
type DefaultStrategy struct{}

// BuildParameters returns the obfuscated userID & userPWD.
func (self DefaultStrategy) BuildParameters(c *Client, userID, userPWD string) (paramsig.Params, error) {
	codec := c.Codec()
	encID, err := codec.Encode(userID)
	if nil != err {
		return nil, wrapError(err, ErrInvalidArgument, "failed obfuscating userID")
	}
	encPWD, err := codec.Encode(userPWD)
	if nil != err {
		return nil, wrapError(err, ErrInvalidArgument, "failed obfuscating userPWD")
	}
	return paramsig.Params{UserIDParam: encID, UserPWDParam: encPWD}, nil
}

// BuildURL appends the signed params to the Client base URL.
// It errors with a CategoryMalformedURL TransportError if the result is not an absolute http(s) URL.
func (self DefaultStrategy) BuildURL(c *Client, params paramsig.Params) (string, error) {
	query, err := c.Signer().Sign(params)
	if nil != err {
		return "", err
	}
	target := c.BaseURL() + query

	u, err := url.Parse(target)
	if nil != err {
		return "", &TransportError{Category: CategoryMalformedURL, Cause: err}
	}
	scheme := strings.ToLower(u.Scheme)
	if ("http" != scheme && "https" != scheme) || "" == u.Host {
		return "", &TransportError{
			Category: CategoryMalformedURL,
			Cause:    newError(Error, "not an absolute http(s) URL, %q", c.BaseURL()),
		}
	}

	return target, nil
}

// Open performs an HTTP GET of target. A response status that is not 2xx is an error.
func (self DefaultStrategy) Open(ctx context.Context, c *Client, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if nil != err {
		return nil, &TransportError{Category: CategoryMalformedURL, Cause: err}
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.HTTPClient().Do(req)
	if nil != err {
		return nil, wrapError(err, Error, "failed request")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, newError(ErrStatus, "got status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ReadResult parses the root text of the XML document in body.
// Surrounding spaces are ignored and the comparison with true & false is case insensitive.
func (self DefaultStrategy) ReadResult(c *Client, body io.Reader) (bool, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseSize+1))
	if nil != err {
		return false, wrapError(err, Error, "failed reading response")
	}

	var root transport.XMLText
	srz := transport.SafeSerializer{Serializer: transport.XMLSerializer{}, MaxSize: maxResponseSize}
	err = srz.Unmarshal(data, &root)
	if nil != err {
		return false, wrapError(err, ErrFormat, "failed parsing response")
	}

	text := strings.TrimSpace(root.Text)
	switch {
	case strings.EqualFold("true", text):
		return true, nil
	case strings.EqualFold("false", text):
		return false, nil
	default:
		return false, newError(ErrFormat, "invalid <%s> text %q", root.XMLName.Local, text)
	}
}

var _ Strategy = DefaultStrategy{}
