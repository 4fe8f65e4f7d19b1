package wsauth

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"code.extranets.org/golang/internal/observability"
	"code.extranets.org/golang/internal/transport"
	"code.extranets.org/golang/pkg/obfs"
	"code.extranets.org/golang/pkg/paramsig"
	"code.extranets.org/golang/pkg/userstore"
)

// ResultElement is the root element of the authentication response.
const ResultElement = "authenticated"

// AuthEndpoint is an HTTP handler serving the requests sent by Client.
type AuthEndpoint struct {
	signer *paramsig.Signer
	codec  *obfs.Codec
	users  userstore.PasswordChecker
	srz    transport.Serializer
}

// NewAuthEndpoint returns an AuthEndpoint. It errors if an argument is nil.
func NewAuthEndpoint(signer *paramsig.Signer, codec *obfs.Codec, users userstore.PasswordChecker) (*AuthEndpoint, error) {
	if nil == signer || nil == codec || nil == users {
		return nil, newError(ErrInvalidArgument, "nil signer, codec or users")
	}
	return &AuthEndpoint{
		signer: signer,
		codec:  codec,
		users:  users,
		srz:    transport.XMLSerializer{},
	}, nil
}

// ServeHTTP answers GET requests holding signed obfuscated credentials.
//
// The response is an XML document whose root text is true if the credentials are valid.
// Requests that fail signature verification or credentials decoding receive false.
// Errors of the user store result in a 500 response.
func (self *AuthEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := observability.GetObservability(r.Context()).Log().With("handler", "wsauth")

	if http.MethodGet != r.Method {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		log.Debug("invalid method", "method", r.Method)
		return
	}

	params, err := paramsig.ParseQuery(r.URL.RawQuery)
	if nil != err {
		log.Debug("invalid query", "error", err)
		self.respond(w, false)
		return
	}
	if !self.signer.Verify(params) {
		log.Debug("rejected request signature")
		self.respond(w, false)
		return
	}

	userID, err := self.codec.Decode(params[UserIDParam])
	if nil != err {
		log.Debug("failed decoding userID", "error", err)
		self.respond(w, false)
		return
	}
	userPWD, err := self.codec.Decode(params[UserPWDParam])
	if nil != err {
		log.Debug("failed decoding userPWD", "error", err)
		self.respond(w, false)
		return
	}

	log = log.With("userID", userID)
	authenticated, err := self.users.CheckPassword(r.Context(), userID, userPWD)
	if nil != err {
		log.Error("failed checking password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("checked credentials", "authenticated", authenticated)
	self.respond(w, authenticated)
}

func (self *AuthEndpoint) respond(w http.ResponseWriter, authenticated bool) {
	body, err := self.srz.Marshal(transport.XMLText{
		XMLName: xml.Name{Local: ResultElement},
		Text:    strconv.FormatBool(authenticated),
	})
	if nil != err {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

var _ http.Handler = &AuthEndpoint{}
