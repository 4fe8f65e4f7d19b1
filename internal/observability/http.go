package observability

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTraceIdHeader is the request header read by Middleware when TraceIdHeader is empty.
const DefaultTraceIdHeader = "X-Trace-Id"

// Middleware holds configuration for HTTP Observability
type Middleware struct {
	// TraceIdHeader names the request header that may carry a caller trace id.
	TraceIdHeader string

	// Logger is the base Logger, slog.Default() if nil.
	Logger *slog.Logger
}

// Wrap returns an Handler that adds Observability to http Request Context and calls next.
// A trace id is taken from TraceIdHeader or generated, it is echoed in the response headers.
func (self Middleware) Wrap(next http.Handler) http.Handler {
	header := self.TraceIdHeader
	if "" == header {
		header = DefaultTraceIdHeader
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()

		tId := r.Header.Get(header)
		if "" == tId {
			tId = uuid.New().String()
		}
		w.Header().Set(header, tId)

		base := &Observability{Logger: self.Logger}
		log := base.Log().With("tId", tId)
		ctx := SetObservability(r.Context(), &Observability{Logger: log})
		sw := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&sw, r.WithContext(ctx))
		log.Info(
			"processed HTTP request",
			"method", r.Method,
			"host", r.Host,
			"path", r.URL.Path,
			"status", sw.status,
			"size", sw.size,
			"duration", time.Since(t0),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (self *statusRecorder) WriteHeader(statusCode int) {
	self.status = statusCode
	self.ResponseWriter.WriteHeader(statusCode)
}

func (self *statusRecorder) Write(data []byte) (int, error) {
	n, err := self.ResponseWriter.Write(data)
	self.size += n
	return n, err
}

var _ http.ResponseWriter = &statusRecorder{}
