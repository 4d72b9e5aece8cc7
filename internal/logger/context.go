package logger

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger stores a request-scoped entry in the context.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// FromContext returns the request-scoped entry, or a bare entry on the
// standard logger when the middleware has not run.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// RequestLoggerMiddleware seeds each request's context with an entry carrying
// the request identity and upload size, and logs the arrival. The request ID
// is expected to be populated by an earlier middleware.
func RequestLoggerMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := log.WithFields(Fields{
				"request_id": r.Header.Get("X-Request-ID"),
				"method":     r.Method,
				"path":       r.URL.Path,
				"client_ip":  clientIP(r),
			})
			if r.ContentLength > 0 {
				entry = entry.WithField("bytes_in", r.ContentLength)
			}

			entry.Info("Request received")
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), entry)))
		})
	}
}

// clientIP resolves the originating address, trusting proxy headers when
// present. X-Forwarded-For may hold a chain; the first hop is the client.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// StatusRecorder wraps a ResponseWriter so the access log can report the
// status code and response size after the handler runs.
type StatusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

// NewStatusRecorder wraps w, defaulting the status to 200.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code written; later calls are
// ignored, matching net/http semantics.
func (sr *StatusRecorder) WriteHeader(code int) {
	if sr.wrote {
		return
	}
	sr.status = code
	sr.wrote = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *StatusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Status returns the recorded status code.
func (sr *StatusRecorder) Status() int { return sr.status }

// BytesWritten returns the response body size so far.
func (sr *StatusRecorder) BytesWritten() int { return sr.bytes }
