package middleware

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.written += n
	return n, err
}

// Logging logs HTTP request and response information. Client and server
// errors are logged at warn level.
func Logging(logger arbor.ILogger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lrw := newLoggingResponseWriter(w)

			next(lrw, r)

			duration := time.Since(start)

			if lrw.statusCode >= http.StatusBadRequest {
				logger.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("query", r.URL.RawQuery).
					Str("remote_addr", r.RemoteAddr).
					Int("status", lrw.statusCode).
					Dur("duration", duration).
					Msg("HTTP request failed")
				return
			}

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Str("remote_addr", r.RemoteAddr).
				Int("status", lrw.statusCode).
				Int("bytes", lrw.written).
				Dur("duration", duration).
				Msg("HTTP request")
		}
	}
}
