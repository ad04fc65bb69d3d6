package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// requestLogger logs every request with its outcome. Server errors log at
// error level, client errors at warn, everything else at info.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		if s.metricsEnabled {
			httpRequestDuration.WithLabelValues(r.Method).Observe(duration.Seconds())
		}

		args := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}

		switch {
		case status >= 500:
			s.logger.ErrorContext(r.Context(), "Request failed", args...)
		case status >= 400:
			s.logger.WarnContext(r.Context(), "Request rejected", args...)
		default:
			s.logger.InfoContext(r.Context(), "Request served", args...)
		}
	})
}
