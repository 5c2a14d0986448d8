package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// loggedResponse captures the status code and body size written downstream.
type loggedResponse struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggedResponse) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggedResponse) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RequestLog emits one structured line per request. Place it after the
// RequestID middleware so the id is already in the context.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lr := &loggedResponse{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lr, r)

		slog.Info("request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", lr.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", lr.size)
	})
}
