package middleware

import "net/http"

// DefaultMaxBodyBytes caps request bodies at 1 MiB. The largest legitimate
// payload is a custom schedule body, far below this.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes wraps request bodies in a http.MaxBytesReader so oversized
// payloads fail with 413 instead of being buffered.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
