package status

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
)

// secureHeaders hardens every diagnostics response: the JSON must never be
// sniffed into HTML, and counters must never be served stale from a cache.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// requestLog tags each request with a short trace ID, echoes it in the
// X-Trace-ID header and logs at debug level. Scrapers poll these routes, so
// info level would flood the log.
func requestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := make([]byte, 4)
			rand.Read(id)
			traceID := hex.EncodeToString(id)
			w.Header().Set("X-Trace-ID", traceID)

			logger.Debug("status request",
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
		})
	}
}
