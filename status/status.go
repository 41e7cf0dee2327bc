// Package status serves the read-only diagnostics surface: health, live
// counters, recent journal entries and the Prometheus exposition.
//
// Everything here is informational. No route mutates state, so the router
// carries no auth and can sit on a loopback or cluster-internal address.
package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rivelin/scribe/journal"
	"github.com/rivelin/scribe/watch"
)

// Config wires the data sources behind the endpoints. Nil fields disable
// the routes (or response blocks) they back.
type Config struct {
	// WatchStats supplies live watcher counters for /api/stats.
	WatchStats func() watch.Stats
	// Journal backs the journal block of /api/stats and /api/documents.
	Journal *journal.Journal
	// Metrics is the Prometheus exposition handler for /metrics.
	Metrics http.Handler
	// Logger overrides the default slog logger for request logging.
	Logger *slog.Logger
}

type statsResponse struct {
	Watcher *watch.Stats     `json:"watcher,omitempty"`
	Journal *journal.Summary `json:"journal,omitempty"`
}

// Router builds the diagnostics router.
func Router(cfg Config) chi.Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(secureHeaders)
	r.Use(requestLog(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		var resp statsResponse
		if cfg.WatchStats != nil {
			s := cfg.WatchStats()
			resp.Watcher = &s
		}
		if cfg.Journal != nil {
			sum, err := cfg.Journal.Summary(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			resp.Journal = sum
		}
		writeJSON(w, http.StatusOK, resp)
	})

	if cfg.Journal != nil {
		r.Get("/api/documents", func(w http.ResponseWriter, r *http.Request) {
			limit := queryInt(r, "limit", 50)
			entries, err := cfg.Journal.Recent(r.Context(), limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			if entries == nil {
				entries = []*journal.Entry{}
			}
			writeJSON(w, http.StatusOK, entries)
		})
	}

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
