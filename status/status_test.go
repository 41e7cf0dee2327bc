package status_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rivelin/scribe/dbopen"
	"github.com/rivelin/scribe/journal"
	"github.com/rivelin/scribe/observability"
	"github.com/rivelin/scribe/status"
	"github.com/rivelin/scribe/watch"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func memJournal(t *testing.T) *journal.Journal {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))
	return journal.New(db)
}

func TestHealthz(t *testing.T) {
	r := status.Router(status.Config{})

	rec := get(t, r, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Fatal("X-Trace-ID not set")
	}
}

func TestStats(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()
	j.Record(ctx, &journal.Entry{Path: "a.md", Type: "markdown", ProcessedAt: 10})
	j.Record(ctx, &journal.Entry{Path: "b.ipynb", Error: "boom", ProcessedAt: 20})

	r := status.Router(status.Config{
		WatchStats: func() watch.Stats {
			return watch.Stats{Events: 7, Skipped: 2, Processed: 4, Failures: 1, AvgProcessTime: 12 * time.Millisecond}
		},
		Journal: j,
	})

	rec := get(t, r, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Watcher *watch.Stats     `json:"watcher"`
		Journal *journal.Summary `json:"journal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Watcher == nil || body.Watcher.Events != 7 {
		t.Fatalf("watcher block = %+v", body.Watcher)
	}
	if body.Journal == nil || body.Journal.Total != 2 || body.Journal.Failed != 1 {
		t.Fatalf("journal block = %+v", body.Journal)
	}
}

func TestStats_NothingWired(t *testing.T) {
	r := status.Router(status.Config{})

	rec := get(t, r, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
		t.Fatalf("body = %q, want {}", got)
	}
}

func TestDocuments(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()
	for i, ts := range []int64{100, 200, 300} {
		if err := j.Record(ctx, &journal.Entry{Path: "f", ProcessedAt: ts}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	r := status.Router(status.Config{Journal: j})

	rec := get(t, r, "/api/documents?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []*journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ProcessedAt != 300 {
		t.Fatalf("newest first violated: %d", entries[0].ProcessedAt)
	}
}

func TestDocuments_EmptyIsArray(t *testing.T) {
	r := status.Router(status.Config{Journal: memJournal(t)})

	rec := get(t, r, "/api/documents")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want []", got)
	}
}

func TestDocuments_DisabledWithoutJournal(t *testing.T) {
	r := status.Router(status.Config{})

	rec := get(t, r, "/api/documents")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveProcessed("latex", 3*time.Millisecond, nil)

	r := status.Router(status.Config{Metrics: m.Handler()})

	rec := get(t, r, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scribe_files_processed_total") {
		t.Fatal("exposition missing scribe_files_processed_total")
	}
}

func TestMetricsRoute_Disabled(t *testing.T) {
	r := status.Router(status.Config{})

	rec := get(t, r, "/metrics")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
