package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProcessed(t *testing.T) {
	m := NewMetrics()

	m.ObserveProcessed("python", 120*time.Millisecond, nil)
	m.ObserveProcessed("python", 80*time.Millisecond, nil)
	m.ObserveProcessed("notebook", 10*time.Millisecond, errors.New("decode notebook: bad JSON"))

	if got := testutil.ToFloat64(m.filesProcessed.WithLabelValues("python", "ok")); got != 2 {
		t.Fatalf("python ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.filesProcessed.WithLabelValues("notebook", "failed")); got != 1 {
		t.Fatalf("notebook failed = %v, want 1", got)
	}
}

func TestObserveProcessed_UnknownType(t *testing.T) {
	m := NewMetrics()
	m.ObserveProcessed("", time.Millisecond, errors.New("unsupported"))

	if got := testutil.ToFloat64(m.filesProcessed.WithLabelValues("unknown", "failed")); got != 1 {
		t.Fatalf("unknown failed = %v, want 1", got)
	}
}

func TestObserveWatchEvent(t *testing.T) {
	m := NewMetrics()
	m.ObserveWatchEvent("scheduled")
	m.ObserveWatchEvent("scheduled")
	m.ObserveWatchEvent("skipped")

	if got := testutil.ToFloat64(m.watchEvents.WithLabelValues("scheduled")); got != 2 {
		t.Fatalf("scheduled = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.watchEvents.WithLabelValues("skipped")); got != 1 {
		t.Fatalf("skipped = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveProcessed("markdown", 5*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`scribe_files_processed_total{status="ok",type="markdown"} 1`,
		"scribe_processing_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %q:\n%s", want, body)
		}
	}
}

// Two instances must not collide: each carries its own registry.
func TestPrivateRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.ObserveProcessed("go", time.Millisecond, nil)

	if got := testutil.ToFloat64(b.filesProcessed.WithLabelValues("go", "ok")); got != 0 {
		t.Fatalf("second instance saw %v observations", got)
	}
}
