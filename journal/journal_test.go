package journal_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rivelin/scribe/dbopen"
	"github.com/rivelin/scribe/journal"
)

func memJournal(t *testing.T, opts ...journal.Option) *journal.Journal {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))
	return journal.New(db, opts...)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")

	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	if err := j.Record(ctx, &journal.Entry{Path: "inbox/notes.md", Type: "markdown"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Path != "inbox/notes.md" {
		t.Fatalf("path = %q", entries[0].Path)
	}
}

func TestRecord_FillsDefaults(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()

	e := &journal.Entry{Path: "inbox/report.py", Type: "python", Output: "docs/report.md"}
	if err := j.Record(ctx, e); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(e.ID, "evt_") {
		t.Fatalf("ID = %q, want evt_ prefix", e.ID)
	}
	if e.ProcessedAt == 0 {
		t.Fatal("ProcessedAt not set")
	}
	if e.Status != journal.StatusOK {
		t.Fatalf("status = %q, want %q", e.Status, journal.StatusOK)
	}
}

func TestRecord_ErrorImpliesFailed(t *testing.T) {
	j := memJournal(t)

	e := &journal.Entry{Path: "inbox/broken.ipynb", Error: "decode notebook: unexpected end of JSON input"}
	if err := j.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if e.Status != journal.StatusFailed {
		t.Fatalf("status = %q, want %q", e.Status, journal.StatusFailed)
	}
}

func TestRecord_ExplicitStatusKept(t *testing.T) {
	j := memJournal(t)

	e := &journal.Entry{Path: "inbox/odd.txt", Status: journal.StatusFailed}
	if err := j.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if e.Status != journal.StatusFailed {
		t.Fatalf("status = %q, want %q", e.Status, journal.StatusFailed)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()

	for i, ts := range []int64{100, 200, 300} {
		e := &journal.Entry{Path: "f", ProcessedAt: ts}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ProcessedAt != 300 || entries[1].ProcessedAt != 200 {
		t.Fatalf("order = [%d, %d], want [300, 200]", entries[0].ProcessedAt, entries[1].ProcessedAt)
	}
}

func TestRecent_ZeroLimitDefaults(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := j.Record(ctx, &journal.Entry{Path: "f", ProcessedAt: int64(i + 1)}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}

func TestSummary(t *testing.T) {
	j := memJournal(t)
	ctx := context.Background()

	j.Record(ctx, &journal.Entry{Path: "a", ProcessedAt: 10})
	j.Record(ctx, &journal.Entry{Path: "b", ProcessedAt: 20})
	j.Record(ctx, &journal.Entry{Path: "c", Error: "boom", ProcessedAt: 30})
	j.Record(ctx, &journal.Entry{Path: "d", Status: journal.StatusSkipped, Error: "unsupported", ProcessedAt: 40})

	s, err := j.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 4 || s.OK != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("summary = %+v, want total 4 / ok 2 / skipped 1 / failed 1", s)
	}
	if s.LastAt != 40 {
		t.Fatalf("LastAt = %d, want 40", s.LastAt)
	}
}

func TestSummary_Empty(t *testing.T) {
	j := memJournal(t)

	s, err := j.Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 0 || s.OK != 0 || s.Failed != 0 || s.LastAt != 0 {
		t.Fatalf("summary = %+v, want all zero", s)
	}
}

func TestWithIDGenerator(t *testing.T) {
	j := memJournal(t, journal.WithIDGenerator(func() string { return "custom_id" }))

	e := &journal.Entry{Path: "x"}
	if err := j.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if e.ID != "custom_id" {
		t.Fatalf("ID = %q, want custom_id", e.ID)
	}
}
