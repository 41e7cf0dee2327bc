package extract

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSpreadsheetExtract(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "name")
	f.SetCellValue("Sheet1", "A2", "alpha")
	f.SetCellValue("Sheet1", "A3", "beta")
	if _, err := f.NewSheet("Totals"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Totals", "A1", 42)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	sum, err := NewSpreadsheet().Extract(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got := statValue(t, sum, "Sheets"); got != 2 {
		t.Fatalf("Sheets = %d, want 2", got)
	}
	if got := statValue(t, sum, "Rows"); got != 4 {
		t.Fatalf("Rows = %d, want 4", got)
	}
	if len(sum.Sections) != 2 || sum.Sections[0] != "Sheet1" || sum.Sections[1] != "Totals" {
		t.Fatalf("sections = %v", sum.Sections)
	}
}

func TestSpreadsheetMalformed(t *testing.T) {
	if _, err := NewSpreadsheet().Extract([]byte("not a zip archive")); err == nil {
		t.Fatal("expected error for non-OOXML input")
	}
}

func TestPDFUnreadableKeepsSizeStat(t *testing.T) {
	// WHAT: a PDF pdfcpu cannot open still produces a summary.
	// WHY: the page count is a bonus stat; losing it must not lose the page.
	raw := []byte("%PDF-1.4 truncated garbage")
	sum, err := NewPDF().Extract(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got := statValue(t, sum, "Size (bytes)"); got != len(raw) {
		t.Fatalf("Size = %d, want %d", got, len(raw))
	}
	if hasStat(sum, "Pages") {
		t.Fatal("unexpected Pages stat for unreadable PDF")
	}
	if !sum.Preview {
		t.Fatal("expected preview flag for pdf")
	}
}
