package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet summarizes .xlsx workbooks: the sheet list becomes the
// structure, row counts become the stats. Workbooks that do not open as
// OOXML archives are rejected.
type Spreadsheet struct{}

func NewSpreadsheet() *Spreadsheet { return &Spreadsheet{} }

func (s *Spreadsheet) Type() Type { return TypeSpreadsheet }

func (s *Spreadsheet) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{}
	sum.AddTag(string(TypeSpreadsheet))

	if len(raw) == 0 {
		sum.AddStat("Sheets", 0)
		sum.AddStat("Rows", 0)
		return sum, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	totalRows := 0
	for _, sheet := range f.GetSheetList() {
		sum.Sections = append(sum.Sections, sheet)
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		totalRows += len(rows)
	}

	sum.AddStat("Sheets", len(f.GetSheetList()))
	sum.AddStat("Rows", totalRows)
	return sum, nil
}
