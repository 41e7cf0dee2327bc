package extract

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF summarizes typeset output. The page itself is the content, so the
// summary is stats plus an embedded preview of the verbatim copy; no text
// is pulled out of the content streams.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (p *PDF) Type() Type { return TypePDF }

func (p *PDF) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{Preview: true}
	sum.AddTag(string(TypePDF))
	sum.AddStat("Size (bytes)", len(raw))

	// An unreadable cross-reference table costs the page count, not the
	// whole page. The stat is simply absent when pdfcpu cannot open the
	// document.
	conf := model.NewDefaultConfiguration()
	if ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), conf); err == nil {
		sum.AddStat("Pages", ctx.PageCount)
	}
	return sum, nil
}
