package extract

// PlainText summarizes .txt files. There is no structure to find; the
// summary is line and word stats with the content carried as one block.
type PlainText struct{}

func NewPlainText() *PlainText { return &PlainText{} }

func (p *PlainText) Type() Type { return TypeText }

func (p *PlainText) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{}
	sum.AddTag("text")
	sum.AddStat("Lines", countLines(raw))
	sum.AddStat("Words", countWords(raw))

	if content := normalizeNewlines(raw); content != "" {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentSource, Text: content, Lang: "text"})
	}
	return sum, nil
}
