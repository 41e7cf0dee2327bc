package extract

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown summarizes .md files: frontmatter metadata when present, the
// heading outline, and the body passed through verbatim.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

func (m *Markdown) Type() Type { return TypeMarkdown }

type mdMeta struct {
	Title  string   `yaml:"title"`
	Author string   `yaml:"author"`
	Tags   []string `yaml:"tags"`
}

func (m *Markdown) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{}
	sum.AddTag(string(TypeMarkdown))

	var meta mdMeta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		// A broken frontmatter block does not sink the page; the whole
		// file becomes the body and metadata is simply absent.
		body = raw
		meta = mdMeta{}
	}

	sum.Title = strings.TrimSpace(meta.Title)
	sum.Author = strings.TrimSpace(meta.Author)
	for _, tag := range meta.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			sum.AddTag(t)
		}
	}

	doc := m.md.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading := strings.TrimSpace(string(h.Text(body)))
			if heading == "" {
				return ast.WalkContinue, nil
			}
			if sum.Title == "" && h.Level == 1 {
				sum.Title = heading
			}
			sum.Sections = append(sum.Sections, heading)
		}
		return ast.WalkContinue, nil
	})

	sum.AddStat("Lines", countLines(body))
	sum.AddStat("Words", countWords(body))
	sum.AddStat("Headings", len(sum.Sections))

	if t := strings.TrimSpace(normalizeNewlines(body)); t != "" {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentText, Text: t})
	}
	return sum, nil
}
