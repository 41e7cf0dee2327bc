package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlSkipTags are containers whose text never belongs in a summary:
// scripts, chrome and page furniture.
var htmlSkipTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
}

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

var reCollapseSpace = regexp.MustCompile(`\s+`)

// HTML summarizes .html pages: document title, heading outline outside the
// page chrome, and the content converted to markdown for the body.
type HTML struct {
	sanitizer *bluemonday.Policy
	converter *converter.Converter
}

func NewHTML() *HTML {
	return &HTML{
		sanitizer: bluemonday.UGCPolicy(),
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (h *HTML) Type() Type { return TypeHTML }

func (h *HTML) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{}
	sum.AddTag(string(TypeHTML))

	if len(bytes.TrimSpace(raw)) == 0 {
		sum.AddStat("Lines", 0)
		sum.AddStat("Words", 0)
		sum.AddStat("Headings", 0)
		return sum, nil
	}

	// html.Parse repairs malformed input rather than rejecting it, so a
	// ragged page still yields a tree.
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var firstH1 string
	walkHTML(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if htmlSkipTags[n.DataAtom] {
			return false
		}
		switch {
		case n.DataAtom == atom.Title && sum.Title == "":
			sum.Title = nodeText(n)
		case headingAtoms[n.DataAtom]:
			heading := nodeText(n)
			if heading == "" {
				return true
			}
			if firstH1 == "" && n.DataAtom == atom.H1 {
				firstH1 = heading
			}
			sum.Sections = append(sum.Sections, heading)
		}
		return true
	})
	if sum.Title == "" {
		sum.Title = firstH1
	}

	body := h.bodyMarkdown(raw, doc)
	sum.AddStat("Lines", countLines([]byte(body)))
	sum.AddStat("Words", countWords([]byte(body)))
	sum.AddStat("Headings", len(sum.Sections))

	if body != "" {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentText, Text: body})
	}
	return sum, nil
}

// bodyMarkdown sanitizes the page and converts it to markdown. Conversion
// failures degrade to the bare text of the tree so the page still gets a
// body.
func (h *HTML) bodyMarkdown(raw []byte, doc *html.Node) string {
	clean := h.sanitizer.SanitizeBytes(raw)
	md, err := h.converter.ConvertString(string(clean))
	if err == nil {
		if md = strings.TrimSpace(md); md != "" {
			return md
		}
	}

	var parts []string
	walkHTML(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && htmlSkipTags[n.DataAtom] {
			return false
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		return true
	})
	return strings.Join(parts, " ")
}

// walkHTML visits nodes depth-first in document order. Returning false from
// the visitor prunes the subtree.
func walkHTML(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, visit)
	}
}

// nodeText flattens the text content of a subtree into one line.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walkHTML(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && htmlSkipTags[c.DataAtom] {
			return false
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
		return true
	})
	return strings.TrimSpace(reCollapseSpace.ReplaceAllString(sb.String(), " "))
}
