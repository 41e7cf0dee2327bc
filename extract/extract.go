// Package extract turns raw document bytes into structured summaries.
//
// Supported types:
//   - .py          Python modules (docstring, imports, top-level defs)
//   - .go          Go sources (doc comment, imports, top-level decls)
//   - .tex         LaTeX documents (title, abstract, section headings)
//   - .ipynb       Jupyter notebooks (cell counts, flattened body)
//   - .md          Markdown (frontmatter, headings)
//   - .html, .htm  HTML (title, headings, markdown-converted body)
//   - .pdf         typeset output (size and page stats, preview only)
//   - .xlsx        spreadsheets (sheet list, row counts)
//   - .txt         plain text (line and word stats)
//
// Structural extraction is a best-effort heuristic layer: line-anchored
// pattern matching, not a grammar. Nested or computed declarations are not
// found, and that is accepted. Every extractor is pure over the raw bytes;
// file I/O belongs to the ingest pipeline, which makes each variant
// independently testable.
//
// Usage:
//
//	reg := extract.NewRegistry()
//	t, ok := reg.DetectType("inbox/solver.py")
//	ex, _ := reg.Resolve(t)
//	sum, err := ex.Extract(raw)
package extract

import (
	"bytes"
	"strings"
)

// Type identifies a supported input format.
type Type string

const (
	TypePython      Type = "python"
	TypeGo          Type = "go"
	TypeLaTeX       Type = "latex"
	TypeNotebook    Type = "notebook"
	TypeMarkdown    Type = "markdown"
	TypeHTML        Type = "html"
	TypePDF         Type = "pdf"
	TypeSpreadsheet Type = "spreadsheet"
	TypeText        Type = "text"
)

// Stat is one labelled count on a summary's statistics panel. Stats keep
// their insertion order so rendered output is reproducible.
type Stat struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// FragmentKind classifies a body fragment for the render layer.
type FragmentKind string

const (
	// FragmentDescription is leading prose: a module docstring, an abstract.
	FragmentDescription FragmentKind = "description"
	// FragmentDependencies is an ordered list of import/include lines.
	FragmentDependencies FragmentKind = "dependencies"
	// FragmentText is narrative content inserted verbatim into the body.
	FragmentText FragmentKind = "text"
	// FragmentSource is verbatim source rendered as a fenced code block.
	FragmentSource FragmentKind = "source"
)

// Fragment is one typed block of body content. Description and text carry
// Text; dependencies carry Items; source carries Text plus a fence language.
type Fragment struct {
	Kind  FragmentKind `json:"kind"`
	Text  string       `json:"text,omitempty"`
	Items []string     `json:"items,omitempty"`
	Lang  string       `json:"lang,omitempty"`
}

// Summary is the structured result of extracting one input file. It has no
// identity beyond the input that produced it and is rebuilt from scratch on
// every processing attempt.
type Summary struct {
	Title        string     `json:"title"`
	SidebarLabel string     `json:"sidebar_label"`
	Author       string     `json:"author,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Stats        []Stat     `json:"stats,omitempty"`
	Sections     []string   `json:"sections,omitempty"`
	Fragments    []Fragment `json:"fragments,omitempty"`

	// Preview marks types whose original should be embedded in a viewer
	// frame rather than rendered as text.
	Preview bool `json:"preview,omitempty"`

	// AssetRef is the public path of the verbatim asset copy. Extractors
	// leave it empty; they know nothing about the output layout. The
	// pipeline fills it in after extraction, before rendering.
	AssetRef string `json:"asset_ref,omitempty"`
}

// AddStat appends a labelled count, preserving panel order.
func (s *Summary) AddStat(label string, value int) {
	s.Stats = append(s.Stats, Stat{Label: label, Value: value})
}

// AddTag appends a tag unless it is already present.
func (s *Summary) AddTag(tag string) {
	for _, t := range s.Tags {
		if t == tag {
			return
		}
	}
	s.Tags = append(s.Tags, tag)
}

// Extractor turns raw file content into a Summary.
//
// Implementations never touch the filesystem and never abort on empty
// input: an empty file yields a summary with zero counts. The one sanctioned
// failure is structurally invalid content for formats that require parsing
// (notebooks, spreadsheets); the pipeline classifies that as a parse error.
type Extractor interface {
	Type() Type
	Extract(raw []byte) (*Summary, error)
}

// countLines counts lines the way an editor status bar does: empty content
// has zero, a trailing newline does not open a new line.
func countLines(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	n := bytes.Count(raw, []byte("\n"))
	if raw[len(raw)-1] != '\n' {
		n++
	}
	return n
}

// countWords counts whitespace-delimited words.
func countWords(raw []byte) int {
	return len(strings.Fields(string(raw)))
}

// normalizeNewlines rewrites CRLF line endings so line-anchored patterns
// behave the same for files written on any platform.
func normalizeNewlines(raw []byte) string {
	return strings.ReplaceAll(string(raw), "\r\n", "\n")
}

// splitLines splits normalized content into lines without a trailing
// phantom entry for content ending in a newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
