// Package render turns extraction summaries into documentation pages:
// a frontmatter block followed by generated body sections. Rendering is a
// pure function of the summary (no clock, no filesystem), so the same
// summary always produces the same bytes, which is what makes reprocessing
// idempotent.
package render

import (
	"fmt"
	"strings"

	"github.com/rivelin/scribe/extract"
)

// Document is a rendered page ready to be written.
type Document struct {
	Frontmatter []Field
	Body        string
}

// Text returns the complete page: frontmatter block, blank line, body.
func (d Document) Text() string {
	return formatFrontmatter(d.Frontmatter) + "\n" + d.Body
}

// Render assembles the page for one summary. Body sections appear in a
// fixed order (stats, description, dependencies, structure, content,
// original) and sections with nothing to say are omitted entirely.
func Render(s *extract.Summary) Document {
	doc := Document{}

	title := s.Title
	label := s.SidebarLabel
	if label == "" {
		label = title
	}
	doc.Frontmatter = append(doc.Frontmatter,
		Field{Key: "title", Value: title},
		Field{Key: "sidebar_label", Value: label},
	)
	if s.Author != "" {
		doc.Frontmatter = append(doc.Frontmatter, Field{Key: "author", Value: s.Author})
	}
	if len(s.Tags) > 0 {
		doc.Frontmatter = append(doc.Frontmatter, Field{Key: "tags", List: s.Tags})
	}
	if s.AssetRef != "" {
		doc.Frontmatter = append(doc.Frontmatter, Field{Key: "source", Value: s.AssetRef})
	}

	var sections []string
	if block := statsTable(s.Stats); block != "" {
		sections = append(sections, block)
	}
	for _, f := range s.Fragments {
		if f.Kind == extract.FragmentDescription && strings.TrimSpace(f.Text) != "" {
			sections = append(sections, strings.TrimSpace(f.Text))
		}
	}
	if block := dependencyList(s.Fragments); block != "" {
		sections = append(sections, block)
	}
	if block := structureList(s.Sections); block != "" {
		sections = append(sections, block)
	}
	if block := contentBlocks(s.Fragments); block != "" {
		sections = append(sections, block)
	}
	if block := originalSection(s); block != "" {
		sections = append(sections, block)
	}

	doc.Body = strings.Join(sections, "\n\n")
	if doc.Body != "" {
		doc.Body += "\n"
	}
	return doc
}

// statsTable renders the labelled counts as a two-column table.
func statsTable(stats []extract.Stat) string {
	if len(stats) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| Stat | Value |\n| --- | --- |")
	for _, s := range stats {
		fmt.Fprintf(&sb, "\n| %s | %d |", s.Label, s.Value)
	}
	return sb.String()
}

func dependencyList(frags []extract.Fragment) string {
	var items []string
	for _, f := range frags {
		if f.Kind == extract.FragmentDependencies {
			items = append(items, f.Items...)
		}
	}
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Dependencies\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "\n- `%s`", item)
	}
	return sb.String()
}

func structureList(sections []string) string {
	if len(sections) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Structure\n")
	for i, s := range sections {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, s)
	}
	return sb.String()
}

// contentBlocks flattens text and source fragments in their original order
// under one heading. Source fragments are fenced with their language.
func contentBlocks(frags []extract.Fragment) string {
	var parts []string
	for _, f := range frags {
		switch f.Kind {
		case extract.FragmentText:
			if t := strings.TrimSpace(f.Text); t != "" {
				parts = append(parts, t)
			}
		case extract.FragmentSource:
			if f.Text == "" {
				continue
			}
			text := strings.TrimRight(f.Text, "\n")
			parts = append(parts, "```"+f.Lang+"\n"+text+"\n```")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "## Content\n\n" + strings.Join(parts, "\n\n")
}

// originalSection links the verbatim asset copy and, for preview types,
// embeds it in a viewer frame.
func originalSection(s *extract.Summary) string {
	if s.AssetRef == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Original\n")
	if s.Preview {
		fmt.Fprintf(&sb, "\n<iframe src=%q width=\"100%%\" height=\"640\"></iframe>\n", s.AssetRef)
	}
	fmt.Fprintf(&sb, "\n[Download original](%s)", s.AssetRef)
	return sb.String()
}
