package extract

import (
	"regexp"
	"strings"
)

var (
	rePyClass = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	rePyDef   = regexp.MustCompile(`^(async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)`)
	rePyCode  = regexp.MustCompile(`^#.*coding[:=]`)
)

// Python summarizes .py modules: docstring, imports, top-level declarations.
type Python struct{}

func NewPython() *Python { return &Python{} }

func (p *Python) Type() Type { return TypePython }

func (p *Python) Extract(raw []byte) (*Summary, error) {
	content := normalizeNewlines(raw)
	lines := splitLines(content)

	sum := &Summary{}
	sum.AddTag(string(TypePython))

	doc := pythonDocstring(lines)
	if doc != "" {
		sum.Title = firstLine(doc)
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentDescription, Text: doc})
	}

	var imports []string
	classes, funcs := 0, 0
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "import ") || isFromImport(line):
			imports = append(imports, strings.TrimRight(line, " \t"))
		case rePyClass.MatchString(line):
			classes++
			sum.Sections = append(sum.Sections, "class "+rePyClass.FindStringSubmatch(line)[1])
		case rePyDef.MatchString(line):
			funcs++
			m := rePyDef.FindStringSubmatch(line)
			label := "def " + m[2] + "()"
			if m[1] != "" {
				label = "async " + label
			}
			sum.Sections = append(sum.Sections, label)
		}
	}

	sum.AddStat("Lines", countLines(raw))
	sum.AddStat("Classes", classes)
	sum.AddStat("Functions", funcs)

	if len(imports) > 0 {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentDependencies, Items: imports})
	}
	if len(content) > 0 {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentSource, Text: content, Lang: "python"})
	}
	return sum, nil
}

// isFromImport matches top-level "from X import Y" without catching strings
// or prose that merely starts with "from".
func isFromImport(line string) bool {
	if !strings.HasPrefix(line, "from ") {
		return false
	}
	return strings.Contains(line, " import ") || strings.HasSuffix(strings.TrimRight(line, " \t"), " import")
}

// pythonDocstring finds the module docstring, tolerating a shebang, an
// encoding comment, blank lines, comments and __future__ imports before it.
// When no docstring exists, a leading contiguous comment block serves as the
// description instead.
func pythonDocstring(lines []string) string {
	var comments []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case i == 0 && strings.HasPrefix(trimmed, "#!"):
			continue
		case rePyCode.MatchString(trimmed):
			continue
		case strings.HasPrefix(trimmed, "#"):
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			continue
		case strings.HasPrefix(trimmed, "from __future__ import"):
			continue
		}
		if body, ok := tripleQuoted(lines, i); ok {
			return body
		}
		// First statement is not a docstring: fall back to any comment
		// block collected above it.
		break
	}
	return strings.TrimSpace(strings.Join(comments, "\n"))
}

// tripleQuoted reads a triple-quoted string literal starting at lines[start],
// tolerating a single r/u/b prefix. Returns the dedented body.
func tripleQuoted(lines []string, start int) (string, bool) {
	trimmed := strings.TrimSpace(lines[start])
	stripped := strings.TrimLeft(trimmed, "rRuUbB")
	var delim string
	switch {
	case strings.HasPrefix(stripped, `"""`):
		delim = `"""`
	case strings.HasPrefix(stripped, "'''"):
		delim = "'''"
	default:
		return "", false
	}

	rest := strings.TrimPrefix(stripped, delim)
	if idx := strings.Index(rest, delim); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), true
	}

	var body []string
	if rest != "" {
		body = append(body, rest)
	}
	for i := start + 1; i < len(lines); i++ {
		if idx := strings.Index(lines[i], delim); idx >= 0 {
			body = append(body, lines[i][:idx])
			return strings.TrimSpace(strings.Join(body, "\n")), true
		}
		body = append(body, lines[i])
	}
	// Unterminated docstring: treat everything collected as the body.
	return strings.TrimSpace(strings.Join(body, "\n")), true
}

// firstLine returns the first non-empty line of a block of prose.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
