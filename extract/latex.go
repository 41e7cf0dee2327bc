package extract

import (
	"regexp"
	"strings"
)

var (
	reTexHeading    = regexp.MustCompile(`\\(section|subsection)\*?\{`)
	reTexCmdArg     = regexp.MustCompile(`\\[a-zA-Z]+\*?\{([^{}]*)\}`)
	reTexCmdBare    = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	reTexWhitespace = regexp.MustCompile(`\s+`)
)

// LaTeX summarizes .tex documents: title, abstract and section headings,
// with inline markup stripped down to the readable text.
type LaTeX struct{}

func NewLaTeX() *LaTeX { return &LaTeX{} }

func (l *LaTeX) Type() Type { return TypeLaTeX }

func (l *LaTeX) Extract(raw []byte) (*Summary, error) {
	content := normalizeNewlines(raw)

	sum := &Summary{}
	sum.AddTag(string(TypeLaTeX))

	if title, ok := texCommandArg(content, `\title`); ok {
		sum.Title = StripMarkup(title)
	}
	if author, ok := texCommandArg(content, `\author`); ok {
		sum.Author = StripMarkup(author)
	}
	if class, ok := texDocumentClass(content); ok {
		sum.AddTag(class)
	}
	if abstract, ok := texEnvironment(content, "abstract"); ok {
		if text := StripMarkup(abstract); text != "" {
			sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentDescription, Text: text})
		}
	}

	for _, loc := range reTexHeading.FindAllStringIndex(content, -1) {
		arg, ok := texBraced(content[loc[1]-1:])
		if !ok {
			continue
		}
		if heading := StripMarkup(arg); heading != "" {
			sum.Sections = append(sum.Sections, heading)
		}
	}

	sum.AddStat("Lines", countLines(raw))
	sum.AddStat("Words", countWords(raw))
	sum.AddStat("Sections", len(sum.Sections))

	if len(content) > 0 {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentSource, Text: content, Lang: "latex"})
	}
	return sum, nil
}

// StripMarkup reduces inline LaTeX to plain text: one-argument commands keep
// their argument, line breaks and standalone commands disappear, leftover
// braces are dropped and whitespace collapses. Nested commands resolve from
// the inside out.
func StripMarkup(s string) string {
	for {
		next := reTexCmdArg.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, `\\`, " ")
	s = reTexCmdBare.ReplaceAllString(s, "")
	for _, special := range []string{"&", "%", "$", "#", "_"} {
		s = strings.ReplaceAll(s, `\`+special, special)
	}
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = reTexWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// texDocumentClass reads the class name from \documentclass, skipping any
// option bracket, e.g. \documentclass[11pt]{article} yields "article".
func texDocumentClass(content string) (string, bool) {
	idx := strings.Index(content, `\documentclass`)
	if idx < 0 {
		return "", false
	}
	rest := content[idx+len(`\documentclass`):]
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return "", false
		}
		rest = rest[end+1:]
	}
	class, ok := texBraced(rest)
	if !ok {
		return "", false
	}
	class = strings.TrimSpace(class)
	return class, class != ""
}

// texCommandArg finds the first `\cmd{...}` occurrence and returns the
// brace-balanced argument, so nested commands inside the argument survive.
func texCommandArg(content, cmd string) (string, bool) {
	idx := strings.Index(content, cmd+"{")
	if idx < 0 {
		return "", false
	}
	return texBraced(content[idx+len(cmd):])
}

// texBraced reads a brace-balanced group starting at the opening brace.
func texBraced(s string) (string, bool) {
	if s == "" || s[0] != '{' {
		return "", false
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}
	return "", false
}

// texEnvironment returns the content between \begin{name} and \end{name}.
func texEnvironment(content, name string) (string, bool) {
	begin := `\begin{` + name + `}`
	end := `\end{` + name + `}`
	start := strings.Index(content, begin)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(begin):]
	stop := strings.Index(rest, end)
	if stop < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:stop]), true
}
