package extract

import (
	"regexp"
	"strings"
)

var (
	reGoType   = regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(struct|interface)\b`)
	reGoFunc   = regexp.MustCompile(`^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	reGoMethod = regexp.MustCompile(`^func\s+\([^)]+\)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// GoSource summarizes .go files without compiling them: the package doc
// comment, import set and exported shape come from line-anchored scanning,
// which keeps extraction working even for sources that do not parse.
type GoSource struct{}

func NewGo() *GoSource { return &GoSource{} }

func (g *GoSource) Type() Type { return TypeGo }

func (g *GoSource) Extract(raw []byte) (*Summary, error) {
	content := normalizeNewlines(raw)
	lines := splitLines(content)

	sum := &Summary{}
	sum.AddTag("go")

	doc := goDocComment(lines)
	if doc != "" {
		sum.Title = firstLine(doc)
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentDescription, Text: doc})
	}

	imports := goImports(lines)
	types, funcs := 0, 0
	for _, line := range lines {
		switch {
		case reGoType.MatchString(line):
			types++
			m := reGoType.FindStringSubmatch(line)
			sum.Sections = append(sum.Sections, "type "+m[1]+" "+m[2])
		case reGoMethod.MatchString(line):
			funcs++
			sum.Sections = append(sum.Sections, "func "+reGoMethod.FindStringSubmatch(line)[1]+"()")
		case reGoFunc.MatchString(line):
			funcs++
			sum.Sections = append(sum.Sections, "func "+reGoFunc.FindStringSubmatch(line)[1]+"()")
		}
	}

	sum.AddStat("Lines", countLines(raw))
	sum.AddStat("Types", types)
	sum.AddStat("Functions", funcs)

	if len(imports) > 0 {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentDependencies, Items: imports})
	}
	if len(content) > 0 {
		sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentSource, Text: content, Lang: "go"})
	}
	return sum, nil
}

// goDocComment collects the contiguous comment block directly above the
// package clause, skipping build constraints.
func goDocComment(lines []string) string {
	var block []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// A blank line detaches any comment block above it from the
			// package clause.
			block = nil
		case strings.HasPrefix(trimmed, "//go:build") || strings.HasPrefix(trimmed, "// +build"):
			continue
		case strings.HasPrefix(trimmed, "//"):
			block = append(block, strings.TrimSpace(strings.TrimPrefix(trimmed, "//")))
		case strings.HasPrefix(trimmed, "package "):
			return strings.TrimSpace(strings.Join(block, "\n"))
		default:
			return ""
		}
	}
	return ""
}

// goImports collects import paths from single-line and block form imports,
// keeping any alias and quotes off the recorded path.
func goImports(lines []string) []string {
	var imports []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			if trimmed == ")" {
				inBlock = false
				continue
			}
			if p := importPath(trimmed); p != "" {
				imports = append(imports, p)
			}
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case strings.HasPrefix(trimmed, "import "):
			if p := importPath(strings.TrimPrefix(trimmed, "import ")); p != "" {
				imports = append(imports, p)
			}
		}
	}
	return imports
}

// importPath pulls the quoted path out of one import spec line.
func importPath(spec string) string {
	open := strings.Index(spec, `"`)
	if open < 0 {
		return ""
	}
	end := strings.Index(spec[open+1:], `"`)
	if end < 0 {
		return ""
	}
	return spec[open+1 : open+1+end]
}
