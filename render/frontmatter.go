package render

import "strings"

// Field is one frontmatter entry. A nil List renders the scalar Value;
// otherwise the list renders as a bracketed, quoted sequence. Fields keep
// their insertion order, which fixes the byte layout of the block.
type Field struct {
	Key   string
	Value string
	List  []string
}

// formatFrontmatter renders the delimited block. Every string value is
// quoted, so punctuation in titles can never change the YAML shape.
func formatFrontmatter(fields []Field) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	for _, f := range fields {
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		if f.List != nil {
			sb.WriteString("[")
			for i, v := range f.List {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(quote(v))
			}
			sb.WriteString("]")
		} else {
			sb.WriteString(quote(f.Value))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	return sb.String()
}

// quote double-quotes a scalar, escaping backslashes and quotes. Newlines
// become spaces; frontmatter values are single-line by construction.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n', '\r':
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
