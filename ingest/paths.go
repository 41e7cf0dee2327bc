package ingest

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rivelin/scribe/extract"
)

// typeSuffixes disambiguates output names for type pairs that share a stem
// in practice: paper.tex next to paper.pdf, analysis.py next to
// analysis.ipynb, main.py next to main.go.
var typeSuffixes = map[extract.Type]string{
	extract.TypeLaTeX:    "_tex",
	extract.TypePDF:      "_pdf",
	extract.TypeNotebook: "_nb",
	extract.TypeGo:       "_go",
}

// OutputLocation is where one rendered page lands.
type OutputLocation struct {
	Dir      string
	Filename string
}

func (l OutputLocation) Path() string {
	return filepath.Join(l.Dir, l.Filename)
}

// ResolveOutput maps an input path to its page location. Only the input's
// basename participates: directories never carry into the output, so a
// crafted input path cannot escape the output root. The same input always
// resolves to the same location.
func ResolveOutput(outputRoot, inputPath string, t extract.Type) OutputLocation {
	return OutputLocation{
		Dir:      outputRoot,
		Filename: sanitizeStem(stem(inputPath)) + typeSuffixes[t] + ".md",
	}
}

// ResolveAsset maps an input path to its verbatim copy under the asset
// root, keeping the original basename.
func ResolveAsset(assetRoot, inputPath string) string {
	return filepath.Join(assetRoot, filepath.Base(inputPath))
}

// AssetRef is the public path a rendered page uses to link its asset copy.
// It is a URL path, forward slashes on every platform.
func AssetRef(baseURL, inputPath string) string {
	return path.Join("/", baseURL, filepath.Base(inputPath))
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sanitizeStem reduces a stem to [A-Za-z0-9_-]; anything else becomes an
// underscore. Stems with no usable characters become "untitled".
func sanitizeStem(s string) string {
	if strings.Trim(s, ".") == "" {
		return "untitled"
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
