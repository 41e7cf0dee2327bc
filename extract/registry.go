package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Registry maps document types to their extractors and file extensions to
// document types. It is the single source of truth for what the pipeline
// can process: the watcher asks it which extensions matter, the dispatcher
// asks it which extractor handles a type.
type Registry struct {
	extractors map[Type]Extractor
	extensions map[string]Type
}

// NewRegistry returns a registry with every built-in extractor installed.
func NewRegistry() *Registry {
	r := &Registry{
		extractors: make(map[Type]Extractor),
		extensions: make(map[string]Type),
	}
	r.Register(NewPython(), ".py")
	r.Register(NewGo(), ".go")
	r.Register(NewLaTeX(), ".tex")
	r.Register(NewNotebook(), ".ipynb")
	r.Register(NewMarkdown(), ".md", ".markdown")
	r.Register(NewHTML(), ".html", ".htm")
	r.Register(NewPDF(), ".pdf")
	r.Register(NewSpreadsheet(), ".xlsx")
	r.Register(NewPlainText(), ".txt", ".text")
	return r
}

// Register installs an extractor and claims its extensions. A later
// registration for the same type or extension replaces the earlier one.
func (r *Registry) Register(e Extractor, exts ...string) {
	r.extractors[e.Type()] = e
	for _, ext := range exts {
		r.extensions[strings.ToLower(ext)] = e.Type()
	}
}

// Resolve returns the extractor for a type.
func (r *Registry) Resolve(t Type) (Extractor, error) {
	e, ok := r.extractors[t]
	if !ok {
		return nil, fmt.Errorf("extract: no extractor registered for type %q", t)
	}
	return e, nil
}

// Supports reports whether a type has a registered extractor. The pipeline
// checks this before spending a read on the file.
func (r *Registry) Supports(t Type) bool {
	_, ok := r.extractors[t]
	return ok
}

// DetectType maps a path to a document type by extension, case-insensitively.
// Only the final extension counts: "report.tar.gz" is ".gz", not ".tar.gz".
func (r *Registry) DetectType(path string) (Type, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	t, ok := r.extensions[ext]
	return t, ok
}

// SupportedExtensions returns every claimed extension, sorted, with the
// leading dot. The watcher uses this to filter events before dispatch.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Types returns every registered document type, sorted.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
