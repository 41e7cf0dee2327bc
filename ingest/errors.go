package ingest

import "fmt"

// ErrUnsupportedType is returned when a path's extension maps to no
// registered extractor. Watch and sweep callers skip these; single-file
// callers treat them as fatal.
type ErrUnsupportedType struct {
	Path string
	Ext  string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("ingest: unsupported type %q: %s", e.Ext, e.Path)
}

// ErrRead is returned when the input file cannot be read, including the
// case where it vanished between the event and the attempt.
type ErrRead struct {
	Path  string
	Cause error
}

func (e *ErrRead) Error() string {
	return fmt.Sprintf("ingest: read %s: %v", e.Path, e.Cause)
}

func (e *ErrRead) Unwrap() error { return e.Cause }

// ErrParse is returned when an extractor rejects the content. Nothing has
// been written when this surfaces.
type ErrParse struct {
	Path  string
	Type  string
	Cause error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("ingest: parse %s as %s: %v", e.Path, e.Type, e.Cause)
}

func (e *ErrParse) Unwrap() error { return e.Cause }

// ErrWrite is returned when the asset copy or the rendered page cannot be
// written.
type ErrWrite struct {
	Path  string
	Cause error
}

func (e *ErrWrite) Error() string {
	return fmt.Sprintf("ingest: write %s: %v", e.Path, e.Cause)
}

func (e *ErrWrite) Unwrap() error { return e.Cause }
