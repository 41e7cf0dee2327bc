// Package ingest processes one input file end to end: detect its type,
// read it, extract a summary, render the page, copy the asset, write the
// output. The pipeline is the only component that touches the filesystem;
// extractors stay pure and the render layer stays deterministic.
//
// Every attempt starts from scratch. Nothing is cached between events, no
// journal entry is consulted before processing, and all writes go through
// a tmp-then-rename step, so reprocessing an unchanged file is byte-stable
// and a crash can never leave a truncated page behind.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivelin/scribe/extract"
	"github.com/rivelin/scribe/render"
)

// Options configures a Pipeline beyond the file layout.
type Options struct {
	Registry *extract.Registry
	Logger   *slog.Logger
}

func (o *Options) defaults() {
	if o.Registry == nil {
		o.Registry = extract.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Pipeline processes input files. One instance serves any number of calls;
// Process holds no state between them.
type Pipeline struct {
	cfg    *Config
	reg    *extract.Registry
	logger *slog.Logger
}

// Result describes one successful processing attempt.
type Result struct {
	Input      string
	Type       extract.Type
	Title      string
	OutputPath string
	AssetPath  string
	Duration   time.Duration
}

func New(cfg *Config, opts Options) *Pipeline {
	opts.defaults()
	return &Pipeline{cfg: cfg, reg: opts.Registry, logger: opts.Logger}
}

// Registry exposes the extractor registry so callers can share its
// extension list and detection.
func (p *Pipeline) Registry() *extract.Registry { return p.reg }

// Process runs one file through the pipeline. Failures are typed
// (ErrUnsupportedType, ErrRead, ErrParse, ErrWrite) and scoped to this one
// file; callers decide whether to skip, log or abort. A parse failure
// writes nothing: no page, no asset overwrite.
func (p *Pipeline) Process(ctx context.Context, inputPath string) (*Result, error) {
	start := time.Now()

	t, ok := p.reg.DetectType(inputPath)
	if !ok {
		return nil, &ErrUnsupportedType{Path: inputPath, Ext: strings.ToLower(filepath.Ext(inputPath))}
	}
	ex, err := p.reg.Resolve(t)
	if err != nil {
		return nil, &ErrUnsupportedType{Path: inputPath, Ext: strings.ToLower(filepath.Ext(inputPath))}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fresh read on every attempt. The file may have changed since the
	// event fired; the bytes on disk now are the truth.
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, &ErrRead{Path: inputPath, Cause: err}
	}

	sum, err := ex.Extract(raw)
	if err != nil {
		return nil, &ErrParse{Path: inputPath, Type: string(t), Cause: err}
	}

	if sum.Title == "" {
		sum.Title = stem(inputPath)
	}
	if sum.SidebarLabel == "" {
		sum.SidebarLabel = sum.Title
	}
	sum.AssetRef = AssetRef(p.cfg.AssetBaseURL, inputPath)
	doc := render.Render(sum)

	assetPath := ResolveAsset(p.cfg.AssetDir, inputPath)
	if err := writeFileAtomic(assetPath, raw); err != nil {
		return nil, &ErrWrite{Path: assetPath, Cause: err}
	}

	loc := ResolveOutput(p.cfg.OutputDir, inputPath, t)
	if err := writeFileAtomic(loc.Path(), []byte(doc.Text())); err != nil {
		return nil, &ErrWrite{Path: loc.Path(), Cause: err}
	}

	res := &Result{
		Input:      inputPath,
		Type:       t,
		Title:      sum.Title,
		OutputPath: loc.Path(),
		AssetPath:  assetPath,
		Duration:   time.Since(start),
	}
	p.logger.Info("ingest: processed file",
		"path", inputPath,
		"type", string(t),
		"output", loc.Path(),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// writeFileAtomic writes via a sibling tmp file and renames it into place,
// removing the tmp file when the rename fails. Readers of the target never
// observe a partial write.
func writeFileAtomic(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
