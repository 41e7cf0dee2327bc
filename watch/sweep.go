package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Sweep processes every matching file under root exactly once, in walk
// order, without subscribing or debouncing. Per-file failures are logged
// and counted, never raised; cancellation stops the walk early.
func Sweep(ctx context.Context, action Action, root string, extensions []string, logger *slog.Logger) (processed, failed int) {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	start := time.Now()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("watch: sweep walk error", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if hidden(d.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden(d.Name()) {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := action(ctx, path); err != nil {
			failed++
			logger.Warn("watch: sweep file failed", "path", path, "error", err)
			return nil
		}
		processed++
		return nil
	})
	if err != nil {
		logger.Warn("watch: sweep aborted", "root", root, "error", err)
	}

	logger.Info("watch: sweep complete",
		"root", root,
		"processed", processed,
		"failed", failed,
		"duration", time.Since(start))
	return processed, failed
}
