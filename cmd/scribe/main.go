package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/rivelin/scribe/ingest"
	"github.com/rivelin/scribe/journal"
	"github.com/rivelin/scribe/observability"
	"github.com/rivelin/scribe/status"
	"github.com/rivelin/scribe/watch"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	once := flag.Bool("once", false, "process the inbox once and exit")
	single := flag.String("file", "", "process one file and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging goes to stderr: stdout belongs to the MCP stream when
	// MCP_TRANSPORT=stdio is set.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipe := ingest.New(cfg, ingest.Options{Logger: logger})
	metrics := observability.NewMetrics()

	// Journal (optional).
	var jnl *journal.Journal
	if cfg.JournalDB != "" {
		jnl, err = journal.Open(cfg.JournalDB)
		if err != nil {
			slog.Error("journal", "error", err)
			os.Exit(1)
		}
		defer jnl.Close()
	}

	// process wraps the pipeline with journal and metric recording. Every
	// entry point (watcher, sweep, single file, MCP tool) funnels through it
	// so all modes leave the same trail.
	process := func(ctx context.Context, path string) (*ingest.Result, error) {
		start := time.Now()
		res, err := pipe.Process(ctx, path)
		elapsed := time.Since(start)

		docType := ""
		if res != nil {
			docType = string(res.Type)
		} else {
			var parseErr *ingest.ErrParse
			if errors.As(err, &parseErr) {
				docType = parseErr.Type
			}
		}
		metrics.ObserveProcessed(docType, elapsed, err)

		if jnl != nil {
			e := &journal.Entry{
				Path:       path,
				Type:       docType,
				DurationMS: elapsed.Milliseconds(),
			}
			if res != nil {
				e.Output = res.OutputPath
			}
			if err != nil {
				e.Error = err.Error()
				var unsupported *ingest.ErrUnsupportedType
				if errors.As(err, &unsupported) {
					e.Status = journal.StatusSkipped
				}
			}
			if recErr := jnl.Record(ctx, e); recErr != nil {
				slog.Warn("journal record failed", "path", path, "error", recErr)
			}
		}
		return res, err
	}
	action := func(ctx context.Context, path string) error {
		_, err := process(ctx, path)
		return err
	}
	sweep := func(ctx context.Context, root string) (int, int) {
		return watch.Sweep(ctx, action, root, pipe.Registry().SupportedExtensions(), logger)
	}

	// Single file mode. Any failure, including an unsupported extension,
	// is fatal here: the operator named the file on purpose.
	if *single != "" {
		res, err := process(ctx, *single)
		if err != nil {
			slog.Error("processing failed", "path", *single, "error", err)
			os.Exit(1)
		}
		slog.Info("processed", "path", *single, "output", res.OutputPath)
		return
	}

	// One-shot sweep mode.
	if *once {
		processed, failed := sweep(ctx, cfg.InboxDir)
		slog.Info("sweep complete", "processed", processed, "failed", failed)
		return
	}

	// MCP stdio mode: serve tools on stdin/stdout instead of watching.
	if env("MCP_TRANSPORT", "") == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "scribe",
			Version: "1.0.0",
		}, nil)
		ingest.RegisterMCP(srv, ingest.MCPTools{
			Process:     process,
			Sweep:       sweep,
			Registry:    pipe.Registry(),
			DefaultRoot: cfg.InboxDir,
		})
		slog.Info("mcp server starting", "transport", "stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	// Default: watch the inbox.
	w := watch.New(action, watch.Options{
		Root:        cfg.InboxDir,
		Extensions:  pipe.Registry().SupportedExtensions(),
		Debounce:    cfg.Debounce(),
		InitialScan: cfg.ScanOnStart(),
		Logger:      logger,
		OnEvent:     metrics.ObserveWatchEvent,
	})
	if err := w.Start(ctx); err != nil {
		slog.Error("watch", "error", err)
		os.Exit(1)
	}

	// Status server (optional).
	var srv *http.Server
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr: cfg.StatusAddr,
			Handler: status.Router(status.Config{
				WatchStats: w.Stats,
				Journal:    jnl,
				Metrics:    metrics.Handler(),
				Logger:     logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			slog.Info("status server starting", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("status server", "error", err)
				os.Exit(1)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("status server shutdown", "error", err)
		}
		shutdownCancel()
	}
	w.Stop()
	slog.Info("stopped")
}

// loadConfig builds the effective configuration: defaults, then the YAML
// file when given, then environment overrides.
func loadConfig(path string) (*ingest.Config, error) {
	var cfg *ingest.Config
	var err error
	if path != "" {
		cfg, err = ingest.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = ingest.DefaultConfig()
	}

	cfg.InboxDir = env("SCRIBE_INBOX_DIR", cfg.InboxDir)
	cfg.OutputDir = env("SCRIBE_OUTPUT_DIR", cfg.OutputDir)
	cfg.AssetDir = env("SCRIBE_ASSET_DIR", cfg.AssetDir)
	cfg.AssetBaseURL = env("SCRIBE_ASSET_BASE_URL", cfg.AssetBaseURL)
	cfg.JournalDB = env("SCRIBE_JOURNAL_DB", cfg.JournalDB)
	cfg.StatusAddr = env("SCRIBE_STATUS_ADDR", cfg.StatusAddr)
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("SCRIBE_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SCRIBE_DEBOUNCE_MS: %w", err)
		}
		cfg.DebounceMS = ms
	}
	if v := os.Getenv("SCRIBE_INITIAL_SCAN"); v != "" {
		scan := v == "1" || v == "true"
		cfg.InitialScan = &scan
	}

	return cfg, cfg.Validate()
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
