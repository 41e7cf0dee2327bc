// Package watch provides a "subscribe to a folder, debounce, process" loop.
// It standardises the reactive half of the pipeline so every consumer gets
// consistent quiet windows, event filtering, and observability for free.
//
// Typical usage:
//
//	w := watch.New(action, watch.Options{Root: "inbox", Debounce: 2 * time.Second})
//	if err := w.Start(ctx); err != nil { ... }
//	defer w.Stop()
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Action processes one input file. Errors are counted and logged, never
// propagated out of the loop: one bad file must not stop the watch.
type Action func(ctx context.Context, path string) error

// Options tunes the watcher behaviour.
type Options struct {
	// Root is the folder to watch, including subfolders created later.
	Root string
	// Extensions limits processing to these file extensions (with dot,
	// matched case-insensitively). Empty means every file.
	Extensions []string
	// Debounce is the quiet period after a file's last event before the
	// action fires. More events for the same file during the window reset
	// its deadline. 0 means fire immediately.
	Debounce time.Duration
	// InitialScan processes files already present under Root at start,
	// through the same debounce path as live events.
	InitialScan bool
	// Logger overrides the default slog logger.
	Logger *slog.Logger
	// OnEvent observes the outcome of each file event: "scheduled",
	// "skipped" or "dropped". Nil disables.
	OnEvent func(result string)
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.OnEvent == nil {
		o.OnEvent = func(string) {}
	}
}

// Watcher subscribes to filesystem events under a root and runs an action
// per settled file. All debounce state lives in the event loop goroutine;
// the action runs there too, so one file is in flight at a time.
//
// The lifecycle is one-way: a stopped Watcher stays stopped. Create a new
// instance to watch again.
type Watcher struct {
	action Action
	opts   Options
	exts   map[string]bool

	fw    *fsnotify.Watcher
	state atomic.Int32
	done  chan struct{}
	seed  []string

	// Counters for observability (exported via Stats).
	events    atomic.Int64
	skipped   atomic.Int64
	processed atomic.Int64
	failures  atomic.Int64
	procNs    atomic.Int64
}

const (
	stateIdle int32 = iota
	stateActive
	stateStopped
)

// Stats are point-in-time counters.
type Stats struct {
	Events         int64         `json:"events"`
	Skipped        int64         `json:"skipped"`
	Processed      int64         `json:"processed"`
	Failures       int64         `json:"failures"`
	AvgProcessTime time.Duration `json:"avg_process_time"`
}

// New creates a Watcher. Call Start to begin the loop.
func New(action Action, opts Options) *Watcher {
	opts.defaults()
	w := &Watcher{
		action: action,
		opts:   opts,
		exts:   make(map[string]bool, len(opts.Extensions)),
		done:   make(chan struct{}),
	}
	for _, ext := range opts.Extensions {
		w.exts[strings.ToLower(ext)] = true
	}
	return w
}

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	s := Stats{
		Events:    w.events.Load(),
		Skipped:   w.skipped.Load(),
		Processed: w.processed.Load(),
		Failures:  w.failures.Load(),
	}
	if s.Processed > 0 {
		s.AvgProcessTime = time.Duration(w.procNs.Load() / s.Processed)
	}
	return s
}

// Active reports whether the event loop is running.
func (w *Watcher) Active() bool { return w.state.Load() == stateActive }

// Start subscribes to the root and launches the event loop. It fails on a
// missing root, on a second call, and on a stopped watcher.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.state.CompareAndSwap(stateIdle, stateActive) {
		return fmt.Errorf("watch: already started or stopped")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.state.Store(stateStopped)
		return fmt.Errorf("watch: subscribe: %w", err)
	}
	w.fw = fw

	// Subscribe the whole tree up front and remember pre-existing files
	// for the initial scan.
	err = filepath.WalkDir(w.opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if hidden(d.Name()) && path != w.opts.Root {
				return filepath.SkipDir
			}
			return fw.Add(path)
		}
		if w.opts.InitialScan && w.wants(path) {
			w.seed = append(w.seed, path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		w.state.Store(stateStopped)
		return fmt.Errorf("watch: subscribe %s: %w", w.opts.Root, err)
	}

	w.opts.Logger.Info("watch: started",
		"root", w.opts.Root,
		"debounce", w.opts.Debounce,
		"initial_scan", w.opts.InitialScan,
		"pending", len(w.seed))

	go w.loop(ctx)
	return nil
}

// Stop ends the subscription and waits for the loop to drain, letting any
// in-flight action finish. Stopping is terminal.
func (w *Watcher) Stop() {
	prev := w.state.Swap(stateStopped)
	if prev != stateActive {
		return
	}
	w.fw.Close()
	<-w.done
}

// wants reports whether a path is processable: not hidden, extension known.
func (w *Watcher) wants(path string) bool {
	base := filepath.Base(path)
	if hidden(base) {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(base))]
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// loop owns every piece of debounce state: the pending deadline table and
// the single timer that drains it. Nothing else reads or writes them.
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.state.Store(stateStopped)

	log := w.opts.Logger
	pending := make(map[string]time.Time)
	var timer *time.Timer
	var timerCh <-chan time.Time

	// rearm points the timer at the earliest pending deadline.
	rearm := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerCh = nil
		}
		var next time.Time
		for _, dl := range pending {
			if next.IsZero() || dl.Before(next) {
				next = dl
			}
		}
		if next.IsZero() {
			return
		}
		d := time.Until(next)
		if d < 0 {
			d = 0
		}
		timer = time.NewTimer(d)
		timerCh = timer.C
	}

	schedule := func(path string) {
		if w.opts.Debounce <= 0 {
			w.fire(ctx, path)
			return
		}
		pending[path] = time.Now().Add(w.opts.Debounce)
		rearm()
	}

	for _, path := range w.seed {
		schedule(path)
	}
	w.seed = nil

	for {
		select {
		case <-ctx.Done():
			log.Info("watch: stopped", "reason", "context")
			if timer != nil {
				timer.Stop()
			}
			w.fw.Close()
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				log.Info("watch: stopped", "reason", "closed")
				if timer != nil {
					timer.Stop()
				}
				return
			}
			w.events.Add(1)
			w.handleEvent(ctx, ev, pending, schedule, rearm)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Subscription errors are reported, never fatal.
			log.Warn("watch: subscription error", "error", err)

		case <-timerCh:
			now := time.Now()
			for path, dl := range pending {
				if dl.After(now) {
					continue
				}
				delete(pending, path)
				w.fire(ctx, path)
			}
			rearm()
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event, pending map[string]time.Time, schedule func(string), rearm func()) {
	log := w.opts.Logger

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		// A vanished file has nothing to process; outputs are kept.
		if _, ok := pending[ev.Name]; ok {
			delete(pending, ev.Name)
			rearm()
			w.opts.OnEvent("dropped")
		}
		return

	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			// Gone already; the Remove event will follow.
			return
		}
		if info.IsDir() {
			if ev.Op.Has(fsnotify.Create) && !hidden(filepath.Base(ev.Name)) {
				w.addTree(ev.Name, schedule)
			}
			return
		}
		if !w.wants(ev.Name) {
			w.skipped.Add(1)
			w.opts.OnEvent("skipped")
			log.Debug("watch: skipping file", "path", ev.Name)
			return
		}
		w.opts.OnEvent("scheduled")
		schedule(ev.Name)
	}
}

// addTree subscribes a folder created after start, then schedules any files
// that arrived inside it before the subscription took effect.
func (w *Watcher) addTree(root string, schedule func(string)) {
	log := w.opts.Logger
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if hidden(d.Name()) && path != root {
				return filepath.SkipDir
			}
			if err := w.fw.Add(path); err != nil {
				log.Warn("watch: subscribe subfolder failed", "path", path, "error", err)
			}
			return nil
		}
		if w.wants(path) {
			schedule(path)
		}
		return nil
	})
	if err != nil {
		log.Warn("watch: walk subfolder failed", "path", root, "error", err)
	}
}

func (w *Watcher) fire(ctx context.Context, path string) {
	log := w.opts.Logger
	log.Debug("watch: processing file", "path", path)
	start := time.Now()
	if err := w.action(ctx, path); err != nil {
		w.failures.Add(1)
		log.Error("watch: processing failed", "path", path, "error", err)
		return
	}
	elapsed := time.Since(start)
	w.processed.Add(1)
	w.procNs.Add(int64(elapsed))
	log.Info("watch: processing complete", "path", path, "duration", elapsed)
}
