package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildFunc is invoked once per coalesced batch of changes to offers.json
// and/or products.json. Callers typically wire this to reload the catalog
// and rebuild the embedding cache.
type RebuildFunc func(ctx context.Context) error

// Watcher watches the offers and products snapshot files for changes and
// triggers a debounced rebuild. It is optional: Search works fine against a
// static snapshot, and nothing in this package requires a Watcher to exist.
type Watcher struct {
	offersPath   string
	productsPath string
	debounce     time.Duration
	rebuild      RebuildFunc

	fsw *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the two catalog files. debounce is the
// coalescing window applied after the first change before rebuild fires; a
// zero value defaults to 500ms.
func NewWatcher(offersPath, productsPath string, debounce time.Duration, rebuild RebuildFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range uniqueDirs(offersPath, productsPath) {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{
		offersPath:   offersPath,
		productsPath: productsPath,
		debounce:     debounce,
		rebuild:      rebuild,
		fsw:          fsw,
	}, nil
}

func uniqueDirs(paths ...string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Run blocks, coalescing file-system events for the watched files into
// rebuild calls, until ctx is cancelled. Events for files other than the two
// catalog paths are ignored (the watch is directory-scoped, since fsnotify
// cannot watch a single file across editors that write-then-rename).
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.rebuild(ctx); err != nil {
				slog.Error("catalog rebuild failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	abs := filepath.Clean(name)
	return abs == filepath.Clean(w.offersPath) || abs == filepath.Clean(w.productsPath)
}

// Close stops the underlying file-system watch without waiting for Run to
// observe ctx cancellation. Safe to call after Run has already returned.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
