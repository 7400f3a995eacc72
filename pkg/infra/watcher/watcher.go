// Package watcher reports changes to dictionary files. Parent directories
// are watched so editors that replace files by rename are still seen.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultDebounce is how long a dictionary must stay quiet before reload
const DefaultDebounce = 500 * time.Millisecond

// Watcher maps watched files to dictionary names
type Watcher struct {
	fsw      *fsnotify.Watcher
	targets  map[string]string
	debounce time.Duration
	pending  map[string]time.Time // dictionary name → last change
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New watches every file in targets (path → dictionary name)
func New(targets map[string]string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		targets:  make(map[string]string, len(targets)),
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for path, name := range targets {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, goerr.Wrap(err, "failed to resolve watched path", goerr.V("path", path))
		}
		w.targets[abs] = name
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, goerr.Wrap(err, "failed to watch directory", goerr.V("dir", dir))
		}
	}

	return w, nil
}

// Run blocks until ctx is done, calling onChange once per burst of changes
// to a dictionary's files
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, name string)) error {
	defer w.fsw.Close()
	logger := ctxlog.From(ctx)

	tick := w.debounce / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", "error", err)

		case now := <-ticker.C:
			for name, last := range w.pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(w.pending, name)
				logger.Info("Dictionary files changed", "dictionary", name)
				onChange(ctx, name)
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	name, ok := w.targets[filepath.Clean(event.Name)]
	if !ok {
		return
	}
	ctxlog.From(ctx).Debug("Dictionary file event", "path", event.Name, "op", event.Op.String())
	w.pending[name] = time.Now()
}
