// Package watcher triggers site rebuilds when the catalog data files change
// on disk. Events are debounced so an atomic two-file persist produces a
// single rebuild.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

// watchedFiles are the data-dir files worth rebuilding for. site.yaml is
// deliberately absent: site metadata is resolved once at startup, so an edit
// there needs a restart, not a rebuild.
var watchedFiles = map[string]struct{}{
	"games.json":  {},
	"guides.json": {},
}

// Watcher monitors the data directory and fires a callback after changes
// settle.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	fsw   *fsnotify.Watcher
	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Watcher over the data directory. A zero debounce defaults to
// 250ms, long enough to fold both renames of an atomic persist into one
// callback.
func New(dir string, debounce time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create fsnotify watcher")
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, errors.CodeInternal, "watch %s", dir)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Start blocks processing events until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for catalog changes", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher and cancels any pending callback.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if _, ok := watchedFiles[filepath.Base(event.Name)]; !ok {
		return
	}

	w.logger.Debug("catalog file changed", "file", filepath.Base(event.Name), "op", event.Op.String())

	// Reset the settle timer; the callback fires once writes stop.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}
