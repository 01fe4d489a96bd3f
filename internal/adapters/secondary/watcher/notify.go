package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// NotifyWatcher implements file watching with OS notifications. The parent
// directories are watched rather than the files, so editors that save by
// renaming a temporary file over the original are still seen.
type NotifyWatcher struct {
	debounce time.Duration
	retry    Retry
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	pending map[string]pendingChange
	started bool
	stopped bool

	events chan ports.FileChangeEvent
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotifyWatcher creates a notification based watcher
func NewNotifyWatcher(debounce time.Duration, logger *slog.Logger) (*NotifyWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &NotifyWatcher{
		debounce: debounce,
		retry:    Retry{Attempts: 1},
		logger:   logger.With("watcher", "notify"),
		watcher:  fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]pendingChange),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}, nil
}

// SetRetry controls how often adding a directory to the watch list is retried
func (w *NotifyWatcher) SetRetry(r Retry) {
	w.retry = r
}

// Watch starts watching paths, which must all exist
func (w *NotifyWatcher) Watch(ctx context.Context, paths ...string) (<-chan ports.FileChangeEvent, error) {
	abs, err := absPaths(paths)
	if err != nil {
		return nil, err
	}
	for _, p := range abs {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("initial scan: stat file: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil, ErrStopped
	}
	if w.started {
		return nil, ErrAlreadyWatching
	}

	for _, p := range abs {
		w.files[p] = true
		if err := w.watchDir(filepath.Dir(p)); err != nil {
			w.files = make(map[string]bool)
			for d := range w.dirs {
				_ = w.watcher.Remove(d)
			}
			w.dirs = make(map[string]bool)
			return nil, err
		}
	}
	w.started = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Debug("watching files",
		slog.Int("files", len(abs)),
		slog.Int("dirs", len(w.dirs)),
		slog.Duration("debounce", w.debounce))
	return w.events, nil
}

// Add watches more paths on a running watch. The new paths must exist.
func (w *NotifyWatcher) Add(paths ...string) error {
	abs, err := absPaths(paths)
	if err != nil {
		return err
	}
	for _, p := range abs {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if !w.started {
		return ErrNotWatching
	}

	added := 0
	for _, p := range abs {
		if w.files[p] {
			continue
		}
		if err := w.watchDir(filepath.Dir(p)); err != nil {
			return err
		}
		w.files[p] = true
		added++
	}
	if added > 0 {
		w.logger.Debug("watching added files", slog.Int("files", added))
	}
	return nil
}

// watchDir adds dir to the fsnotify watch list once. Callers hold mu.
func (w *NotifyWatcher) watchDir(dir string) error {
	if w.dirs[dir] {
		return nil
	}
	if err := w.retry.Do(w.stopCh, func() error { return w.watcher.Add(dir) }); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

// Stop stops the watcher and closes the event channel
func (w *NotifyWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	err := w.watcher.Close()
	close(w.events)
	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}

func (w *NotifyWatcher) run(ctx context.Context) {
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			w.mu.Lock()
			settled := drainSettled(w.pending, now, w.debounce)
			w.mu.Unlock()

			for _, event := range settled {
				select {
				case w.events <- event:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

func (w *NotifyWatcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	var typ ports.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		typ = ports.Created
	case event.Has(fsnotify.Write):
		typ = ports.Modified
	case event.Has(fsnotify.Remove):
		typ = ports.Deleted
	case event.Has(fsnotify.Rename):
		typ = ports.Renamed
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return
	}
	w.pending[path] = merge(w.pending[path], typ, time.Now())
	w.logger.Debug("file event", slog.String("path", path), slog.String("type", typ.String()))
}

var _ ports.FileWatcher = (*NotifyWatcher)(nil)
