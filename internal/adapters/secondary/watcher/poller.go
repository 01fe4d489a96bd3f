package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// PollingWatcher detects changes by comparing file states on every tick.
// It works on filesystems where notifications are unavailable.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	retry    Retry
	logger   *slog.Logger

	mu      sync.RWMutex
	files   map[string]fileState
	pending map[string]pendingChange
	paths   []string
	started bool
	stopped bool

	events chan ports.FileChangeEvent
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		retry:    Retry{Attempts: 3, Delay: 100 * time.Millisecond},
		logger:   logger.With("watcher", "poll"),
		files:    make(map[string]fileState),
		pending:  make(map[string]pendingChange),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}
}

// SetRetry controls how often a file that fails to read is retried
func (w *PollingWatcher) SetRetry(r Retry) {
	w.retry = r
}

// Watch starts polling paths. Every path must exist when Watch is called;
// later deletions and re-creations are reported.
func (w *PollingWatcher) Watch(ctx context.Context, paths ...string) (<-chan ports.FileChangeEvent, error) {
	abs, err := absPaths(paths)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, ErrStopped
	}
	if w.started {
		w.mu.Unlock()
		return nil, ErrAlreadyWatching
	}
	w.started = true
	w.paths = abs
	w.mu.Unlock()

	for _, path := range abs {
		if err := w.scanFile(path); err != nil {
			w.mu.Lock()
			w.started = false
			w.mu.Unlock()
			return nil, fmt.Errorf("initial scan: %w", err)
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()

	w.logger.Debug("polling files",
		slog.Int("files", len(abs)),
		slog.Duration("interval", w.interval),
		slog.Duration("debounce", w.debounce))
	return w.events, nil
}

// Add starts polling paths on a running watch. Like Watch, every new path
// must exist.
func (w *PollingWatcher) Add(paths ...string) error {
	abs, err := absPaths(paths)
	if err != nil {
		return err
	}

	w.mu.RLock()
	stopped, started := w.stopped, w.started
	known := make(map[string]bool, len(w.paths))
	for _, p := range w.paths {
		known[p] = true
	}
	w.mu.RUnlock()
	if stopped {
		return ErrStopped
	}
	if !started {
		return ErrNotWatching
	}

	var added []string
	for _, path := range abs {
		if known[path] {
			continue
		}
		known[path] = true
		if err := w.scanFile(path); err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		added = append(added, path)
	}

	w.mu.Lock()
	w.paths = append(w.paths, added...)
	w.mu.Unlock()

	if len(added) > 0 {
		w.logger.Debug("polling added files", slog.Int("files", len(added)))
	}
	return nil
}

// Stop stops the file watcher and closes the event channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	close(w.events)
	return nil
}

// fileState is what the poller remembers about a watched file
type fileState struct {
	size    int64
	modTime time.Time
	sum     string
}

// scanFile records the current state of path
func (w *PollingWatcher) scanFile(path string) error {
	state, err := w.stat(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.files[path] = state
	w.mu.Unlock()
	return nil
}

func (w *PollingWatcher) stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, fmt.Errorf("stat file: %w", err)
	}
	sum, err := w.calculateChecksum(path)
	if err != nil {
		return fileState{}, fmt.Errorf("calculate checksum: %w", err)
	}
	return fileState{size: info.Size(), modTime: info.ModTime(), sum: sum}, nil
}

// pollLoop checks every path on each tick and emits changes that have been
// quiet for the debounce period
func (w *PollingWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case now := <-ticker.C:
			w.poll(now)
			w.mu.Lock()
			ready := drainSettled(w.pending, now, w.debounce)
			w.mu.Unlock()

			for _, event := range ready {
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

func (w *PollingWatcher) poll(now time.Time) {
	w.mu.RLock()
	paths := append([]string(nil), w.paths...)
	w.mu.RUnlock()

	for _, path := range paths {
		typ, changed, err := w.compare(path)
		if err != nil {
			w.logger.Warn("watch error", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if !changed {
			continue
		}
		w.mu.Lock()
		w.pending[path] = merge(w.pending[path], typ, now)
		w.mu.Unlock()
	}
}

// compare reports whether path changed since it was last seen and how. The
// checksum is only computed when the size or modification time moved, and a
// touch that leaves the content alone is not a change.
func (w *PollingWatcher) compare(path string) (ports.ChangeType, bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		w.mu.Lock()
		_, existed := w.files[path]
		delete(w.files, path)
		w.mu.Unlock()
		return ports.Deleted, existed, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("stat file: %w", err)
	}

	w.mu.RLock()
	prev, known := w.files[path]
	w.mu.RUnlock()
	if known && prev.size == info.Size() && prev.modTime.Equal(info.ModTime()) {
		return 0, false, nil
	}

	state, err := w.stat(path)
	if err != nil {
		return 0, false, err
	}
	w.mu.Lock()
	w.files[path] = state
	w.mu.Unlock()

	if !known {
		return ports.Created, true, nil
	}
	return ports.Modified, prev.sum != state.sum, nil
}

// calculateChecksum hashes the file with SHA-256, retrying reads that fail
// while an editor is still writing it.
func (w *PollingWatcher) calculateChecksum(path string) (string, error) {
	var sum string
	err := w.retry.Do(w.stopCh, func() error {
		f, err := os.Open(path) // #nosec G304 - a watched path
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		sum = hex.EncodeToString(h.Sum(nil))
		return nil
	})
	return sum, err
}

var (
	// ErrAlreadyWatching is returned by a second call to Watch
	ErrAlreadyWatching = errors.New("watcher is already watching")
	// ErrStopped is returned by Watch and Add after Stop
	ErrStopped = errors.New("watcher is stopped")
	// ErrNotWatching is returned by Add before Watch
	ErrNotWatching = errors.New("watcher is not watching")
)

var _ ports.FileWatcher = (*PollingWatcher)(nil)
