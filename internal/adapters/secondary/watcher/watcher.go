// Package watcher reports changes to deck files and the table sources they
// reference, either by polling or through OS notifications.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// New creates the watcher selected by cfg.Mode
func New(cfg entities.WatcherConfig, logger *slog.Logger) (ports.FileWatcher, error) {
	retry := Retry{Attempts: cfg.MaxRetries + 1, Delay: cfg.GetRetryDelay()}

	switch cfg.GetMode() {
	case entities.WatcherModeNotify:
		w, err := NewNotifyWatcher(cfg.GetDebounce(), logger)
		if err != nil {
			return nil, err
		}
		w.SetRetry(retry)
		return w, nil
	case entities.WatcherModePoll:
		w := NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger)
		w.SetRetry(retry)
		return w, nil
	default:
		return nil, fmt.Errorf("unknown watcher mode %q", cfg.Mode)
	}
}

// Retry repeats an operation a fixed number of times
type Retry struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn until it succeeds, the attempts are used up or stop is closed
func (r Retry) Do(stop <-chan struct{}, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-stop:
			return err
		case <-time.After(r.Delay):
		}
	}
	return err
}

func absPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths to watch")
	}

	seen := make(map[string]bool, len(paths))
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", p, err)
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		abs = append(abs, a)
	}
	return abs, nil
}

type pendingChange struct {
	typ ports.ChangeType
	at  time.Time
}

// merge folds a new change into the one still waiting out its debounce
func merge(prev pendingChange, typ ports.ChangeType, at time.Time) pendingChange {
	if !prev.at.IsZero() {
		switch {
		case prev.typ == ports.Created && typ == ports.Modified:
			typ = ports.Created
		case prev.typ == ports.Deleted && typ == ports.Created:
			typ = ports.Modified
		}
	}
	return pendingChange{typ: typ, at: at}
}

// drainSettled removes the changes that have been quiet for debounce and
// returns them sorted by path
func drainSettled(pending map[string]pendingChange, now time.Time, debounce time.Duration) []ports.FileChangeEvent {
	var events []ports.FileChangeEvent
	for path, change := range pending {
		if now.Sub(change.at) < debounce {
			continue
		}
		events = append(events, ports.FileChangeEvent{
			Path:      path,
			Type:      change.typ,
			Timestamp: change.at,
		})
		delete(pending, path)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
