package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// BuildHandler is called with every successfully rebuilt presentation
type BuildHandler func(ctx context.Context, prs *entities.Presentation) error

// BuildRecorder is told how long every rebuild took and whether it failed
type BuildRecorder interface {
	RecordBuild(duration time.Duration, err error)
}

// LiveReloadService rebuilds a deck whenever it or one of its table sources
// changes, and tells preview clients to reload.
type LiveReloadService struct {
	watcher  ports.FileWatcher
	repo     ports.DeckRepository
	decks    ports.DeckService
	server   ports.HTTPServer
	logger   *slog.Logger
	handlers []BuildHandler
	metrics  BuildRecorder

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	deckPath    string
	deck        *entities.Deck
	watched     map[string]bool
	current     *entities.Presentation
	lastErr     error
	builds      int
	done        chan struct{}
}

// NewLiveReloadService creates a new live reload service. server may be nil
// when no preview clients need to be notified.
func NewLiveReloadService(
	watcher ports.FileWatcher,
	repo ports.DeckRepository,
	decks ports.DeckService,
	server ports.HTTPServer,
	logger *slog.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher: watcher,
		repo:    repo,
		decks:   decks,
		server:  server,
		logger:  logger.With("service", "live_reload"),
	}
}

// SetServer sets the server whose clients are told about rebuilds. The
// server usually reads from this service, so it is attached after both exist.
func (s *LiveReloadService) SetServer(server ports.HTTPServer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = server
}

// SetMetrics records every rebuild in metrics
func (s *LiveReloadService) SetMetrics(metrics BuildRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// OnBuild registers a handler run after every successful build
func (s *LiveReloadService) OnBuild(h BuildHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Start builds the deck once and then watches it and its table sources
func (s *LiveReloadService) Start(ctx context.Context, deckPath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.deckPath = deckPath
	s.mu.Unlock()

	prs, err := s.Rebuild(ctx)
	if err != nil {
		s.reset()
		return err
	}

	s.mu.Lock()
	deck := s.deck
	s.mu.Unlock()
	paths := append([]string{deckPath}, TableSources(deck, filepath.Dir(deckPath))...)

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, paths...)
	if err != nil {
		cancel()
		s.reset()
		return fmt.Errorf("starting watcher: %w", err)
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.watchCancel = cancel
	s.done = done
	s.watched = make(map[string]bool, len(paths))
	for _, p := range paths {
		s.watched[p] = true
	}
	s.mu.Unlock()

	s.logger.Info("watching deck",
		slog.String("path", deckPath),
		slog.Int("files", len(paths)),
		slog.Int("slides", prs.SlideCount()))

	go func() {
		defer close(done)
		s.handleEvents(watchCtx, events)
	}()

	return nil
}

func (s *LiveReloadService) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = false
	s.watchCancel = nil
	s.watched = nil
}

// Stop stops watching and waits for the event loop to exit
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.watchCancel, s.done
	s.watchCancel = nil
	s.watching = false
	s.watched = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// Current returns the last good presentation and the error of the last build
func (s *LiveReloadService) Current() (*entities.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.lastErr
}

// Builds returns the number of successful builds
func (s *LiveReloadService) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}

// Rebuild loads and builds the deck, keeping the previous presentation when
// the build fails. Table sources the deck starts reading are added to the
// running watch.
func (s *LiveReloadService) Rebuild(ctx context.Context) (*entities.Presentation, error) {
	s.mu.Lock()
	path := s.deckPath
	handlers := append([]BuildHandler(nil), s.handlers...)
	metrics := s.metrics
	s.mu.Unlock()

	if path == "" {
		return nil, errors.New("no deck path set")
	}

	start := time.Now()
	deck, prs, err := s.build(ctx, path)
	if metrics != nil {
		metrics.RecordBuild(time.Since(start), err)
	}
	if err == nil {
		for _, h := range handlers {
			if herr := h(ctx, prs); herr != nil {
				err = fmt.Errorf("build handler: %w", herr)
				break
			}
		}
	}

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.current = prs
		s.deck = deck
		s.builds++
	}
	s.mu.Unlock()

	if err == nil {
		s.watchSources(deck, path)
	}
	return prs, err
}

func (s *LiveReloadService) build(ctx context.Context, path string) (*entities.Deck, *entities.Presentation, error) {
	deck, err := s.repo.Load(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading deck: %w", err)
	}
	prs, err := s.decks.Build(ctx, deck, filepath.Dir(path))
	if err != nil {
		return nil, nil, fmt.Errorf("building deck: %w", err)
	}
	return deck, prs, nil
}

// watchSources adds the table sources of deck that are not yet watched. It
// does nothing before the watch has started.
func (s *LiveReloadService) watchSources(deck *entities.Deck, path string) {
	s.mu.Lock()
	if s.watched == nil {
		s.mu.Unlock()
		return
	}
	var added []string
	for _, src := range TableSources(deck, filepath.Dir(path)) {
		if !s.watched[src] {
			added = append(added, src)
		}
	}
	s.mu.Unlock()

	if len(added) == 0 {
		return
	}
	if err := s.watcher.Add(added...); err != nil {
		s.logger.Warn("failed to watch new table sources",
			slog.String("error", err.Error()),
			slog.Int("files", len(added)))
		return
	}

	s.mu.Lock()
	if s.watched != nil {
		for _, src := range added {
			s.watched[src] = true
		}
	}
	s.mu.Unlock()
	s.logger.Info("watching new table sources", slog.Any("paths", added))
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("file change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			if _, err := s.Rebuild(ctx); err != nil {
				s.logger.Error("rebuild failed",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
				)
				s.notify(ports.UpdateEvent{
					Type:      ports.EventTypeError,
					Timestamp: time.Now(),
					Data:      map[string]interface{}{"file": event.Path, "error": err.Error()},
				})
				continue
			}

			s.notify(ports.UpdateEvent{
				Type:      ports.EventTypeReload,
				Timestamp: event.Timestamp,
				Data: map[string]interface{}{
					"file": event.Path,
					"type": event.Type.String(),
				},
			})
		}
	}
}

func (s *LiveReloadService) notify(event ports.UpdateEvent) {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return
	}
	if err := server.NotifyClients(event); err != nil {
		s.logger.Warn("failed to notify websocket clients",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
		)
		return
	}
	s.logger.Debug("websocket clients notified", slog.String("event_type", event.Type))
}
