package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Reloader rebuilds a deck whenever its files change
type Reloader interface {
	Start(ctx context.Context, deckPath string) error
	Stop() error
}

// PreviewService serves a live preview of a deck until its context ends
type PreviewService struct {
	reloader        Reloader
	server          ports.HTTPServer
	browser         ports.BrowserLauncher
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu      sync.Mutex
	serving bool
}

// NewPreviewService creates a preview service. browser may be nil.
func NewPreviewService(reloader Reloader, server ports.HTTPServer, browser ports.BrowserLauncher, shutdownTimeout time.Duration, logger *slog.Logger) *PreviewService {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &PreviewService{
		reloader:        reloader,
		server:          server,
		browser:         browser,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With("service", "preview"),
	}
}

// Serve builds the deck, starts the server and blocks until ctx is done
func (s *PreviewService) Serve(ctx context.Context, path string, port int, host string, openBrowser bool) error {
	s.mu.Lock()
	if s.serving {
		s.mu.Unlock()
		return errors.New("already serving")
	}
	s.serving = true
	s.mu.Unlock()

	if err := s.reloader.Start(ctx, path); err != nil {
		s.setServing(false)
		return fmt.Errorf("starting live reload: %w", err)
	}

	if err := s.server.Start(ctx, port, host); err != nil {
		_ = s.reloader.Stop()
		s.setServing(false)
		return fmt.Errorf("starting server: %w", err)
	}

	url := PreviewURL(s.server, host, port)
	s.logger.Info("serving deck", slog.String("path", path), slog.String("url", url))

	if s.browser != nil {
		if err := s.browser.Launch(url, !openBrowser); err != nil {
			s.logger.Warn("failed to open browser", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

// Stop stops watching and shuts the server down
func (s *PreviewService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.serving {
		s.mu.Unlock()
		return nil
	}
	s.serving = false
	s.mu.Unlock()

	var errs []error
	if err := s.reloader.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping live reload: %w", err))
	}
	if s.server.IsRunning() {
		if err := s.server.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping server: %w", err))
		}
	}
	s.logger.Info("preview stopped")
	return errors.Join(errs...)
}

func (s *PreviewService) setServing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serving = v
}

// PreviewURL is the address browsers should open. Wildcard hosts are shown as
// localhost, and servers that report their bound address (port 0) use it.
func PreviewURL(server ports.HTTPServer, host string, port int) string {
	if a, ok := server.(interface{ Addr() string }); ok {
		if addr := a.Addr(); addr != "" {
			if _, p, err := net.SplitHostPort(addr); err == nil {
				port, _ = strconv.Atoi(p)
			}
		}
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

var _ ports.ServerService = (*PreviewService)(nil)
