// Package http serves the live preview of a deck: an HTML page, one SVG per
// slide, the .pptx download and a websocket that tells browsers to reload.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// PresentationSource supplies the presentation being previewed
type PresentationSource interface {
	// Current returns the last good presentation and the last build error
	Current() (*entities.Presentation, error)
	// Builds counts successful builds; it changes whenever the deck does
	Builds() int
}

// PageRenderer renders the HTML pages around the slides
type PageRenderer interface {
	RenderPage(ctx context.Context, prs *entities.Presentation, version int) ([]byte, error)
	RenderError(buildErr error) ([]byte, error)
}

// Metrics records preview traffic
type Metrics interface {
	RecordHTTPRequest()
	RecordSlideRender(duration time.Duration)
	RecordWebSocketConnection()
	HealthStatus() map[string]interface{}
}

// Dependencies groups what the server reads from
type Dependencies struct {
	Source PresentationSource
	Slides ports.SlideRenderer
	Pages  PageRenderer
	// Presentations encodes the .pptx download; nil disables it
	Presentations ports.PresentationService
	// Metrics backs /api/stats; nil disables it
	Metrics Metrics
}

// Server implements the HTTPServer interface
type Server struct {
	config entities.ServerConfig
	deps   Dependencies
	logger *slog.Logger

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	hub      *Hub
	cancel   context.CancelFunc
	served   chan struct{}
	running  bool
}

// NewServer creates a preview server
func NewServer(config entities.ServerConfig, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if deps.Source == nil || deps.Slides == nil || deps.Pages == nil {
		return nil, errors.New("server needs a presentation source, a slide renderer and a page renderer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: config,
		deps:   deps,
		logger: logger.With("component", "http"),
	}, nil
}

// Start listens on host:port and serves in the background. Port 0 picks a
// free port; Addr reports the one chosen.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.hub = NewHub(s.logger)
	go s.hub.Run(runCtx)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	s.server = &http.Server{
		Handler:      c.Handler(s.routes()),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.listener = listener
	s.cancel = cancel
	s.served = make(chan struct{})
	s.running = true

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", slog.String("error", err.Error()))
		}
	}(s.server, s.served)

	s.logger.Info("preview server started", slog.String("addr", listener.Addr().String()))
	return nil
}

// Stop closes websocket clients and shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return errors.New("server not running")
	}
	s.running = false

	s.cancel()
	<-s.hub.Stopped()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-s.served

	s.logger.Info("preview server stopped")
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return errors.New("server not running")
	}
	s.hub.Publish(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the address the server listens on, empty when stopped
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// Clients returns the number of connected websocket clients
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return 0
	}
	return s.hub.Len()
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/slides/{index:[0-9]+}.svg", s.handleSlide).Methods(http.MethodGet)
	r.HandleFunc("/api/deck", s.handleDeck).Methods(http.MethodGet)
	r.HandleFunc("/deck.pptx", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket(s.hub))
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	middleware := []mux.MiddlewareFunc{recoveryMiddleware(s.logger), loggingMiddleware(s.logger), securityHeadersMiddleware}
	if s.deps.Metrics != nil {
		r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
		middleware = append(middleware, metricsMiddleware(s.deps.Metrics))
	}
	r.Use(middleware...)
	return r
}

var _ ports.HTTPServer = (*Server)(nil)
