package http

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10

	// browsers only send close frames and pongs
	readLimit = 512
	sendQueue = 16
)

// previewClient is one browser tab listening for rebuilds
type previewClient struct {
	id     string
	conn   *websocket.Conn
	events chan ports.UpdateEvent
	hub    *Hub
	logger *slog.Logger
}

func (s *Server) handleWebSocket(hub *Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.isValidOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		c := &previewClient{
			id:     uuid.NewString(),
			conn:   conn,
			events: make(chan ports.UpdateEvent, sendQueue),
			hub:    hub,
			logger: s.logger,
		}
		c.events <- ports.UpdateEvent{
			Type:      ports.EventTypeConnected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"client": c.id,
				"build":  s.deps.Source.Builds(),
			},
		}

		if !hub.Join(c.id, c.events) {
			_ = conn.Close()
			return
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordWebSocketConnection()
		}

		go c.write()
		go c.read()
	}
}

// read discards incoming frames so pongs and close frames get handled
func (c *previewClient) read() {
	defer c.hub.Leave(c.id)
	defer c.conn.Close()

	c.conn.SetReadLimit(readLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.logger.Warn("websocket read failed",
				slog.String("client", c.id),
				slog.String("error", err.Error()))
		}
		return
	}
}

// write sends queued events as JSON and pings while idle. A closed events
// channel means the hub dropped the client.
func (c *previewClient) write() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		var err error
		select {
		case event, ok := <-c.events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			err = c.conn.WriteJSON(event)
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = c.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// isValidOrigin accepts same-origin requests, loopback and private network
// hosts in development, and the configured CORS origins otherwise.
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("websocket origin rejected", slog.String("origin", origin), slog.String("error", err.Error()))
		return false
	}

	if strings.EqualFold(originURL.Host, r.Host) {
		return true
	}
	if s.config.IsDevelopment() && isLocalHost(originURL.Hostname()) {
		return true
	}

	for _, allowed := range s.config.GetCORSOrigins() {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
		// *.example.com
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(originURL.Hostname(), allowed[1:]) {
			return true
		}
	}

	s.logger.Warn("websocket origin rejected",
		slog.String("origin", origin),
		slog.Any("allowed_origins", s.config.GetCORSOrigins()))
	return false
}

func isLocalHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified())
}
