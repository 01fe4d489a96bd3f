package http

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// subscriber is the hub's view of one websocket client
type subscriber struct {
	id     string
	events chan ports.UpdateEvent
}

// Hub fans update events out to preview clients. The run loop owns every
// subscriber channel and is the only place they are closed.
type Hub struct {
	logger *slog.Logger

	join    chan subscriber
	leave   chan string
	publish chan ports.UpdateEvent
	stopped chan struct{}

	mu   sync.RWMutex
	subs map[string]chan ports.UpdateEvent
}

// NewHub returns a hub that does nothing until Run is called
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		join:    make(chan subscriber),
		leave:   make(chan string),
		publish: make(chan ports.UpdateEvent, 64),
		stopped: make(chan struct{}),
		subs:    make(map[string]chan ports.UpdateEvent),
	}
}

// Run serves joins, leaves and publishes until ctx is done. Every remaining
// subscriber channel is closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for id, ch := range h.subs {
			close(ch)
			delete(h.subs, id)
		}
		h.mu.Unlock()
		close(h.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.join:
			h.mu.Lock()
			h.subs[sub.id] = sub.events
			h.mu.Unlock()
			h.logger.Debug("preview client joined", slog.String("client", sub.id))
		case id := <-h.leave:
			h.drop(id, "preview client left")
		case event := <-h.publish:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event ports.UpdateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			// a full buffer means the client stopped reading
			close(ch)
			delete(h.subs, id)
			h.logger.Warn("dropped slow preview client", slog.String("client", id))
		}
	}
}

func (h *Hub) drop(id, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[id]
	if !ok {
		return
	}
	close(ch)
	delete(h.subs, id)
	h.logger.Debug(msg, slog.String("client", id))
}

// Join subscribes events under id. It reports false when the hub has
// already stopped, in which case events is never closed by the hub.
func (h *Hub) Join(id string, events chan ports.UpdateEvent) bool {
	select {
	case h.join <- subscriber{id: id, events: events}:
		return true
	case <-h.stopped:
		return false
	}
}

// Leave unsubscribes id and closes its channel
func (h *Hub) Leave(id string) {
	select {
	case h.leave <- id:
	case <-h.stopped:
	}
}

// Publish queues event for every subscriber
func (h *Hub) Publish(event ports.UpdateEvent) {
	select {
	case h.publish <- event:
	case <-h.stopped:
	}
}

// Len is the number of subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stopped is closed once Run has returned
func (h *Hub) Stopped() <-chan struct{} {
	return h.stopped
}
