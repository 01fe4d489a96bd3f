package ports

import (
	"context"
	"time"
)

// HTTPServer is the preview server as seen by the services driving it
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	// NotifyClients broadcasts event to every connected browser
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent is a message pushed to preview browsers over the websocket
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Event types understood by the preview page
const (
	// EventTypeReload follows a successful rebuild
	EventTypeReload = "reload"
	// EventTypeError carries the message of a failed rebuild
	EventTypeError = "error"
	// EventTypeConnected is the first message of every connection
	EventTypeConnected = "connected"
)
