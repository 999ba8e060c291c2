package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the HTTP server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent represents a document change sent to WebSocket clients
type UpdateEvent struct {
	Type        string      `json:"type"`
	SlideNumber int         `json:"slideNumber,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Data        interface{} `json:"data,omitempty"`
}

// UpdateEventType constants
const (
	EventTypeSlidesReplaced = "slides_replaced"
	EventTypeSlideUpdated   = "slide_updated"
	EventTypeSlideInserted  = "slide_inserted"
	EventTypeSlideDeleted   = "slide_deleted"
	EventTypeStyleUpdated   = "style_updated"
	EventTypeConfigUpdated  = "config_updated"
	EventTypeBusy           = "busy"
	EventTypeError          = "error"
	EventTypeOutlineReload  = "outline_reloaded"
)

// EventPublisher receives document change events
type EventPublisher interface {
	Publish(event UpdateEvent)
}
