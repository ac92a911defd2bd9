// Package sse provides Server-Sent Events infrastructure for pushing live view state to browsers.
package sse

import (
	"context"
	"time"
)

// Event represents a Server-Sent Event.
// Format: event: <Type>\nid: <ID>\ndata: <JSON payload>\n\n
type Event struct {
	// Type is the event type, e.g. "viewpoint:changed".
	Type string `json:"type"`
	// Data is the JSON payload (must be JSON-serializable).
	Data any `json:"data"`
	// ID is assigned by the broker when empty.
	ID string `json:"id,omitempty"`
	// Retry tells the client how long to wait before reconnecting (milliseconds).
	Retry int `json:"retry,omitempty"`
}

// Publisher sends events to the broker.
type Publisher interface {
	// Publish queues an event for all connected clients.
	// It fails when the context is done or the publish buffer is full.
	Publish(ctx context.Context, event Event) error
}

// Subscriber receives events from the broker.
type Subscriber interface {
	// Subscribe returns a channel of events and a cleanup func. The latest
	// state of each view, layer and cohort is replayed first. A nil channel
	// means the subscription was rejected; otherwise it is closed when the
	// subscription ends.
	Subscribe(ctx context.Context, opts ...ClientOption) (<-chan Event, func())
}

// Broker manages SSE connections and event distribution.
type Broker interface {
	Publisher
	Subscriber
	// Start begins processing events (non-blocking).
	Start(ctx context.Context) error
	// Stop gracefully shuts down the broker.
	Stop() error
	// ClientCount returns the number of connected clients.
	ClientCount() int
	// HeartbeatInterval is how often handlers write keep-alive comments.
	HeartbeatInterval() time.Duration
}

// ClientOptions configures a single SSE client connection.
type ClientOptions struct {
	// View limits view-scoped events to one pane; empty receives every pane.
	View string
	// Types limits delivery to these event types; empty receives all.
	Types      map[string]struct{}
	BufferSize int
}

// Event types for the comparison workspace.
const (
	EventTypeViewpointChanged = "viewpoint:changed"
	EventTypeLayerChanged     = "layer:changed"
	EventTypeCohortLoaded     = "cohort:loaded"
)

// Internal event types.
const (
	eventTypeConnected = "connected"
)

// ViewpointChangedData is the payload for viewpoint:changed events.
type ViewpointChangedData struct {
	View      string  `json:"view"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Scale     float64 `json:"scale"`
	Zoom      float64 `json:"zoom"`
	Timestamp string  `json:"timestamp"`
}

// LayerChangedData is the payload for layer:changed events.
type LayerChangedData struct {
	View          string `json:"view"`
	Layer         string `json:"layer"`
	Visible       bool   `json:"visible"`
	RendererField string `json:"renderer_field,omitempty"`
	Legend        bool   `json:"legend"`
	Origin        string `json:"origin"`
	Timestamp     string `json:"timestamp"`
}

// CohortLoadedData is the payload for cohort:loaded events.
type CohortLoadedData struct {
	Cohort    string `json:"cohort"`
	Sessions  int    `json:"sessions"`
	Clusters  int    `json:"clusters"`
	Moves     int    `json:"moves"`
	Timestamp string `json:"timestamp"`
}

// View returns the pane a workspace event concerns, or "" for global events.
func (e Event) View() string {
	switch data := e.Data.(type) {
	case ViewpointChangedData:
		return data.View
	case LayerChangedData:
		return data.View
	default:
		return ""
	}
}

// stateKey identifies the piece of workspace state e replaces. Events that do
// not describe state are not retained for replay.
func (e Event) stateKey() (string, bool) {
	switch data := e.Data.(type) {
	case ViewpointChangedData:
		return e.Type + "/" + data.View, true
	case LayerChangedData:
		return e.Type + "/" + data.View + "/" + data.Layer, true
	case CohortLoadedData:
		return e.Type + "/" + data.Cohort, true
	default:
		return "", false
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewViewpointChangedEvent creates a viewpoint:changed event.
func NewViewpointChangedEvent(view string, x, y, scale, zoom float64) Event {
	return Event{
		Type: EventTypeViewpointChanged,
		Data: ViewpointChangedData{
			View:      view,
			X:         x,
			Y:         y,
			Scale:     scale,
			Zoom:      zoom,
			Timestamp: now(),
		},
	}
}

// NewLayerChangedEvent creates a layer:changed event.
func NewLayerChangedEvent(view, layer string, visible bool, rendererField string, legend bool, origin string) Event {
	return Event{
		Type: EventTypeLayerChanged,
		Data: LayerChangedData{
			View:          view,
			Layer:         layer,
			Visible:       visible,
			RendererField: rendererField,
			Legend:        legend,
			Origin:        origin,
			Timestamp:     now(),
		},
	}
}

// NewCohortLoadedEvent creates a cohort:loaded event.
func NewCohortLoadedEvent(cohort string, sessions, clusters, moves int) Event {
	return Event{
		Type: EventTypeCohortLoaded,
		Data: CohortLoadedData{
			Cohort:    cohort,
			Sessions:  sessions,
			Clusters:  clusters,
			Moves:     moves,
			Timestamp: now(),
		},
	}
}
