package sse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// client represents a connected SSE client.
type client struct {
	id         string
	events     chan Event
	view       string
	types      map[string]struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	lastActive atomic.Int64
	closed     atomic.Bool
	closeMu    sync.Mutex
}

// newClient creates a new SSE client.
func newClient(ctx context.Context, opts ClientOptions) *client {
	clientCtx, cancel := context.WithCancel(ctx)

	c := &client{
		id:     generateClientID(),
		events: make(chan Event, opts.BufferSize),
		view:   opts.View,
		types:  opts.Types,
		ctx:    clientCtx,
		cancel: cancel,
	}
	c.lastActive.Store(time.Now().UnixNano())
	return c
}

func generateClientID() string {
	return "sse-" + uuid.NewString()
}

// close terminates the client connection.
func (c *client) close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return
	}

	c.closed.Store(true)
	c.cancel()
	close(c.events)
}

// isClosed returns true if the client has been closed.
func (c *client) isClosed() bool {
	return c.closed.Load()
}

// accepts reports whether event is routed to this client.
func (c *client) accepts(event Event) bool {
	if c.types != nil {
		if _, ok := c.types[event.Type]; !ok {
			return false
		}
	}
	view := event.View()
	return c.view == "" || view == "" || view == c.view
}

// send delivers event without blocking. It returns false when the client is
// closed or its buffer is full; filtered events count as delivered.
func (c *client) send(event Event) bool {
	if c.isClosed() {
		return false
	}

	if !c.accepts(event) {
		return true
	}

	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed.Load() {
		return false
	}

	select {
	case c.events <- event:
		c.lastActive.Store(time.Now().UnixNano())
		return true
	default:
		// slow client
		return false
	}
}
