package layers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Origin records who caused a layer change.
type Origin string

const (
	OriginUser   Origin = "user"
	OriginMirror Origin = "mirror"
)

// Event is published whenever a view's layer state changes.
type Event struct {
	ID            string    `json:"id"`
	View          string    `json:"view"`
	Layer         string    `json:"layer"`
	Kind          Kind      `json:"kind"`
	Visible       bool      `json:"visible"`
	RendererField string    `json:"renderer_field"`
	Legend        bool      `json:"legend"`
	Origin        Origin    `json:"origin"`
	Timestamp     time.Time `json:"timestamp"`
}

// Handler receives bus events.
type Handler func(Event)

// Bus dispatches layer events synchronously to its subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler)}
}

// Subscribe registers h and returns a function that unregisters it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, candidate := range b.order {
				if candidate == id {
					b.order = append(b.order[:i:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish stamps ev and delivers it to every subscriber in subscription order.
// Handlers may publish further events.
func (b *Bus) Publish(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	// Snapshot under read lock and dispatch without holding it.
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return ev
}

// HandlerCount returns the number of subscribers.
func (b *Bus) HandlerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
