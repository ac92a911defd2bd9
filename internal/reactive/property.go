package reactive

import "sync"

// Handle detaches a watcher or cancels a scheduled task. Remove is idempotent.
type Handle interface {
	Remove()
}

// HandleFunc adapts a function to Handle, running it at most once.
func HandleFunc(fn func()) Handle {
	return &onceHandle{fn: fn}
}

type onceHandle struct {
	once sync.Once
	fn   func()
}

func (h *onceHandle) Remove() {
	h.once.Do(h.fn)
}

// Group combines handles into one that removes them all.
func Group(handles ...Handle) Handle {
	return HandleFunc(func() {
		for _, h := range handles {
			if h != nil {
				h.Remove()
			}
		}
	})
}

// Property is an observable value. It is owned by a single loop and is not safe
// for concurrent use.
type Property[T comparable] struct {
	value    T
	watchers []*watcher[T]
}

type watcher[T comparable] struct {
	fn      func(newValue, oldValue T)
	removed bool
}

// NewProperty creates a property holding initial.
func NewProperty[T comparable](initial T) *Property[T] {
	return &Property[T]{value: initial}
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	return p.value
}

// Set stores v and, if it differs from the current value, notifies watchers
// synchronously in registration order. It reports whether the value changed.
func (p *Property[T]) Set(v T) bool {
	if v == p.value {
		return false
	}

	old := p.value
	p.value = v

	// Watchers added during notification wait for the next change.
	snapshot := append([]*watcher[T](nil), p.watchers...)
	for _, w := range snapshot {
		if w.removed {
			continue
		}
		w.fn(v, old)
	}
	return true
}

// Watch registers fn for every subsequent change.
func (p *Property[T]) Watch(fn func(newValue, oldValue T)) Handle {
	w := &watcher[T]{fn: fn}
	p.watchers = append(p.watchers, w)

	return HandleFunc(func() {
		w.removed = true
		for i, candidate := range p.watchers {
			if candidate == w {
				p.watchers = append(p.watchers[:i:i], p.watchers[i+1:]...)
				return
			}
		}
	})
}

// Watchers returns the number of registered watchers.
func (p *Property[T]) Watchers() int {
	return len(p.watchers)
}
