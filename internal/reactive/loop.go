// Package reactive provides the single-owner event loop and observable properties
// that the view synchronization runs on.
//
// State owned by a Loop is only touched from tasks running on that loop. Other
// goroutines hand work to it with Post or Do.
package reactive

import (
	"context"
	"sync"
	"sync/atomic"
)

// Loop is a cooperative task queue processed one turn at a time.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn for a later turn. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Defer schedules fn on the next turn and returns a handle that can cancel it.
// A task deferred while a turn is running never runs within that same turn.
func (l *Loop) Defer(fn func()) *Deferred {
	d := &Deferred{}
	l.Post(func() {
		if d.cancelled.Load() {
			return
		}
		d.fired.Store(true)
		fn()
	})
	return d
}

// Turn runs exactly the tasks that were queued when it started and returns how many ran.
func (l *Loop) Turn() int {
	l.mu.Lock()
	tasks := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs turns until the queue is empty or maxTurns turns have run.
// It returns the number of turns that ran tasks.
func (l *Loop) Drain(maxTurns int) int {
	turns := 0
	for turns < maxTurns && l.Pending() > 0 {
		l.Turn()
		turns++
	}
	return turns
}

// Run processes turns until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for l.Pending() > 0 {
			l.Turn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from a task running on the same loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deferred is a task scheduled for the next turn.
type Deferred struct {
	cancelled atomic.Bool
	fired     atomic.Bool
}

// Cancel stops the task from running. It reports whether the task was still pending.
func (d *Deferred) Cancel() bool {
	if d.fired.Load() {
		return false
	}
	return d.cancelled.CompareAndSwap(false, true)
}

// Remove cancels the task; it makes a Deferred usable as a Handle.
func (d *Deferred) Remove() {
	d.Cancel()
}

// Fired reports whether the task has run.
func (d *Deferred) Fired() bool {
	return d.fired.Load()
}
