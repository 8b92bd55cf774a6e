// Package debounce delivers a value only after it stopped changing for a
// quiescence window.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the search-input quiescence window
const DefaultWait = 400 * time.Millisecond

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func stdAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Debouncer forwards the last pushed value to fn once no new value arrived
// within wait. Each Push stops the pending timer before arming a new one.
type Debouncer[T any] struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func(T)
	after   afterFunc
	pending timer
	gen     uint64
	stopped bool
}

// New creates a debouncer; a non-positive wait falls back to DefaultWait
func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer[T]{wait: wait, fn: fn, after: stdAfterFunc}
}

// Push records a new value and restarts the quiescence window
func (d *Debouncer[T]) Push(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.after(d.wait, func() {
		d.fire(gen, value)
	})
}

func (d *Debouncer[T]) fire(gen uint64, value T) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	d.fn(value)
}

// Flush cancels the pending timer; a value that has not settled is dropped
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

// Stop cancels any pending delivery and ignores further pushes
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.stopped = true
}
