// Package debounce coalesces bursts of calls into a single trailing-edge invocation.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending call. A newer Trigger supersedes the pending one;
// the pending function only runs after the quiet window elapses without another Trigger.
type Debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
}

// New returns a Debouncer with the given quiet window. Non-positive windows run calls on the next tick.
func New(wait time.Duration) *Debouncer {
	if wait < 0 {
		wait = 0
	}
	return &Debouncer{wait: wait}
}

// Wait returns the quiet window.
func (d *Debouncer) Wait() time.Duration { return d.wait }

// Trigger schedules fn, cancelling any call that has not fired yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel drops the pending call. It reports whether something was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearLocked()
}

// Flush runs the pending call immediately on the caller's goroutine.
// It reports whether a call was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.clearLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a call is waiting for the quiet window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop must not run a superseded call.
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) clearLocked() bool {
	had := d.pending != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
	return had
}
