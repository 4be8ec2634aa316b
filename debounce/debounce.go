// Package debounce coalesces bursts of calls into one trailing-edge call.
package debounce

import (
	"sync"
	"time"
)

// Task is a handle on a scheduled call.
type Task interface {
	// Stop cancels the call. It reports false if the call already ran or
	// was already stopped.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

type wallClock struct{}

// WallClock schedules on real timers.
func WallClock() Scheduler { return wallClock{} }

func (wallClock) Schedule(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Debouncer delays a call until no new Trigger has arrived for the quiet
// window. Only the most recently triggered function runs.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	task    Task
	pending func()
	gen     uint64

	// running counts calls the timer has started and not finished
	running int
	idle    *sync.Cond
}

func New(s Scheduler, delay time.Duration) *Debouncer {
	if s == nil {
		s = WallClock()
	}
	d := &Debouncer{sched: s, delay: delay}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Delay returns the quiet window.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger replaces any pending call with fn and restarts the quiet window.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.task != nil {
		d.task.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.task = d.sched.Schedule(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		// superseded or cancelled
		d.mu.Unlock()
		return
	}
	fn := d.take()
	d.running++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running--
		if d.running == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	fn()
}

// Cancel drops the pending call without running it and reports whether
// there was one. If the timer has already started the call, Cancel waits
// for it to return. It must not be called from inside a triggered func.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	had := d.pending != nil
	if had {
		if d.task != nil {
			d.task.Stop()
		}
		d.take()
	}
	for d.running > 0 {
		d.idle.Wait()
	}
	return had
}

// Pending reports whether a call is waiting for the quiet window.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// take must be called with mu held.
func (d *Debouncer) take() func() {
	fn := d.pending
	d.pending = nil
	d.task = nil
	d.gen++
	return fn
}
