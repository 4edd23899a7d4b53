package engine

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one firing.
//
// Every Trigger restarts the window. When the window elapses with no further
// trigger, fire is called with the generation of the trigger that armed it.
// The consumer must Claim that generation before acting: a callback that
// lost a race with a later Trigger, Cancel or Suspend carries a stale
// generation and is rejected.
//
// While suspended, triggers are ignored. Suspend and Trigger share the lock,
// so a trigger that raced past a caller's own checks still cannot arm a
// window once Suspend has returned.
//
// There is a single timer handle, owned by the Debouncer.
//
// Thread-safety: all methods are safe for concurrent use. fire is called
// without the internal lock held.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	fire    func(gen uint64)
	timer   Timer
	gen     uint64
	pending bool

	suspended bool
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(sched Scheduler, delay time.Duration, fire func(gen uint64)) *Debouncer {
	return &Debouncer{sched: sched, delay: delay, fire: fire}
}

// Trigger starts or restarts the window.
// Returns true if a pending window was restarted (the event was coalesced).
// A suspended debouncer ignores the trigger and returns false.
func (d *Debouncer) Trigger() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.suspended {
		return false
	}
	coalesced := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
	return coalesced
}

// Claim consumes a firing. Returns false if gen is stale.
func (d *Debouncer) Claim(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending || gen != d.gen {
		return false
	}
	d.pending = false
	d.timer = nil
	return true
}

// Cancel drops a pending window without firing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Suspend consumes a pending window early and ignores triggers until
// Resume. Returns true if a window was pending; the caller captures
// immediately.
func (d *Debouncer) Suspend() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = true
	return d.stopLocked()
}

// Resume accepts triggers again.
func (d *Debouncer) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = false
}

// Pending reports whether a window is running.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) stopLocked() bool {
	if !d.pending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++ // invalidate a callback already in flight
	d.pending = false
	return true
}
