package engine

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running if it has not started.
	// Returns false if the callback already ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
//
// The engine never reads wall-clock time directly; every delay (debounce
// window, settle delay) goes through a Scheduler so tests can drive time
// deterministically with testutil.ManualScheduler.
//
// Callbacks may run on any goroutine. Engine callbacks only enqueue events,
// so they never touch loop-owned state.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks with time.AfterFunc.
//
// Thread-safety: RealScheduler is stateless and safe for concurrent use.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
