package engine

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by blocking calls once the Run loop has exited.
var ErrStopped = errors.New("engine stopped")

// State is the coarse engine state reported to hosts.
type State int

const (
	// StateIdle means no capture is pending and no restore is in progress.
	StateIdle State = iota
	// StatePending means a debounce window is running.
	StatePending
	// StateRestoring means a reconstruction finished and the settle delay
	// has not yet elapsed. Mutation events are ignored in this state.
	StateRestoring
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRestoring:
		return "restoring"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsStopped returns true if err reports a stopped engine.
// Uses errors.Is to handle wrapped errors.
func IsStopped(err error) bool {
	return errors.Is(err, ErrStopped)
}

// ErrNotBound is returned by placement helpers when no surface is bound.
var ErrNotBound = errors.New("no surface bound")
