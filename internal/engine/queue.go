package engine

import (
	"sync"

	"github.com/roach88/studio/internal/canvas"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeBind attaches the engine to a surface.
	EventTypeBind EventType = iota + 1
	// EventTypeUnbind detaches the engine from its surface.
	EventTypeUnbind
	// EventTypeCapture is a debounce window expiring.
	EventTypeCapture
	// EventTypeUndo steps history back one entry.
	EventTypeUndo
	// EventTypeRedo steps history forward one entry.
	EventTypeRedo
	// EventTypeSettled is the settle delay after a restore expiring.
	EventTypeSettled
	// EventTypeQuery reads loop-owned state.
	EventTypeQuery
)

// String returns the event type name used in logs.
func (t EventType) String() string {
	switch t {
	case EventTypeBind:
		return "bind"
	case EventTypeUnbind:
		return "unbind"
	case EventTypeCapture:
		return "capture"
	case EventTypeUndo:
		return "undo"
	case EventTypeRedo:
		return "redo"
	case EventTypeSettled:
		return "settled"
	case EventTypeQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Event is one unit of work for the Run loop.
type Event struct {
	Type EventType

	// Surface is set for EventTypeBind.
	Surface canvas.Surface

	// Gen is the timer generation for EventTypeCapture and EventTypeSettled.
	Gen uint64

	// Query runs on the loop goroutine for EventTypeQuery.
	Query func()

	// Done, if non-nil, receives the outcome once the event is fully
	// processed. Buffered with capacity 1 by the sender.
	Done chan error
}

// reply sends err on Done if anyone is listening.
func (ev Event) reply(err error) {
	if ev.Done != nil {
		ev.Done <- err
	}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so timer callbacks and canvas handlers never block
// on enqueue.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Nil out the slot so the backing array does not pin surfaces,
	// snapshots and reply channels.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Drain removes and returns every queued event.
func (q *eventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = nil
	return out
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}
