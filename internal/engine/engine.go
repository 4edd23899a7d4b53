package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/history"
	"github.com/roach88/studio/internal/ir"
	"github.com/roach88/studio/internal/snapshot"
)

const (
	// DefaultDebounce is the quiet window after the last mutation before a
	// snapshot is captured.
	DefaultDebounce = 150 * time.Millisecond

	// DefaultSettleDelay is how long after a reconstruction mutation events
	// are still ignored.
	DefaultSettleDelay = 100 * time.Millisecond
)

// Engine is the single-writer undo/redo event loop for one canvas.
//
// Thread-safety model:
//   - Bind, Unbind, Undo, Redo, Status and the placement helpers: safe from
//     any goroutine; they enqueue work and wait for the loop
//   - Run(): must be called from exactly one goroutine
//   - canvas handlers: run on whatever goroutine mutated the surface; they
//     only read atomics and restart the debounce timer
//
// All history mutations, serialization and reconstruction happen on the Run
// goroutine, so a capture can never interleave with a restore.
type Engine struct {
	factories     snapshot.Factories
	registry      *canvas.Registry
	serializer    *snapshot.Serializer
	reconstructor *snapshot.Reconstructor
	queue         *eventQueue
	sched         Scheduler
	ids           IDGenerator
	logger        *slog.Logger
	debounce      *Debouncer

	maxHistory    int
	debounceDelay time.Duration
	settleDelay   time.Duration

	restoring atomic.Bool
	binding   atomic.Uint64 // generation of the current surface binding

	// Owned by the Run goroutine.
	history     *history.Store
	surface     canvas.Surface
	unsubscribe []func()
	settle      Timer
	settleGen   uint64
	deferred    []Event // undo/redo received while restoring, FIFO
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxHistory sets the history capacity. Values below 1 select
// history.DefaultMaxSize.
func WithMaxHistory(n int) EngineOption {
	return func(e *Engine) {
		e.maxHistory = n
	}
}

// WithDebounce sets the capture debounce window.
func WithDebounce(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.debounceDelay = d
	}
}

// WithSettleDelay sets the delay between a reconstruction and the point at
// which mutation events are observed again.
func WithSettleDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.settleDelay = d
	}
}

// WithScheduler replaces the RealScheduler, typically with
// testutil.ManualScheduler.
func WithScheduler(s Scheduler) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithIDGenerator sets the generator for node keys created by the
// placement helpers.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithRegistry shares an existing registry, e.g. one the host populated
// before binding.
func WithRegistry(r *canvas.Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine that rebuilds objects with factories.
func New(factories snapshot.Factories, opts ...EngineOption) *Engine {
	e := &Engine{
		factories:     factories,
		registry:      canvas.NewRegistry(),
		queue:         newEventQueue(),
		sched:         RealScheduler{},
		ids:           UUIDv7Generator{},
		logger:        slog.Default(),
		maxHistory:    history.DefaultMaxSize,
		debounceDelay: DefaultDebounce,
		settleDelay:   DefaultSettleDelay,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.serializer = snapshot.NewSerializer(e.registry)
	e.reconstructor = snapshot.NewReconstructor(factories, e.registry, snapshot.WithLogger(e.logger))
	e.history = history.New(e.maxHistory)
	e.debounce = NewDebouncer(e.sched, e.debounceDelay, func(gen uint64) {
		e.queue.Enqueue(Event{Type: EventTypeCapture, Gen: gen})
	})
	return e
}

// Registry returns the registry the engine serializes against. Hosts must
// Put a record for every object they add outside the placement helpers,
// before adding it, or the object is treated as transient.
func (e *Engine) Registry() *canvas.Registry {
	return e.registry
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// On exit every timer is cancelled, the surface is unsubscribed, and waiters
// whose events were never processed receive ErrStopped.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting",
		"max_history", e.maxHistory,
		"debounce", e.debounceDelay,
		"settle", e.settleDelay,
	)
	defer e.shutdown()

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(ctx, event); err != nil {
				e.logEventError(event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed, so this
			// fires immediately once Stop has been called.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine. Events already queued are
// processed before Run returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) shutdown() {
	e.queue.Close()
	e.teardown()
	for _, ev := range e.deferred {
		ev.reply(ErrStopped)
	}
	e.deferred = nil
	for _, ev := range e.queue.Drain() {
		ev.reply(ErrStopped)
	}
}

// Bind attaches the engine to s and captures its current state as the
// baseline history entry. Binding the already-bound surface is a no-op;
// binding a different one tears the old binding down and resets history.
func (e *Engine) Bind(ctx context.Context, s canvas.Surface) error {
	if s == nil {
		return errors.New("bind: nil surface")
	}
	return e.submit(ctx, Event{Type: EventTypeBind, Surface: s})
}

// Unbind detaches the engine from its surface: the pending debounce and
// settle timers are cancelled and every handler is unsubscribed.
func (e *Engine) Unbind(ctx context.Context) error {
	return e.submit(ctx, Event{Type: EventTypeUnbind})
}

// Undo restores the previous history entry and returns once the
// reconstruction has completed. At the oldest entry, or with no surface
// bound, Undo is a no-op.
//
// Cancelling ctx stops the wait, not the undo.
func (e *Engine) Undo(ctx context.Context) error {
	return e.await(ctx, e.UndoAsync())
}

// Redo restores the next history entry. See Undo.
func (e *Engine) Redo(ctx context.Context) error {
	return e.await(ctx, e.RedoAsync())
}

// UndoAsync enqueues an undo. The channel receives one value once it has
// been processed.
func (e *Engine) UndoAsync() <-chan error {
	return e.enqueue(Event{Type: EventTypeUndo})
}

// RedoAsync enqueues a redo. See UndoAsync.
func (e *Engine) RedoAsync() <-chan error {
	return e.enqueue(Event{Type: EventTypeRedo})
}

// Sync waits until every event enqueued before the call has been processed.
func (e *Engine) Sync(ctx context.Context) error {
	return e.submit(ctx, Event{Type: EventTypeQuery})
}

// Status is a point-in-time view of the engine.
type Status struct {
	State    State
	Bound    bool
	Length   int
	Capacity int // history cap; the oldest entry is evicted past it
	Index    int
	CanUndo  bool
	CanRedo  bool
}

// Status returns the engine state, ordered after previously enqueued work.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var st Status
	err := e.submit(ctx, Event{Type: EventTypeQuery, Query: func() {
		st = e.status()
	}})
	return st, err
}

// CanUndo reports whether Undo would change the canvas.
func (e *Engine) CanUndo(ctx context.Context) bool {
	st, err := e.Status(ctx)
	return err == nil && st.CanUndo
}

// CanRedo reports whether Redo would change the canvas.
func (e *Engine) CanRedo(ctx context.Context) bool {
	st, err := e.Status(ctx)
	return err == nil && st.CanRedo
}

// HistoryLength returns the number of history entries.
func (e *Engine) HistoryLength(ctx context.Context) int {
	st, _ := e.Status(ctx)
	return st.Length
}

// Index returns the history cursor, or -1 when unbound.
func (e *Engine) Index(ctx context.Context) int {
	st, err := e.Status(ctx)
	if err != nil {
		return -1
	}
	return st.Index
}

// State returns the engine state.
func (e *Engine) State(ctx context.Context) State {
	st, _ := e.Status(ctx)
	return st.State
}

// Entries returns a copy of every history entry and the cursor.
func (e *Engine) Entries(ctx context.Context) ([]ir.Snapshot, int, error) {
	var (
		out   []ir.Snapshot
		index int
	)
	err := e.submit(ctx, Event{Type: EventTypeQuery, Query: func() {
		for i := 0; i < e.history.Len(); i++ {
			snap, _ := e.history.At(i)
			out = append(out, snap)
		}
		index = e.history.Index()
	}})
	return out, index, err
}

func (e *Engine) enqueue(ev Event) <-chan error {
	done := make(chan error, 1)
	ev.Done = done
	if !e.queue.Enqueue(ev) {
		done <- ErrStopped
	}
	return done
}

func (e *Engine) submit(ctx context.Context, ev Event) error {
	return e.await(ctx, e.enqueue(ev))
}

func (e *Engine) await(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processEvent routes an event to the appropriate handler.
// Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventTypeBind:
		err := e.bind(ev.Surface)
		ev.reply(err)
		return err

	case EventTypeUnbind:
		e.teardown()
		ev.reply(nil)
		return nil

	case EventTypeCapture:
		e.captureFired(ev.Gen)
		return nil

	case EventTypeUndo, EventTypeRedo:
		e.step(ctx, ev)
		return nil

	case EventTypeSettled:
		e.settled(ctx, ev.Gen)
		return nil

	case EventTypeQuery:
		if ev.Query != nil {
			ev.Query()
		}
		ev.reply(nil)
		return nil

	default:
		err := fmt.Errorf("unknown event type: %d", ev.Type)
		ev.reply(err)
		return err
	}
}

func (e *Engine) bind(s canvas.Surface) error {
	if s == nil {
		return errors.New("bind: nil surface")
	}
	if s == e.surface {
		return nil
	}
	e.teardown()

	gen := e.binding.Add(1)
	e.surface = s
	for _, name := range canvas.QualifyingEvents {
		e.unsubscribe = append(e.unsubscribe, s.On(name, e.observe(gen)))
	}

	baseline := e.serializer.Capture(s)
	e.history.Reset(baseline)
	HistoryEntries.Set(float64(e.history.Len()))

	e.logger.Info("surface bound",
		"binding", gen,
		"nodes", len(baseline.Nodes()),
		"connectors", len(baseline.Connectors()),
	)
	return nil
}

// teardown releases the current binding. Safe to call when unbound.
func (e *Engine) teardown() {
	if e.surface == nil {
		return
	}

	e.binding.Add(1) // handlers still in flight see a stale generation
	for _, off := range e.unsubscribe {
		off()
	}
	e.unsubscribe = nil

	e.debounce.Cancel()
	e.debounce.Resume()
	if e.settle != nil {
		e.settle.Stop()
		e.settle = nil
	}
	e.settleGen++
	e.restoring.Store(false)

	for _, ev := range e.deferred {
		ev.reply(nil)
	}
	e.deferred = nil

	e.surface = nil
	e.history = history.New(e.maxHistory)
	HistoryEntries.Set(0)

	e.logger.Info("surface unbound")
}

// observe returns the handler subscribed for one binding generation.
// It runs on the mutating goroutine.
func (e *Engine) observe(gen uint64) canvas.Handler {
	return func(ev canvas.Event) {
		if e.restoring.Load() || e.binding.Load() != gen {
			return
		}
		if ev.Object != nil && !e.registry.Has(ev.Object.Key()) {
			return // transient objects never produce history
		}
		if e.debounce.Trigger() {
			DebounceCoalescedTotal.Inc()
		}
	}
}

func (e *Engine) captureFired(gen uint64) {
	if !e.debounce.Claim(gen) {
		e.logger.Debug("stale capture discarded", "gen", gen)
		return
	}
	if e.surface == nil || e.restoring.Load() {
		return
	}
	e.capture("debounce")
}

func (e *Engine) capture(reason string) {
	snap := e.serializer.Capture(e.surface)
	e.history.Push(snap)

	HistoryCapturesTotal.Inc()
	HistoryEntries.Set(float64(e.history.Len()))

	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		id, err := ir.SnapshotID(snap)
		if err != nil {
			id = "unhashable"
		}
		e.logger.Debug("snapshot captured",
			"snapshot", ir.ShortID(id),
			"reason", reason,
			"entries", e.history.Len(),
			"index", e.history.Index(),
		)
	}
}

// step runs one undo or redo, or defers it while a restore is settling.
func (e *Engine) step(ctx context.Context, ev Event) {
	if e.surface == nil {
		ev.reply(nil)
		return
	}
	if e.restoring.Load() {
		e.deferred = append(e.deferred, ev)
		return
	}

	// The latest user change must be part of history before moving the
	// cursor. From here until settle, mutations never arm a capture.
	if e.debounce.Suspend() {
		e.capture("flush")
	}

	direction := "undo"
	var (
		snap ir.Snapshot
		ok   bool
	)
	if ev.Type == EventTypeRedo {
		direction = "redo"
		snap, ok = e.history.Redo()
	} else {
		snap, ok = e.history.Undo()
	}
	if !ok {
		e.logger.Debug("history boundary reached", "direction", direction, "index", e.history.Index())
		e.debounce.Resume()
		ev.reply(nil)
		return
	}

	e.restore(ctx, snap, direction)
	ev.reply(nil)
}

func (e *Engine) restore(ctx context.Context, snap ir.Snapshot, direction string) {
	e.restoring.Store(true)
	rep := e.reconstructor.Restore(ctx, e.surface, snap)

	RestoresTotal.WithLabelValues(direction).Inc()
	for _, issue := range rep.Issues {
		ReconstructIssuesTotal.WithLabelValues(string(issue.Code)).Inc()
	}

	e.logger.Info("canvas restored",
		"direction", direction,
		"index", e.history.Index(),
		"entries", e.history.Len(),
		"nodes", rep.Nodes,
		"connectors", rep.Connectors,
		"dropped", rep.Dropped(),
	)

	e.armSettle()
}

func (e *Engine) armSettle() {
	if e.settle != nil {
		e.settle.Stop()
	}
	e.settleGen++
	gen := e.settleGen
	e.settle = e.sched.AfterFunc(e.settleDelay, func() {
		e.queue.Enqueue(Event{Type: EventTypeSettled, Gen: gen})
	})
}

// settled clears the restoring flag and runs deferred undo/redo requests in
// order until one of them starts a new restore.
func (e *Engine) settled(ctx context.Context, gen uint64) {
	if gen != e.settleGen || !e.restoring.Load() {
		return
	}
	e.settle = nil
	e.restoring.Store(false)
	e.debounce.Resume()

	for len(e.deferred) > 0 && !e.restoring.Load() {
		ev := e.deferred[0]
		e.deferred[0] = Event{}
		e.deferred = e.deferred[1:]
		e.step(ctx, ev)
	}
}

func (e *Engine) status() Status {
	st := Status{
		State:    StateIdle,
		Bound:    e.surface != nil,
		Length:   e.history.Len(),
		Capacity: e.history.Max(),
		Index:    e.history.Index(),
		CanUndo:  e.history.CanUndo(),
		CanRedo:  e.history.CanRedo(),
	}
	switch {
	case e.restoring.Load():
		st.State = StateRestoring
	case e.debounce.Pending():
		st.State = StatePending
	}
	return st
}

// logEventError logs a processing failure with event context.
// Processing continues with the next event.
func (e *Engine) logEventError(ev Event, err error) {
	e.logger.Error("event processing failed",
		"event_type", ev.Type.String(),
		"error", err,
	)
}
