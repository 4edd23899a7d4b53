package command

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/studio/internal/canvas"
)

// History is the part of the engine the dispatcher drives.
// Implemented by *engine.Engine.
type History interface {
	UndoAsync() <-chan error
	RedoAsync() <-chan error
}

// Dispatcher turns key events into canvas commands.
//
// Thread-safety: KeyDown and KeyUp may be called from any goroutine, but
// they are expected to arrive in input order from one UI thread.
type Dispatcher struct {
	keymap   *Keymap
	history  History
	surface  canvas.Surface
	generate func(ctx context.Context) error
	logger   *slog.Logger

	// inFlight is set while an undo or redo issued here is unresolved.
	inFlight atomic.Bool

	mu      sync.Mutex
	panning bool
	base    canvas.Mode
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithKeymap replaces DefaultKeymap.
func WithKeymap(km *Keymap) DispatcherOption {
	return func(d *Dispatcher) {
		if km != nil {
			d.keymap = km
		}
	}
}

// WithGenerate sets the callback run for the generate chord.
func WithGenerate(fn func(ctx context.Context) error) DispatcherOption {
	return func(d *Dispatcher) {
		d.generate = fn
	}
}

// WithLogger sets the logger used for failed undo/redo requests.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher for surface backed by history.
func NewDispatcher(history History, surface canvas.Surface, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		keymap:  DefaultKeymap(),
		history: history,
		surface: surface,
		logger:  slog.Default(),
		base:    canvas.ModeSelect,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Keymap returns the active keymap.
func (d *Dispatcher) Keymap() *Keymap {
	return d.keymap
}

// KeyDown handles a key press and returns the action it triggered, or
// ActionNone if the key was ignored. Undo and redo return immediately; the
// history resolves them asynchronously and presses arriving before that are
// dropped.
func (d *Dispatcher) KeyDown(ctx context.Context, ev KeyEvent, focus Focus) (Action, error) {
	action := d.keymap.Lookup(ev)
	if action == ActionNone {
		return ActionNone, nil
	}
	if focus.Editable && action != ActionGenerate {
		return ActionNone, nil
	}

	switch action {
	case ActionUndo:
		return d.step(ActionUndo, d.history.UndoAsync), nil

	case ActionRedo:
		return d.step(ActionRedo, d.history.RedoAsync), nil

	case ActionGenerate:
		if d.generate == nil {
			return ActionNone, nil
		}
		if err := d.generate(ctx); err != nil {
			return ActionGenerate, err
		}
		return ActionGenerate, nil

	case ActionDelete:
		selected := d.surface.Selection()
		if len(selected) == 0 {
			return ActionNone, nil
		}
		for _, obj := range selected {
			d.surface.Remove(obj)
		}
		return ActionDelete, nil

	case ActionPan:
		if ev.Repeat {
			return ActionNone, nil
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.panning {
			return ActionNone, nil
		}
		d.panning = true
		d.surface.SetInteractionMode(canvas.ModePan)
		return ActionPan, nil
	}

	return ActionNone, nil
}

// KeyUp handles a key release. Releasing the pan key restores the previous
// interaction mode regardless of focus.
func (d *Dispatcher) KeyUp(ev KeyEvent) Action {
	for _, c := range d.keymap.Chords(ActionPan) {
		if c.Key != normalizeKey(ev.Key) {
			continue
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if !d.panning {
			return ActionNone
		}
		d.panning = false
		d.surface.SetInteractionMode(d.base)
		return ActionPan
	}
	return ActionNone
}

// SetBaseMode sets the mode restored when panning ends.
func (d *Dispatcher) SetBaseMode(m canvas.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.base = m
	if !d.panning {
		d.surface.SetInteractionMode(m)
	}
}

// Panning reports whether the pan key is held.
func (d *Dispatcher) Panning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.panning
}

// Busy reports whether an undo or redo is in flight.
func (d *Dispatcher) Busy() bool {
	return d.inFlight.Load()
}

func (d *Dispatcher) step(action Action, start func() <-chan error) Action {
	if !d.inFlight.CompareAndSwap(false, true) {
		d.logger.Debug("key dropped: history step in flight", "action", string(action))
		return ActionNone
	}

	done := start()
	go func() {
		defer d.inFlight.Store(false)
		if err := <-done; err != nil {
			d.logger.Warn("history step failed", "action", string(action), "error", err)
		}
	}()
	return action
}
