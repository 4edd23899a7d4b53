package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/command"
	"github.com/roach88/studio/internal/engine"
	"github.com/roach88/studio/internal/ir"
	"github.com/roach88/studio/internal/testutil"
)

// idleTimeout bounds how long a key step waits for the dispatcher to
// resolve an undo or redo.
const idleTimeout = 5 * time.Second

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger *slog.Logger
	keymap *command.Keymap
	engine []engine.EngineOption
}

// WithLogger routes engine and dispatcher logs. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKeymap replaces command.DefaultKeymap for key steps.
func WithKeymap(km *command.Keymap) Option {
	return func(o *options) {
		if km != nil {
			o.keymap = km
		}
	}
}

// WithEngineOptions sets engine defaults, e.g. from config. Scenario config
// values still take precedence.
func WithEngineOptions(opts ...engine.EngineOption) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}

// Harness drives one engine over an in-memory surface on a manual clock.
//
// Nothing advances unless a wait step says so, which makes every trace
// reproducible.
type Harness struct {
	eng        *engine.Engine
	surface    *canvas.Memory
	factories  *canvas.MemoryFactories
	sched      *testutil.ManualScheduler
	dispatcher *command.Dispatcher
	relay      *relay

	// aliases maps scenario ids of skeletons to their surface keys.
	aliases   map[string]string
	generated int
}

// Run executes a scenario and evaluates its assertions.
//
// A step that cannot be executed (unknown node, failed placement) aborts the
// run with a *ScenarioError. Assertion failures are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		keymap: command.DefaultKeymap(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := newHarness(scenario.Config, o)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.eng.Run(ctx) }()
	defer func() {
		cancel()
		<-errc
	}()

	if err := h.eng.Bind(ctx, h.surface); err != nil {
		return nil, fmt.Errorf("bind surface: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		action, err := h.exec(ctx, step)
		if err != nil {
			return nil, &ScenarioError{Step: i + 1, Op: step.Op, Err: err}
		}

		st, err := h.eng.Status(ctx)
		if err != nil {
			return nil, &ScenarioError{Step: i + 1, Op: step.Op, Err: err}
		}
		nodes, connectors := h.inventory()
		result.Trace = append(result.Trace, TraceEvent{
			Step:       i + 1,
			Op:         step.Op,
			Action:     string(action),
			Length:     st.Length,
			Index:      st.Index,
			State:      st.State.String(),
			Nodes:      nodes,
			Connectors: connectors,
			Mode:       h.surface.Mode().String(),
		})
	}

	final, err := h.final(ctx)
	if err != nil {
		return nil, err
	}
	result.Final = final

	for _, msg := range EvaluateAssertions(final, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(cfg Config, o options) *Harness {
	h := &Harness{
		surface:   canvas.NewMemory(),
		factories: canvas.NewMemoryFactories(),
		sched:     testutil.NewManualScheduler(),
		aliases:   make(map[string]string),
	}

	engOpts := []engine.EngineOption{
		engine.WithScheduler(h.sched),
		engine.WithIDGenerator(engine.NewSequenceGenerator("gen")),
		engine.WithLogger(o.logger),
	}
	engOpts = append(engOpts, o.engine...)
	if cfg.MaxHistory > 0 {
		engOpts = append(engOpts, engine.WithMaxHistory(cfg.MaxHistory))
	}
	if cfg.DebounceMS > 0 {
		engOpts = append(engOpts, engine.WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond))
	}
	if cfg.SettleMS > 0 {
		engOpts = append(engOpts, engine.WithSettleDelay(time.Duration(cfg.SettleMS)*time.Millisecond))
	}
	h.eng = engine.New(h.factories, engOpts...)

	h.relay = &relay{eng: h.eng}
	h.dispatcher = command.NewDispatcher(h.relay, h.surface,
		command.WithKeymap(o.keymap),
		command.WithGenerate(h.generate),
		command.WithLogger(o.logger),
	)
	return h
}

// exec runs one step and waits until the engine has observed it.
func (h *Harness) exec(ctx context.Context, st Step) (command.Action, error) {
	var action command.Action

	switch st.Op {
	case OpPlace:
		url := st.URL
		if url == "" {
			url = "https://img.test/" + st.ID + ".png"
		}
		if _, err := h.eng.PlaceGeneration(ctx, url, canvas.GenerationOptions{
			ID:     st.ID,
			Left:   st.Left,
			Top:    st.Top,
			Prompt: st.Prompt,
		}); err != nil {
			return "", err
		}

	case OpPlaceFailed:
		if _, err := h.eng.PlaceFailed(ctx, canvas.FailedOptions{
			ID:    st.ID,
			Left:  st.Left,
			Top:   st.Top,
			Error: st.Error,
		}); err != nil {
			return "", err
		}

	case OpSkeleton:
		obj, err := h.eng.PlaceSkeleton(ctx, ir.Position{Left: st.Left, Top: st.Top})
		if err != nil {
			return "", err
		}
		if st.ID != "" {
			h.aliases[st.ID] = obj.Key()
		}

	case OpConnect:
		source, err := h.find(st.Source)
		if err != nil {
			return "", err
		}
		target, err := h.find(st.Target)
		if err != nil {
			return "", err
		}
		if _, err := h.eng.Connect(ctx, source, target); err != nil {
			return "", err
		}

	case OpMove:
		obj, err := h.find(st.ID)
		if err != nil {
			return "", err
		}
		h.surface.Modify(obj, func(o canvas.Object) {
			o.SetPosition(ir.Position{Left: st.Left, Top: st.Top})
		})

	case OpTransform:
		obj, err := h.find(st.ID)
		if err != nil {
			return "", err
		}
		tr := ir.Transform{ScaleX: st.ScaleX, ScaleY: st.ScaleY, Angle: st.Angle}
		if tr.ScaleX == 0 {
			tr.ScaleX = 1
		}
		if tr.ScaleY == 0 {
			tr.ScaleY = 1
		}
		h.surface.Modify(obj, func(o canvas.Object) {
			o.SetTransform(tr)
		})

	case OpRemove:
		obj, err := h.find(st.ID)
		if err != nil {
			return "", err
		}
		h.surface.Remove(obj)

	case OpSelect:
		objs := make([]canvas.Object, 0, len(st.IDs))
		for _, id := range st.IDs {
			obj, err := h.find(id)
			if err != nil {
				return "", err
			}
			objs = append(objs, obj)
		}
		h.surface.Select(objs...)

	case OpKey:
		ev := command.KeyEvent{
			Key:    st.Key,
			Ctrl:   st.Ctrl,
			Meta:   st.Meta,
			Shift:  st.Shift,
			Alt:    st.Alt,
			Repeat: st.Repeat,
		}
		if st.Up {
			action = h.dispatcher.KeyUp(ev)
			break
		}
		var err error
		action, err = h.dispatcher.KeyDown(ctx, ev, command.Focus{Editable: st.Editable})
		if err != nil {
			return action, err
		}

	case OpWait:
		h.sched.Advance(time.Duration(st.MS) * time.Millisecond)

	case OpUndo:
		h.relay.UndoAsync()

	case OpRedo:
		h.relay.RedoAsync()

	case OpFail:
		if st.ID != "" {
			h.factories.FailID(st.ID)
		}
		if st.URL != "" {
			h.factories.FailURL(st.URL)
		}

	default:
		return "", fmt.Errorf("unknown op %q", st.Op)
	}

	if err := h.eng.Sync(ctx); err != nil {
		return action, err
	}
	if h.relay.pump() {
		return action, h.waitIdle()
	}
	return action, nil
}

// generate is the dispatcher's generate callback: a finished generation
// lands at the origin.
func (h *Harness) generate(ctx context.Context) error {
	h.generated++
	url := fmt.Sprintf("https://img.test/generated-%d.png", h.generated)
	_, err := h.eng.PlaceGeneration(ctx, url, canvas.GenerationOptions{})
	return err
}

func (h *Harness) find(id string) (canvas.Object, error) {
	key := id
	if alias, ok := h.aliases[id]; ok {
		key = alias
	}
	obj, ok := h.surface.Find(key)
	if !ok {
		return nil, fmt.Errorf("object %q not on canvas", id)
	}
	return obj, nil
}

// waitIdle blocks until the dispatcher has seen every forwarded reply.
func (h *Harness) waitIdle() error {
	deadline := time.Now().Add(idleTimeout)
	for h.dispatcher.Busy() {
		if time.Now().After(deadline) {
			return fmt.Errorf("history step did not resolve within %s", idleTimeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// inventory returns the sorted keys of registered nodes and the number of
// registered connectors on the surface. Transient objects are not counted.
func (h *Harness) inventory() ([]string, int) {
	nodes := []string{}
	connectors := 0
	reg := h.eng.Registry()
	for _, obj := range h.surface.Objects() {
		rec, ok := reg.Get(obj.Key())
		if !ok {
			continue
		}
		if rec.Kind() == ir.KindConnector {
			connectors++
			continue
		}
		nodes = append(nodes, obj.Key())
	}
	sort.Strings(nodes)
	return nodes, connectors
}

func (h *Harness) final(ctx context.Context) (Final, error) {
	st, err := h.eng.Status(ctx)
	if err != nil {
		return Final{}, fmt.Errorf("final status: %w", err)
	}
	nodes, connectors := h.inventory()
	return Final{
		Length:     st.Length,
		Capacity:   st.Capacity,
		Index:      st.Index,
		CanUndo:    st.CanUndo,
		CanRedo:    st.CanRedo,
		State:      st.State.String(),
		Nodes:      nodes,
		Connectors: connectors,
		Mode:       h.surface.Mode().String(),
	}, nil
}

// relay sits between the dispatcher and the engine and forwards replies only
// when pumped. An undo requested while a restore settles stays unresolved
// until a later wait step, and key presses never race the dispatcher's
// in-flight flag.
type relay struct {
	eng     *engine.Engine
	waiting []heldReply
}

type heldReply struct {
	in  <-chan error
	out chan error
}

var _ command.History = (*relay)(nil)

func (r *relay) UndoAsync() <-chan error { return r.hold(r.eng.UndoAsync()) }

func (r *relay) RedoAsync() <-chan error { return r.hold(r.eng.RedoAsync()) }

func (r *relay) hold(in <-chan error) <-chan error {
	out := make(chan error, 1)
	r.waiting = append(r.waiting, heldReply{in: in, out: out})
	return out
}

// pump forwards every reply the engine has already sent and reports whether
// there was any. Call it after Sync: replies precede the Sync reply.
func (r *relay) pump() bool {
	forwarded := false
	kept := r.waiting[:0]
	for _, held := range r.waiting {
		select {
		case err := <-held.in:
			held.out <- err
			forwarded = true
		default:
			kept = append(kept, held)
		}
	}
	r.waiting = kept
	return forwarded
}
