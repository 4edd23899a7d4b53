package canvas

import (
	"sync"

	"github.com/roach88/studio/internal/ir"
)

// Node is a headless Object.
//
// Thread-safety: Node is safe for concurrent use; the engine reads positions
// from its loop goroutine while hosts move nodes from theirs.
type Node struct {
	key string

	mu  sync.Mutex
	pos ir.Position
	tr  ir.Transform
}

// NewNode creates a node at pos with the identity transform.
func NewNode(key string, pos ir.Position) *Node {
	return &Node{key: key, pos: pos, tr: ir.IdentityTransform}
}

// NewSkeleton creates a transient placeholder (e.g. a "generating..."
// spinner). Skeletons are never registered, so they never reach history.
func NewSkeleton(key string, pos ir.Position) *Node {
	return NewNode(key, pos)
}

// Key implements Object.
func (n *Node) Key() string { return n.key }

// Position implements Object.
func (n *Node) Position() ir.Position {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

// SetPosition implements Object.
func (n *Node) SetPosition(p ir.Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pos = p
}

// Transform implements Object.
func (n *Node) Transform() ir.Transform {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tr
}

// SetTransform implements Object.
func (n *Node) SetTransform(t ir.Transform) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tr = t
}

type subscription struct {
	id int
	h  Handler
}

// Memory is an in-memory Surface.
//
// Events are delivered synchronously, after the internal lock is released, on
// the goroutine that performed the mutation. Handlers may call back into the
// surface.
type Memory struct {
	mu        sync.Mutex
	objects   []Object
	selection []Object
	viewport  ir.Matrix
	mode      Mode
	renders   int
	handlers  map[EventName][]subscription
	nextSubID int
}

var _ Surface = (*Memory)(nil)

// NewMemory creates an empty surface with the identity viewport.
func NewMemory() *Memory {
	return &Memory{
		viewport: ir.IdentityMatrix,
		handlers: make(map[EventName][]subscription),
	}
}

// Objects implements Surface.
func (m *Memory) Objects() []Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Object, len(m.objects))
	copy(out, m.objects)
	return out
}

// Add implements Surface. Adding an object twice is a no-op.
func (m *Memory) Add(obj Object) {
	m.mu.Lock()
	if indexOf(m.objects, obj) >= 0 {
		m.mu.Unlock()
		return
	}
	m.objects = append(m.objects, obj)
	m.mu.Unlock()

	m.emit(Event{Name: EventObjectAdded, Object: obj})
}

// Remove implements Surface.
func (m *Memory) Remove(obj Object) {
	m.mu.Lock()
	i := indexOf(m.objects, obj)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.objects = append(m.objects[:i], m.objects[i+1:]...)
	if j := indexOf(m.selection, obj); j >= 0 {
		m.selection = append(m.selection[:j], m.selection[j+1:]...)
	}
	m.mu.Unlock()

	m.emit(Event{Name: EventObjectRemoved, Object: obj})
}

// Clear implements Surface. One object:removed event fires per object.
func (m *Memory) Clear() {
	m.mu.Lock()
	removed := m.objects
	m.objects = nil
	m.selection = nil
	m.mu.Unlock()

	for _, obj := range removed {
		m.emit(Event{Name: EventObjectRemoved, Object: obj})
	}
}

// Modify applies fn to obj and emits object:modified, the way a finished
// drag or resize gesture does.
func (m *Memory) Modify(obj Object, fn func(Object)) {
	m.mu.Lock()
	present := indexOf(m.objects, obj) >= 0
	m.mu.Unlock()
	if !present {
		return
	}

	fn(obj)
	m.emit(Event{Name: EventObjectModified, Object: obj})
}

// Find returns the first object with key.
func (m *Memory) Find(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obj := range m.objects {
		if obj.Key() == key {
			return obj, true
		}
	}
	return nil, false
}

// On implements Surface.
func (m *Memory) On(name EventName, h Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	id := m.nextSubID
	m.handlers[name] = append(m.handlers[name], subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { m.off(name, id) })
	}
}

func (m *Memory) off(name EventName, id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.handlers[name]
	for i, s := range subs {
		if s.id == id {
			m.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// HandlerCount returns the number of live subscriptions for name.
func (m *Memory) HandlerCount(name EventName) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers[name])
}

// ViewportTransform implements Surface.
func (m *Memory) ViewportTransform() ir.Matrix {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// SetViewportTransform implements Surface.
func (m *Memory) SetViewportTransform(v ir.Matrix) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = v
}

// SendToBack implements Surface.
func (m *Memory) SendToBack(obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.objects, obj)
	if i <= 0 {
		return
	}
	copy(m.objects[1:i+1], m.objects[:i])
	m.objects[0] = obj
}

// Select replaces the selection; objects not on the surface are ignored.
func (m *Memory) Select(objs ...Object) {
	m.mu.Lock()
	m.selection = m.selection[:0]
	for _, obj := range objs {
		if indexOf(m.objects, obj) >= 0 {
			m.selection = append(m.selection, obj)
		}
	}
	m.mu.Unlock()

	m.emit(Event{Name: EventSelectionChanged})
}

// Selection implements Surface.
func (m *Memory) Selection() []Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Object, len(m.selection))
	copy(out, m.selection)
	return out
}

// SetInteractionMode implements Surface.
func (m *Memory) SetInteractionMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// Mode returns the current interaction mode.
func (m *Memory) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// RequestRenderAll implements Surface. Memory only counts requests.
func (m *Memory) RequestRenderAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

// RenderRequests returns how many re-renders were requested.
func (m *Memory) RenderRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

func (m *Memory) emit(ev Event) {
	m.mu.Lock()
	subs := make([]subscription, len(m.handlers[ev.Name]))
	copy(subs, m.handlers[ev.Name])
	m.mu.Unlock()

	for _, s := range subs {
		s.h(ev)
	}
}

func indexOf(objs []Object, obj Object) int {
	for i, o := range objs {
		if o == obj {
			return i
		}
	}
	return -1
}
