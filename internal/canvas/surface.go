package canvas

import (
	"github.com/roach88/studio/internal/ir"
)

// EventName identifies a surface event.
type EventName string

const (
	// EventObjectAdded fires after an object was added.
	EventObjectAdded EventName = "object:added"

	// EventObjectRemoved fires after an object was removed.
	EventObjectRemoved EventName = "object:removed"

	// EventObjectModified fires after a user gesture changed an object.
	EventObjectModified EventName = "object:modified"

	// EventSelectionChanged fires when the active selection changes.
	// It does not qualify for history capture.
	EventSelectionChanged EventName = "selection:changed"
)

// QualifyingEvents are the mutation events that feed history capture.
var QualifyingEvents = []EventName{
	EventObjectAdded,
	EventObjectRemoved,
	EventObjectModified,
}

// Event is delivered to subscribed handlers.
type Event struct {
	Name   EventName
	Object Object // nil for selection events
}

// Handler receives surface events.
type Handler func(Event)

// Object is a live render object owned by a Surface.
//
// Key is the lookup key into the engine's Registry. Objects never carry the
// semantic payload themselves.
type Object interface {
	Key() string
	Position() ir.Position
	SetPosition(ir.Position)
	Transform() ir.Transform
	SetTransform(ir.Transform)
}

// Mode is the pointer interaction mode of the surface.
type Mode int

const (
	// ModeSelect is the default: clicks select, drags move objects.
	ModeSelect Mode = iota

	// ModePan turns drags into viewport panning (the "hand" tool).
	ModePan
)

// String returns a lowercase name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModePan:
		return "pan"
	default:
		return "unknown"
	}
}

// Surface is the capability the engine consumes from the canvas.
//
// Objects returns objects in insertion order, which is also draw order
// (index 0 is drawn first, i.e. furthest back).
type Surface interface {
	Objects() []Object
	Add(obj Object)
	Remove(obj Object)
	Clear()

	// On subscribes h to name and returns a function that unsubscribes it.
	On(name EventName, h Handler) (off func())

	ViewportTransform() ir.Matrix
	SetViewportTransform(m ir.Matrix)

	// SendToBack moves obj to the bottom of the draw order.
	SendToBack(obj Object)

	// Selection returns the currently selected objects.
	Selection() []Object

	// SetInteractionMode is the single entry point for transient modes.
	SetInteractionMode(m Mode)

	RequestRenderAll()
}

// GenerationOptions are the placement parameters for a generation card.
type GenerationOptions struct {
	Left   float64
	Top    float64
	Prompt string
	ID     string // empty: the factory assigns one
	Label  string
}

// FailedOptions are the placement parameters for a failed card.
type FailedOptions struct {
	Left             float64
	Top              float64
	Error            string
	GenerationParams map[string]any
	ID               string // empty: the factory assigns one
}
