package command

import (
	"fmt"
	"slices"
	"strings"
)

// Action is a command a key chord can trigger.
type Action string

const (
	// ActionNone means the event is not bound, or was suppressed by focus.
	ActionNone Action = ""

	// ActionUndo steps history back one entry.
	ActionUndo Action = "undo"

	// ActionRedo steps history forward one entry.
	ActionRedo Action = "redo"

	// ActionGenerate starts a generation. It also fires from editable focus.
	ActionGenerate Action = "generate"

	// ActionDelete removes the selected objects.
	ActionDelete Action = "delete"

	// ActionPan switches to pan mode while the chord is held.
	ActionPan Action = "pan"
)

// Actions lists every bindable action in display order.
var Actions = []Action{ActionUndo, ActionRedo, ActionGenerate, ActionDelete, ActionPan}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Actions, a) {
		return ActionNone, fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// KeyEvent is one key press or release. Key uses DOM key values ("z",
// "Enter", "Backspace", " ").
type KeyEvent struct {
	Key    string
	Ctrl   bool
	Meta   bool
	Shift  bool
	Alt    bool
	Repeat bool
}

// Focus describes where keyboard input is going.
type Focus struct {
	// Editable is true while a text input, textarea or contenteditable
	// element has focus.
	Editable bool
}

// Chord is a key plus the exact set of modifiers that must be down.
type Chord struct {
	Key   string
	Mod   bool // ctrl or meta
	Shift bool
	Alt   bool
}

// ParseChord parses "mod+shift+z", "ctrl+y", "delete", "space".
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Chord{}, fmt.Errorf("chord %q: missing key", s)
	}

	var c Chord
	c.Key = normalizeKey(parts[len(parts)-1])
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "mod", "ctrl", "control", "cmd", "meta":
			c.Mod = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		default:
			return Chord{}, fmt.Errorf("chord %q: unknown modifier %q", s, mod)
		}
	}
	return c, nil
}

// String formats the chord in ParseChord syntax.
func (c Chord) String() string {
	var parts []string
	if c.Mod {
		parts = append(parts, "mod")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, c.Key), "+")
}

// Matches reports whether ev is this chord. Modifiers must match exactly, so
// "mod+z" does not fire for Ctrl+Shift+Z.
func (c Chord) Matches(ev KeyEvent) bool {
	return c.Key == normalizeKey(ev.Key) &&
		c.Mod == (ev.Ctrl || ev.Meta) &&
		c.Shift == ev.Shift &&
		c.Alt == ev.Alt
}

func normalizeKey(k string) string {
	switch k {
	case " ", "spacebar":
		return "space"
	case "del":
		return "delete"
	case "return":
		return "enter"
	}
	return strings.ToLower(k)
}

type binding struct {
	chord  Chord
	action Action
}

// Keymap resolves key events to actions.
//
// Keymap is immutable after construction and safe for concurrent use.
type Keymap struct {
	bindings []binding
}

// DefaultBindings are the chords used when no configuration overrides them.
func DefaultBindings() map[Action][]string {
	return map[Action][]string{
		ActionUndo:     {"mod+z"},
		ActionRedo:     {"mod+shift+z", "mod+y"},
		ActionGenerate: {"mod+enter"},
		ActionDelete:   {"delete", "backspace"},
		ActionPan:      {"space"},
	}
}

// DefaultKeymap returns the keymap for DefaultBindings.
func DefaultKeymap() *Keymap {
	km, err := NewKeymap(DefaultBindings())
	if err != nil {
		panic(err) // defaults are static
	}
	return km
}

// NewKeymap builds a keymap. A chord bound to two actions is an error.
func NewKeymap(chords map[Action][]string) (*Keymap, error) {
	km := &Keymap{}
	for _, action := range Actions {
		for _, s := range chords[action] {
			c, err := ParseChord(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", action, err)
			}
			for _, b := range km.bindings {
				if b.chord == c && b.action != action {
					return nil, fmt.Errorf("chord %s bound to both %s and %s", c, b.action, action)
				}
			}
			km.bindings = append(km.bindings, binding{chord: c, action: action})
		}
	}
	for action := range chords {
		if !slices.Contains(Actions, action) {
			return nil, fmt.Errorf("unknown action %q", string(action))
		}
	}
	return km, nil
}

// WithOverrides returns the default bindings with the named actions
// replaced. Keys of overrides are action names.
func WithOverrides(overrides map[string][]string) (*Keymap, error) {
	chords := DefaultBindings()
	for name, cs := range overrides {
		action, err := ParseAction(name)
		if err != nil {
			return nil, err
		}
		chords[action] = cs
	}
	return NewKeymap(chords)
}

// Lookup returns the action bound to ev, or ActionNone.
func (km *Keymap) Lookup(ev KeyEvent) Action {
	for _, b := range km.bindings {
		if b.chord.Matches(ev) {
			return b.action
		}
	}
	return ActionNone
}

// Chords returns the chords bound to action.
func (km *Keymap) Chords(action Action) []Chord {
	var out []Chord
	for _, b := range km.bindings {
		if b.action == action {
			out = append(out, b.chord)
		}
	}
	return out
}
