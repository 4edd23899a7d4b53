// Package command maps keyboard input to canvas commands.
//
// A Keymap binds chords written like "mod+shift+z" to actions; "mod" matches
// either Ctrl or Meta so one binding serves every platform. The Dispatcher
// applies the focus rule (typing into an editable field suppresses every
// command except generate), forwards undo and redo to the history, and
// toggles pan mode while space is held.
package command
