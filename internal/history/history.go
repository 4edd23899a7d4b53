// Package history implements the bounded undo/redo snapshot sequence.
//
// Store is a plain data structure with no timers or locking; the engine
// owns it from its single loop goroutine.
package history

import (
	"github.com/roach88/studio/internal/ir"
)

// DefaultMaxSize is the default number of snapshots kept.
const DefaultMaxSize = 50

// Store is an ordered sequence of snapshots with a current position.
//
// INVARIANTS (once initialized):
//   - 0 <= index < len(entries)
//   - len(entries) <= max
//
// Entries are cloned on the way in and out, so a pushed snapshot can never
// be mutated through a caller's reference.
type Store struct {
	entries []ir.Snapshot
	index   int
	max     int
}

// New creates an empty store keeping at most maxSize entries.
// Values below 1 select DefaultMaxSize.
func New(maxSize int) *Store {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &Store{index: -1, max: maxSize}
}

// Reset discards all entries and makes baseline entries[0].
func (s *Store) Reset(baseline ir.Snapshot) {
	s.entries = []ir.Snapshot{baseline.Clone()}
	s.index = 0
}

// Initialized reports whether a baseline has been recorded.
func (s *Store) Initialized() bool {
	return len(s.entries) > 0
}

// Push records snap as the newest entry.
//
// Entries after the current index (the redo branch) are discarded first.
// When the cap is exceeded the oldest entry is evicted and index still points
// at snap. Pushing into an uninitialized store makes snap the baseline.
func (s *Store) Push(snap ir.Snapshot) {
	if !s.Initialized() {
		s.Reset(snap)
		return
	}

	for i := s.index + 1; i < len(s.entries); i++ {
		s.entries[i] = ir.Snapshot{} // cut branch must not stay reachable
	}
	s.entries = append(s.entries[:s.index+1], snap.Clone())
	s.index++

	if over := len(s.entries) - s.max; over > 0 {
		// Zero evicted slots so the backing array does not retain them
		for i := 0; i < over; i++ {
			s.entries[i] = ir.Snapshot{}
		}
		s.entries = s.entries[over:]
		s.index -= over
	}
}

// Undo steps back one entry and returns the snapshot to restore.
// Returns false (and changes nothing) when already at the baseline.
func (s *Store) Undo() (ir.Snapshot, bool) {
	if !s.CanUndo() {
		return ir.Snapshot{}, false
	}
	s.index--
	return s.entries[s.index].Clone(), true
}

// Redo steps forward one entry and returns the snapshot to restore.
// Returns false (and changes nothing) when already at the newest entry.
func (s *Store) Redo() (ir.Snapshot, bool) {
	if !s.CanRedo() {
		return ir.Snapshot{}, false
	}
	s.index++
	return s.entries[s.index].Clone(), true
}

// CanUndo reports whether Undo would move.
func (s *Store) CanUndo() bool {
	return s.index > 0
}

// CanRedo reports whether Redo would move.
func (s *Store) CanRedo() bool {
	return s.Initialized() && s.index < len(s.entries)-1
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Index returns the current position, -1 before initialization.
func (s *Store) Index() int {
	return s.index
}

// Max returns the entry cap.
func (s *Store) Max() int {
	return s.max
}

// Current returns the snapshot at the current position.
func (s *Store) Current() (ir.Snapshot, bool) {
	if !s.Initialized() {
		return ir.Snapshot{}, false
	}
	return s.entries[s.index].Clone(), true
}

// At returns entry i.
func (s *Store) At(i int) (ir.Snapshot, bool) {
	if i < 0 || i >= len(s.entries) {
		return ir.Snapshot{}, false
	}
	return s.entries[i].Clone(), true
}
