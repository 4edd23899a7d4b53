package snapshot

import (
	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
)

// Serializer captures a live Surface as a Snapshot.
type Serializer struct {
	registry *canvas.Registry
}

// NewSerializer creates a serializer that resolves object keys in registry.
func NewSerializer(registry *canvas.Registry) *Serializer {
	return &Serializer{registry: registry}
}

// Capture returns the snapshot of s.
//
// An object is included iff the registry holds a recognized record for its
// key; skeletons and decorations have none and are skipped. Iteration follows
// the surface's insertion order. Capture has no side effects on s.
func (ser *Serializer) Capture(s canvas.Surface) ir.Snapshot {
	objs := s.Objects()
	snap := ir.Snapshot{
		Objects:           make([]ir.Record, 0, len(objs)),
		ViewportTransform: s.ViewportTransform().Slice(),
	}

	for _, obj := range objs {
		rec, ok := ser.registry.Get(obj.Key())
		if !ok || !ir.ValidKinds[rec.Kind()] {
			continue
		}
		snap.Objects = append(snap.Objects, ir.NewRecord(rec, obj.Position(), obj.Transform()))
	}

	return snap
}
