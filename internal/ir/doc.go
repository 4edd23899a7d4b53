// Package ir provides the canonical, renderer-independent representation of
// the studio canvas graph.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal. Snapshots built
// from these types never reference live render objects, which is what makes
// undo/redo safe across renderer reloads.
//
// Key design constraints:
//   - A Record's Data is a sealed tagged union (NodeRecord); the type
//     discriminant on the wire always matches Data.Kind()
//   - Edges reference nodes by id only, never by ownership
//   - JSON tags follow the canvas wire format (camelCase)
//   - Snapshot digests use canonical JSON with domain separation
package ir
