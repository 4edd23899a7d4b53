// Package snapshot converts between the live canvas and ir.Snapshot.
//
// Serializer captures the recognized, non-transient objects of a Surface in
// draw order. Reconstructor rebuilds a Surface from a snapshot in two
// passes:
//
//  1. Node pass: every node record goes through its factory, sequentially.
//     A failing factory drops that node only.
//  2. Edge pass: connectors are created only when both endpoint ids resolved
//     in pass 1, then sent behind the nodes they connect.
//
// The viewport is restored last, and exactly one re-render is requested at
// the end. Reconstruction never fails as a whole: problems are reported as
// ReconstructionError values in the Report.
package snapshot
