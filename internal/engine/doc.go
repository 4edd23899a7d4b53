// Package engine implements the studio undo/redo engine.
//
// The engine watches a canvas surface, captures debounced snapshots of its
// graph into a bounded linear history, and rebuilds the surface from history
// on undo and redo.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every history mutation, serialization and reconstruction happens on the
// goroutine running Engine.Run. This ensures:
// - A capture never interleaves with a restore
// - Undo/redo requests are applied in arrival order
// - Tests are deterministic under a manual scheduler
//
// Event Processing Flow:
// 1. Canvas handlers restart the debounce window (unless restoring)
// 2. The window expiring enqueues a capture event
// 3. Undo/Redo enqueue a step event and wait for its reply
// 4. A step flushes any pending capture, moves the cursor, reconstructs the
// surface, and arms the settle timer
// 5. The settle event clears the restoring flag and runs steps that arrived
// while restoring
//
// CRITICAL PATTERNS:
//
// Reentrancy Guard:
// The restoring flag is set before reconstruction starts and cleared only
// after the settle delay, so the object events a reconstruction emits never
// become history entries.
//
// Timer Generations:
// Debounce and settle callbacks carry a generation number. A callback whose
// generation is stale (cancelled, restarted, or from a previous binding) is
// discarded by the loop.
package engine
