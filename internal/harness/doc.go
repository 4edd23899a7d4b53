// Package harness runs scripted editing sessions against the engine.
//
// A scenario places cards, drags them, presses keys and advances a manual
// clock. After every step the harness records the history length, cursor,
// engine state and the registered objects on the canvas, which gives a
// deterministic trace suitable for golden comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config:
//	  max_history: 50
//	  debounce_ms: 150
//	  settle_ms: 100
//	steps:
//	  - op: place
//	    id: a
//	    left: 10
//	    top: 20
//	  - op: wait
//	    ms: 150
//	  - op: key
//	    key: z
//	    ctrl: true
//	assertions:
//	  - type: history_length
//	    count: 2
//	  - type: nodes
//	    ids: [a]
//
// # Step Ops
//
//   - place, place_failed: add a generation or failed card with id
//   - skeleton: add a transient placeholder (id is a local alias)
//   - connect: link source to target
//   - move, transform, remove: mutate an object the way a gesture would
//   - select: replace the selection with ids
//   - key: press (or, with up, release) a key through the dispatcher
//   - wait: advance the clock by ms
//   - undo, redo: call the engine directly
//   - fail: make later rebuilds of id or url fail
//
// # Assertion Types
//
//   - history_length, index, connectors: compare count
//   - can_undo, can_redo: compare value
//   - nodes: compare the set of registered node ids
//   - mode: compare the interaction mode (select, pan)
//   - state: compare the engine state (idle, pending, restoring)
//
// # Determinism
//
// The clock only moves on wait steps, ids come from a sequence generator,
// and every step ends with an engine Sync. Undo and redo replies are
// forwarded to the dispatcher at step boundaries only, so a request made
// while a restore is settling resolves on the wait step that settles it.
package harness
