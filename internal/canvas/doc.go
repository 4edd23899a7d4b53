// Package canvas describes the render surface the studio engine drives and
// ships a headless in-memory implementation of it.
//
// The real surface (the interactive canvas in the host UI) is an external
// collaborator. The engine only depends on the Surface and Object
// interfaces declared here. Live objects carry a lookup key; the semantic
// payload for that key lives in a Registry owned by the engine.
//
// Memory, Node and MemoryFactories are used by the CLI, the scenario
// harness and tests. Memory emits events synchronously on the goroutine
// that performed the mutation, like a single-threaded UI event loop.
package canvas
