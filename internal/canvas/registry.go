package canvas

import (
	"sync"

	"github.com/roach88/studio/internal/ir"
)

// Registry maps live object keys to their semantic payload.
//
// It is the arena half of the arena+index pattern: surfaces hold objects that
// know only their key, the registry holds what the key means. An object with
// no registry entry is transient and is never serialized.
//
// Thread-safety: Registry is safe for concurrent use. Records are cloned on
// the way in and out so callers cannot alias registry state.
type Registry struct {
	mu      sync.RWMutex
	records map[string]ir.NodeRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]ir.NodeRecord)}
}

// Put records rec for key, replacing any previous record.
func (r *Registry) Put(key string, rec ir.NodeRecord) {
	if rec == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = rec.Clone()
}

// Get returns the record for key.
func (r *Registry) Get(key string) (ir.NodeRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[key]
	return ok
}

// Reset forgets every key.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]ir.NodeRecord)
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
