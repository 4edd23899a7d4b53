package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/studio/internal/ir"
)

// ErrLoadFailed is returned by MemoryFactories for URLs or ids configured to
// fail.
var ErrLoadFailed = errors.New("resource load failed")

// MemoryFactories builds Node objects without loading anything.
//
// Failures can be injected per image URL, per card id, or for every
// connector, which is how tests exercise partial reconstruction. Latency
// simulates asynchronous image loading.
//
// Thread-safety: MemoryFactories is safe for concurrent use.
type MemoryFactories struct {
	// Latency is slept (context-aware) before every node is produced.
	Latency time.Duration

	mu             sync.Mutex
	failURLs       map[string]bool
	failIDs        map[string]bool
	failConnectors bool
	calls          []string
	seq            int
}

// NewMemoryFactories creates factories that always succeed.
func NewMemoryFactories() *MemoryFactories {
	return &MemoryFactories{
		failURLs: make(map[string]bool),
		failIDs:  make(map[string]bool),
	}
}

// FailURL makes every generation card for url fail to load.
func (f *MemoryFactories) FailURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failURLs[url] = true
}

// FailID makes every card (generation or failed) with id fail.
func (f *MemoryFactories) FailID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIDs[id] = true
}

// FailConnectors makes every connector construction fail.
func (f *MemoryFactories) FailConnectors(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failConnectors = fail
}

// Calls returns the factory calls in order, e.g. "generation:n1".
func (f *MemoryFactories) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CreateGenerationCard builds a node for an image URL.
func (f *MemoryFactories) CreateGenerationCard(ctx context.Context, url string, opts GenerationOptions) (Object, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.assignID(opts.ID, "node")
	f.calls = append(f.calls, "generation:"+id)
	if f.failURLs[url] || f.failIDs[id] {
		return nil, fmt.Errorf("generation card %s (%s): %w", id, url, ErrLoadFailed)
	}
	return NewNode(id, ir.Position{Left: opts.Left, Top: opts.Top}), nil
}

// CreateFailedCard builds a node showing a generation error.
func (f *MemoryFactories) CreateFailedCard(ctx context.Context, opts FailedOptions) (Object, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.assignID(opts.ID, "failed")
	f.calls = append(f.calls, "failed:"+id)
	if f.failIDs[id] {
		return nil, fmt.Errorf("failed card %s: %w", id, ErrLoadFailed)
	}
	return NewNode(id, ir.Position{Left: opts.Left, Top: opts.Top}), nil
}

// CreateConnector builds an edge between two live nodes.
func (f *MemoryFactories) CreateConnector(ctx context.Context, source, target Object) (Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "connector:"+source.Key()+"->"+target.Key())
	if f.failConnectors {
		return nil, fmt.Errorf("connector %s->%s: %w", source.Key(), target.Key(), ErrLoadFailed)
	}
	id := f.assignID("", "edge")
	return NewNode(id, ir.Position{}), nil
}

// assignID returns id or the next generated one. Caller holds f.mu.
func (f *MemoryFactories) assignID(id, prefix string) string {
	if id != "" {
		return id
	}
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *MemoryFactories) wait(ctx context.Context) error {
	if f.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
