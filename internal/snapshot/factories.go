package snapshot

import (
	"context"

	"github.com/roach88/studio/internal/canvas"
)

// Factories build live objects from persisted node data.
//
// All calls may block (image loading) and may fail independently.
// Implementations are injected at construction time; canvas.MemoryFactories
// is the headless implementation.
type Factories interface {
	CreateGenerationCard(ctx context.Context, url string, opts canvas.GenerationOptions) (canvas.Object, error)
	CreateFailedCard(ctx context.Context, opts canvas.FailedOptions) (canvas.Object, error)
	CreateConnector(ctx context.Context, source, target canvas.Object) (canvas.Object, error)
}

var _ Factories = (*canvas.MemoryFactories)(nil)
