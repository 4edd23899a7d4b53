package engine

import (
	"context"
	"fmt"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
)

// Placement helpers build objects through the injected factories, register
// their records, and add them to the bound surface. The resulting
// object:added event feeds the normal capture pipeline.

// PlaceGeneration adds a generation card for url. An empty opts.ID is filled
// from the engine's IDGenerator.
func (e *Engine) PlaceGeneration(ctx context.Context, url string, opts canvas.GenerationOptions) (canvas.Object, error) {
	s, err := e.boundSurface(ctx)
	if err != nil {
		return nil, err
	}
	if opts.ID == "" {
		opts.ID = e.ids.Generate()
	}

	obj, err := e.factories.CreateGenerationCard(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("place generation %s: %w", opts.ID, err)
	}

	e.registry.Put(obj.Key(), ir.GenerationCard{
		ID:          opts.ID,
		OriginalURL: url,
		Prompt:      opts.Prompt,
		Label:       opts.Label,
	})
	s.Add(obj)
	return obj, nil
}

// PlaceFailed adds a card recording a failed generation.
func (e *Engine) PlaceFailed(ctx context.Context, opts canvas.FailedOptions) (canvas.Object, error) {
	s, err := e.boundSurface(ctx)
	if err != nil {
		return nil, err
	}
	if opts.ID == "" {
		opts.ID = e.ids.Generate()
	}

	obj, err := e.factories.CreateFailedCard(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("place failed card %s: %w", opts.ID, err)
	}

	e.registry.Put(obj.Key(), ir.FailedCard{
		ID:               opts.ID,
		Error:            opts.Error,
		GenerationParams: opts.GenerationParams,
	})
	s.Add(obj)
	return obj, nil
}

// Connect adds a connector between two registered nodes and sends it behind
// them.
func (e *Engine) Connect(ctx context.Context, source, target canvas.Object) (canvas.Object, error) {
	s, err := e.boundSurface(ctx)
	if err != nil {
		return nil, err
	}

	src, err := e.nodeRecord(source)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	tgt, err := e.nodeRecord(target)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	obj, err := e.factories.CreateConnector(ctx, source, target)
	if err != nil {
		return nil, fmt.Errorf("connect %s->%s: %w", src.NodeID(), tgt.NodeID(), err)
	}

	e.registry.Put(obj.Key(), ir.Connector{SourceID: src.NodeID(), TargetID: tgt.NodeID()})
	s.Add(obj)
	s.SendToBack(obj)
	return obj, nil
}

// PlaceSkeleton adds a transient placeholder at pos. It never reaches
// history; the host removes it once the real card is placed.
func (e *Engine) PlaceSkeleton(ctx context.Context, pos ir.Position) (canvas.Object, error) {
	s, err := e.boundSurface(ctx)
	if err != nil {
		return nil, err
	}
	sk := canvas.NewSkeleton("skeleton-"+e.ids.Generate(), pos)
	s.Add(sk)
	return sk, nil
}

func (e *Engine) boundSurface(ctx context.Context) (canvas.Surface, error) {
	var s canvas.Surface
	err := e.submit(ctx, Event{Type: EventTypeQuery, Query: func() {
		s = e.surface
	}})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotBound
	}
	return s, nil
}

func (e *Engine) nodeRecord(obj canvas.Object) (ir.NodeRecord, error) {
	if obj == nil {
		return nil, fmt.Errorf("nil endpoint")
	}
	rec, ok := e.registry.Get(obj.Key())
	if !ok || !rec.Kind().IsNode() {
		return nil, fmt.Errorf("%s is not a registered node", obj.Key())
	}
	return rec, nil
}
