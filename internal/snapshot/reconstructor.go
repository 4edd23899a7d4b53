package snapshot

import (
	"context"
	"log/slog"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
)

// Report summarizes one Restore.
type Report struct {
	// Nodes is the number of nodes rebuilt.
	Nodes int

	// Connectors is the number of connectors rebuilt.
	Connectors int

	// ViewportRestored is false when the snapshot viewport was malformed.
	ViewportRestored bool

	// Issues lists every recovered problem in the order encountered.
	Issues []*ReconstructionError
}

// Dropped returns the number of records that were not rebuilt.
func (r Report) Dropped() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Code != ErrCodeViewportMalformed {
			n++
		}
	}
	return n
}

// Reconstructor rebuilds a live Surface from a Snapshot.
type Reconstructor struct {
	factories Factories
	registry  *canvas.Registry
	logger    *slog.Logger
}

// ReconstructorOption configures a Reconstructor.
type ReconstructorOption func(*Reconstructor)

// WithLogger sets the logger used for reconstruction issues.
func WithLogger(l *slog.Logger) ReconstructorOption {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconstructor creates a reconstructor that builds objects with
// factories and registers their payloads in registry.
func NewReconstructor(factories Factories, registry *canvas.Registry, opts ...ReconstructorOption) *Reconstructor {
	r := &Reconstructor{
		factories: factories,
		registry:  registry,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restore clears s and rebuilds snap onto it. It returns once every factory
// call has settled.
//
// Restore is not cancellable midway: factories receive a context that
// carries ctx's values but not its cancellation, so a restore always
// finishes both passes.
func (r *Reconstructor) Restore(ctx context.Context, s canvas.Surface, snap ir.Snapshot) Report {
	ctx = context.WithoutCancel(ctx)
	var rep Report

	s.Clear()
	r.registry.Reset()

	// Pass 1: nodes. Must fully complete before pass 2 so edges can resolve.
	live := make(map[string]canvas.Object)
	for _, rec := range snap.Objects {
		if rec.Type == ir.KindConnector {
			continue
		}
		if rec.Data == nil {
			r.logger.Warn("node reconstruction failed", "kind", rec.Type, "error", ErrNoData)
			rep.Issues = append(rep.Issues, &ReconstructionError{Code: ErrCodeNodeFailed, Kind: rec.Type, Err: ErrNoData})
			continue
		}

		obj, err := r.createNode(ctx, rec)
		if err == nil && obj == nil {
			err = ErrNoObject
		}
		if err != nil {
			issue := &ReconstructionError{Code: ErrCodeNodeFailed, Kind: rec.Type, NodeID: rec.Data.NodeID(), Err: err}
			r.logger.Warn("node reconstruction failed",
				"kind", rec.Type,
				"id", issue.NodeID,
				"error", err,
			)
			rep.Issues = append(rep.Issues, issue)
			continue
		}

		data := withNodeID(rec.Data, obj.Key())
		obj.SetPosition(rec.Position())
		obj.SetTransform(rec.Transform())
		r.registry.Put(obj.Key(), data)
		s.Add(obj)
		live[data.NodeID()] = obj
		rep.Nodes++
	}

	// Pass 2: edges, by id against the nodes that actually exist.
	var edges []canvas.Object
	for _, rec := range snap.Objects {
		conn, ok := rec.Data.(ir.Connector)
		if rec.Type != ir.KindConnector || !ok {
			continue
		}
		edgeID := conn.SourceID + "->" + conn.TargetID

		source, okSource := live[conn.SourceID]
		target, okTarget := live[conn.TargetID]
		if !okSource || !okTarget {
			r.logger.Debug("connector dropped: endpoint missing",
				"source", conn.SourceID,
				"target", conn.TargetID,
			)
			rep.Issues = append(rep.Issues, &ReconstructionError{Code: ErrCodeEdgeUnresolved, Kind: ir.KindConnector, NodeID: edgeID})
			continue
		}

		obj, err := r.factories.CreateConnector(ctx, source, target)
		if err == nil && obj == nil {
			err = ErrNoObject
		}
		if err != nil {
			r.logger.Warn("connector reconstruction failed",
				"source", conn.SourceID,
				"target", conn.TargetID,
				"error", err,
			)
			rep.Issues = append(rep.Issues, &ReconstructionError{Code: ErrCodeConnectorFailed, Kind: ir.KindConnector, NodeID: edgeID, Err: err})
			continue
		}

		obj.SetPosition(rec.Position())
		obj.SetTransform(rec.Transform())
		r.registry.Put(obj.Key(), conn)
		s.Add(obj)
		edges = append(edges, obj)
		rep.Connectors++
	}

	// Connectors never occlude their endpoints. Sending them back last to
	// first keeps their relative order as recorded.
	for i := len(edges) - 1; i >= 0; i-- {
		s.SendToBack(edges[i])
	}

	// Viewport last, only if well-formed.
	if m, ok := snap.Viewport(); ok {
		s.SetViewportTransform(m)
		rep.ViewportRestored = true
	} else {
		r.logger.Debug("viewport not restored: malformed", "components", len(snap.ViewportTransform))
		rep.Issues = append(rep.Issues, &ReconstructionError{Code: ErrCodeViewportMalformed})
	}

	s.RequestRenderAll()
	return rep
}

func (r *Reconstructor) createNode(ctx context.Context, rec ir.Record) (canvas.Object, error) {
	switch data := rec.Data.(type) {
	case ir.GenerationCard:
		return r.factories.CreateGenerationCard(ctx, data.OriginalURL, canvas.GenerationOptions{
			Left:   rec.Left,
			Top:    rec.Top,
			Prompt: data.Prompt,
			ID:     data.ID,
			Label:  data.Label,
		})
	case ir.FailedCard:
		return r.factories.CreateFailedCard(ctx, canvas.FailedOptions{
			Left:             rec.Left,
			Top:              rec.Top,
			Error:            data.Error,
			GenerationParams: data.GenerationParams,
			ID:               data.ID,
		})
	default:
		return nil, &ReconstructionError{Code: ErrCodeNodeFailed, Kind: rec.Type, NodeID: data.NodeID()}
	}
}

// withNodeID fills in the factory-assigned key for records persisted
// without an id, so the next capture round-trips it.
func withNodeID(rec ir.NodeRecord, key string) ir.NodeRecord {
	if rec.NodeID() != "" {
		return rec
	}
	switch data := rec.(type) {
	case ir.GenerationCard:
		data.ID = key
		return data
	case ir.FailedCard:
		data.ID = key
		return data
	default:
		return rec
	}
}
