package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
)

func TestSerializer_CapturesTypedNodesInOrder(t *testing.T) {
	s := canvas.NewMemory()
	reg := canvas.NewRegistry()

	a := place(t, s, reg, ir.GenerationCard{ID: "a", OriginalURL: "https://img/a.png", Prompt: "chair"}, ir.Position{Left: 10, Top: 20})
	s.Add(canvas.NewSkeleton("skeleton-1", ir.Position{}))
	b := place(t, s, reg, ir.FailedCard{ID: "b", Error: "nsfw filter"}, ir.Position{Left: 30, Top: 40})
	connect(t, s, reg, a, b)
	s.Add(canvas.NewNode("decoration", ir.Position{})) // no registry entry

	a.SetTransform(ir.Transform{ScaleX: 2, ScaleY: 2, Angle: 15})
	s.SetViewportTransform(ir.Matrix{1.5, 0, 0, 1.5, -20, 10})

	snap := NewSerializer(reg).Capture(s)

	require.Len(t, snap.Objects, 3)
	assert.Equal(t, ir.KindGenerationFrame, snap.Objects[0].Type)
	assert.Equal(t, ir.KindFailedFrame, snap.Objects[1].Type)
	assert.Equal(t, ir.KindConnector, snap.Objects[2].Type)

	assert.Equal(t, ir.Position{Left: 10, Top: 20}, snap.Objects[0].Position())
	assert.Equal(t, ir.Transform{ScaleX: 2, ScaleY: 2, Angle: 15}, snap.Objects[0].Transform())
	assert.Equal(t, ir.Connector{SourceID: "a", TargetID: "b"}, snap.Objects[2].Data)
	assert.Equal(t, []float64{1.5, 0, 0, 1.5, -20, 10}, snap.ViewportTransform)
}

func TestSerializer_NoSideEffects(t *testing.T) {
	s := canvas.NewMemory()
	reg := canvas.NewRegistry()
	place(t, s, reg, ir.GenerationCard{ID: "a"}, ir.Position{})

	events := 0
	s.On(canvas.EventObjectAdded, func(canvas.Event) { events++ })
	s.On(canvas.EventObjectRemoved, func(canvas.Event) { events++ })

	before := objectKeys(s)
	_ = NewSerializer(reg).Capture(s)

	assert.Equal(t, before, objectKeys(s))
	assert.Equal(t, 0, events)
	assert.Equal(t, 0, s.RenderRequests())
}

func TestSerializer_Deterministic(t *testing.T) {
	s := canvas.NewMemory()
	reg := canvas.NewRegistry()
	a := place(t, s, reg, ir.GenerationCard{ID: "a"}, ir.Position{Left: 1})
	b := place(t, s, reg, ir.GenerationCard{ID: "b"}, ir.Position{Left: 2})
	connect(t, s, reg, a, b)

	ser := NewSerializer(reg)
	assert.Equal(t, ir.MustSnapshotID(ser.Capture(s)), ir.MustSnapshotID(ser.Capture(s)))
}

func TestSerializer_EmptyCanvas(t *testing.T) {
	snap := NewSerializer(canvas.NewRegistry()).Capture(canvas.NewMemory())
	assert.NotNil(t, snap.Objects)
	assert.Empty(t, snap.Objects)

	m, ok := snap.Viewport()
	assert.True(t, ok)
	assert.Equal(t, ir.IdentityMatrix, m)
}
