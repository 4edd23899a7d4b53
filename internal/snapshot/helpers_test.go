package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
)

// place adds a registered node to s, the way a host UI does.
func place(t *testing.T, s *canvas.Memory, reg *canvas.Registry, rec ir.NodeRecord, pos ir.Position) canvas.Object {
	t.Helper()
	key := rec.NodeID()
	require.NotEmpty(t, key)
	n := canvas.NewNode(key, pos)
	reg.Put(key, rec)
	s.Add(n)
	return n
}

// connect adds a registered connector between a and b.
func connect(t *testing.T, s *canvas.Memory, reg *canvas.Registry, a, b canvas.Object) canvas.Object {
	t.Helper()
	edge := canvas.NewNode("edge:"+a.Key()+"->"+b.Key(), ir.Position{})
	reg.Put(edge.Key(), ir.Connector{SourceID: a.Key(), TargetID: b.Key()})
	s.Add(edge)
	return edge
}

func restore(t *testing.T, f Factories, snap ir.Snapshot) (*canvas.Memory, *canvas.Registry, Report) {
	t.Helper()
	s := canvas.NewMemory()
	reg := canvas.NewRegistry()
	rep := NewReconstructor(f, reg).Restore(context.Background(), s, snap)
	return s, reg, rep
}

func objectKeys(s canvas.Surface) []string {
	objs := s.Objects()
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Key()
	}
	return out
}
