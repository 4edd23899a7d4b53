package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const danglingConnectorJSON = `{
	"objects": [
		{"type": "generation-frame", "data": {"id": "n1"}, "left": 0, "top": 0},
		{"type": "connector", "data": {"sourceId": "n1", "targetId": "n2"}, "left": 0, "top": 0}
	],
	"viewportTransform": [1, 0, 0, 1, 0, 0]
}`

func TestSnapshot_Unmarshal(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(danglingConnectorJSON), &s))

	require.Len(t, s.Objects, 2)
	assert.Equal(t, []string{"n1"}, s.NodeIDs())
	assert.Len(t, s.Connectors(), 1)

	m, ok := s.Viewport()
	assert.True(t, ok)
	assert.Equal(t, IdentityMatrix, m)
}

func TestSnapshot_MalformedViewport(t *testing.T) {
	tests := []struct {
		name     string
		viewport string
	}{
		{"too short", `[1, 0, 0, 1]`},
		{"too long", `[1, 0, 0, 1, 0, 0, 0]`},
		{"non numeric", `[1, 0, "x", 1, 0, 0]`},
		{"not an array", `"identity"`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snapshot
			err := json.Unmarshal([]byte(`{"objects":[],"viewportTransform":`+tt.viewport+`}`), &s)
			require.NoError(t, err, "malformed viewport must not fail the snapshot")

			_, ok := s.Viewport()
			assert.False(t, ok)
		})
	}
}

func TestSnapshot_UnmarshalMissingObjects(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{}`), &s))
	assert.NotNil(t, s.Objects)
	assert.Empty(t, s.Objects)
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(danglingConnectorJSON), &s))

	cp := s.Clone()
	cp.ViewportTransform[0] = 2
	cp.Objects[0].Left = 100

	assert.Equal(t, 1.0, s.ViewportTransform[0])
	assert.Equal(t, 0.0, s.Objects[0].Left)
	assert.Equal(t, MustSnapshotID(s), MustSnapshotID(s.Clone()))
}
