package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotID_Deterministic(t *testing.T) {
	snap := Snapshot{
		Objects: []Record{
			NewRecord(GenerationCard{ID: "n1", OriginalURL: "https://img/1.png"}, Position{Left: 10, Top: 20}, IdentityTransform),
		},
		ViewportTransform: IdentityMatrix.Slice(),
	}

	id1, err := SnapshotID(snap)
	require.NoError(t, err)
	id2, err := SnapshotID(snap.Clone())
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestSnapshotID_OrderSensitive(t *testing.T) {
	a := NewRecord(GenerationCard{ID: "a"}, Position{}, IdentityTransform)
	b := NewRecord(GenerationCard{ID: "b"}, Position{}, IdentityTransform)

	ab := MustSnapshotID(Snapshot{Objects: []Record{a, b}})
	ba := MustSnapshotID(Snapshot{Objects: []Record{b, a}})

	assert.NotEqual(t, ab, ba, "draw order is part of snapshot identity")
}

func TestSnapshotID_DomainSeparation(t *testing.T) {
	snap := Snapshot{Objects: []Record{}}
	canonical, err := CanonicalSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainSnapshot, canonical), MustSnapshotID(snap))
	assert.NotEqual(t, hashWithDomain("other/v1", canonical), MustSnapshotID(snap))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", ShortID("0123456789abcdef"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestDomainSnapshot_FollowsFormatVersion(t *testing.T) {
	assert.Equal(t, "studio/snapshot/v"+SnapshotVersion, DomainSnapshot)

	snap := Snapshot{ViewportTransform: IdentityMatrix.Slice()}
	canonical, err := CanonicalSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainSnapshot, canonical), MustSnapshotID(snap))
	assert.NotEqual(t, hashWithDomain("studio/snapshot/v0", canonical), MustSnapshotID(snap))
}

func TestSnapshotID_NullGenerationParam(t *testing.T) {
	snap := Snapshot{
		Objects: []Record{
			NewRecord(FailedCard{ID: "f1", Error: "quota", GenerationParams: map[string]any{"seed": nil, "steps": 20}}, Position{}, IdentityTransform),
		},
		ViewportTransform: IdentityMatrix.Slice(),
	}

	canonical, err := CanonicalSnapshot(snap)
	require.NoError(t, err)
	assert.Contains(t, string(canonical), `"generationParams":{"seed":null,"steps":20}`)
	assert.NotContains(t, string(canonical), `"label":null`)

	id, err := SnapshotID(snap)
	require.NoError(t, err)
	assert.Equal(t, id, MustSnapshotID(snap.Clone()))
}
