package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"zero", 0, "0"},
		{"negative zero float", -0.0, "0"},
		{"integral float", 10.0, "10"},
		{"fraction", 0.5, "0.5"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"null", nil, "null"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of numbers", []float64{1, 2.5, 3}, "[1,2.5,3]"},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": 1, "x": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":2,"y":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped
	result, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestCompareKeysRFC8785_SurrogatePairs(t *testing.T) {
	// U+FF61 sorts after U+1F600 in UTF-16 (surrogate 0xD83D < 0xFF61)
	// but before it in UTF-8 byte order.
	assert.Equal(t, 1, compareKeysRFC8785("\uFF61", "\U0001F600"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "ab"))
	assert.Equal(t, 0, compareKeysRFC8785("same", "same"))
}

func TestCanonicalSnapshot(t *testing.T) {
	snap := Snapshot{
		Objects: []Record{
			{Type: KindGenerationFrame, Data: GenerationCard{ID: "n1"}},
			{Type: KindConnector, Data: Connector{SourceID: "n1", TargetID: "n2"}},
		},
		ViewportTransform: []float64{1, 0, 0, 1, 0, 0},
	}

	got, err := CanonicalSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t,
		`{"objects":[`+
			`{"data":{"id":"n1","originalUrl":""},"left":0,"top":0,"type":"generation-frame"},`+
			`{"data":{"sourceId":"n1","targetId":"n2"},"left":0,"top":0,"type":"connector"}`+
			`],"viewportTransform":[1,0,0,1,0,0]}`,
		string(got))
}

func TestCanonicalSnapshot_EmptyObjects(t *testing.T) {
	got, err := CanonicalSnapshot(Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, `{"objects":[]}`, string(got))
}
