package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys_Defaults(t *testing.T) {
	out, _, err := runCLI(t, "keys")
	require.NoError(t, err)

	assert.Contains(t, out, "undo")
	assert.Contains(t, out, "mod+z")
	assert.Contains(t, out, "mod+shift+z, mod+y")
	assert.Contains(t, out, "generate")
}

func TestKeys_JSON(t *testing.T) {
	out, _, err := runCLI(t, "--format", "json", "keys")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []KeyBinding `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	actions := make([]string, 0, len(resp.Data))
	for _, b := range resp.Data {
		actions = append(actions, b.Action)
	}
	assert.Equal(t, []string{"undo", "redo", "generate", "delete", "pan"}, actions)
	assert.Equal(t, []string{"mod+z"}, resp.Data[0].Chords)
}

func TestKeys_ConfigOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "studio.toml", "[keys]\nundo = [\"u\"]\nredo = []\n")

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetArgs([]string{"--config", cfg, "--no-color", "keys"})
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "u\n")
	assert.NotContains(t, out, "mod+z")
	assert.Contains(t, out, "(unbound)")
}

func TestKeys_RejectsArgs(t *testing.T) {
	_, _, err := runCLI(t, "keys", "extra")
	assert.Error(t, err)
}
