package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "two_cards.yaml", passingScenario)

	out, _, err := runCLI(t, "replay", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: two_cards")
	assert.Contains(t, out, "Place two cards and undo the second")
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "restoring")
	assert.Contains(t, out, "History: 3 entries (max 50), at 2 (undo yes, redo yes)")
	assert.Contains(t, out, "Canvas:  1 node(s) [a], 0 connector(s), mode select")
	assert.Contains(t, out, "3 assertion(s) passed")
}

func TestReplay_NoTrace(t *testing.T) {
	path := writeFile(t, t.TempDir(), "two_cards.yaml", passingScenario)

	out, _, err := runCLI(t, "replay", path, "--trace=false")
	require.NoError(t, err)
	assert.NotContains(t, out, "STEP")
	assert.Contains(t, out, "History:")
}

func TestReplay_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "two_cards.yaml", passingScenario)

	out, _, err := runCLI(t, "--format", "json", "replay", path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "two_cards", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Trace, 6)
	assert.Equal(t, "undo", resp.Data.Trace[4].Action)
	assert.Equal(t, []string{"a"}, resp.Data.Final.Nodes)
	assert.Equal(t, 50, resp.Data.Final.Capacity)
}

func TestReplay_AssertionFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wrong.yaml", failingScenario)

	out, _, err := runCLI(t, "replay", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Assertion failed: history_length")
}

func TestReplay_AssertionFailureJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wrong.yaml", failingScenario)

	out, _, err := runCLI(t, "--format", "json", "replay", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Pass)
	assert.Equal(t, ErrCodeAssertFailed, resp.Error.Code)
}

func TestReplay_MissingFile(t *testing.T) {
	_, _, err := runCLI(t, "replay", "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario not found")
}

func TestReplay_InvalidScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "name: bad\nsteps:\n  - op: paint\n")

	out, _, err := runCLI(t, "replay", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeParseFailed)
}

func TestReplay_StepFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ghost.yaml", "name: ghost\nsteps:\n  - op: remove\n    id: nope\n")

	out, _, err := runCLI(t, "replay", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeScenario)
	assert.Contains(t, out, "step 1 (remove)")
}

func TestReplay_ConfigKeymap(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "studio.toml", "[keys]\nundo = [\"u\"]\n")
	path := writeFile(t, dir, "u.yaml", `
name: custom_undo
steps:
  - op: place
    id: a
  - op: wait
    ms: 150
  - op: key
    key: u
assertions:
  - type: index
    count: 0
`)

	cmd := NewRootCommand()
	cmd.SetOut(&nopWriter{})
	cmd.SetArgs([]string{"--config", cfg, "replay", path})
	require.NoError(t, cmd.Execute())
}
