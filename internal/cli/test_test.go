package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := runCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, _, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, _, err := runCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two_cards.yaml", passingScenario)

	out, _, err := runCLI(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "two_cards (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "two_cards.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"two_cards"`)

	out, _, err = runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "no golden file")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two_cards.yaml", passingScenario)
	writeFile(t, dir, "golden/two_cards.golden", `{"scenario_name":"two_cards","trace":[]}`)

	out, _, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandMixedResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two_cards.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)
	writeFile(t, dir, "broken.yml", "name: [")

	out, _, err := runCLI(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 2, resp.Data.Failed)

	byName := map[string]ScenarioResult{}
	for _, sr := range resp.Data.Scenarios {
		byName[sr.Name] = sr
	}
	assert.True(t, byName["two_cards"].Pass)
	assert.Equal(t, "missing", byName["two_cards"].Golden)
	assert.False(t, byName["wrong_length"].Pass)
	require.Contains(t, byName, "broken")
	assert.Contains(t, byName["broken"].Errors[0], "load error")
}

func TestFindScenarioFiles_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "undo-basic.yaml", passingScenario)
	writeFile(t, dir, "undo-edges.yml", passingScenario)
	writeFile(t, dir, "keys.yaml", passingScenario)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "golden/stale.yaml", passingScenario)

	all, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	undo, err := findScenarioFiles(dir, "undo-*")
	require.NoError(t, err)
	assert.Len(t, undo, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "undo.golden"),
		goldenFilePath(filepath.Join("scenarios", "undo.yaml")))
}
