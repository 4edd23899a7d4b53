package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and an empty config.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing.toml")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const passingScenario = `
name: two_cards
description: Place two cards and undo the second
steps:
  - op: place
    id: a
  - op: wait
    ms: 150
  - op: place
    id: b
    left: 200
  - op: wait
    ms: 150
  - op: key
    key: z
    ctrl: true
  - op: wait
    ms: 100
assertions:
  - type: history_length
    count: 3
  - type: index
    count: 1
  - type: nodes
    ids: [a]
`

const failingScenario = `
name: wrong_length
steps:
  - op: place
    id: a
  - op: wait
    ms: 150
assertions:
  - type: history_length
    count: 7
`
