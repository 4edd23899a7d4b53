package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studio/internal/command"
	"github.com/roach88/studio/internal/engine"
)

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name: "minimal",
		Steps: []Step{
			{Op: OpPlace, ID: "a"},
			{Op: OpWait, MS: 150},
		},
		Assertions: []Assertion{
			{Type: AssertHistoryLength, Count: 2},
			{Type: AssertNodes, IDs: []string{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "pending", result.Trace[0].State)
	assert.Equal(t, "idle", result.Trace[1].State)
	assert.Equal(t, 2, result.Final.Length)
	assert.True(t, result.Final.CanUndo)
}

func TestRun_AssertionFailuresReported(t *testing.T) {
	scenario := &Scenario{
		Name:  "failing",
		Steps: []Step{{Op: OpUndo}},
		Assertions: []Assertion{
			{Type: AssertHistoryLength, Count: 5},
			{Type: AssertCanUndo, Value: true},
			{Type: AssertIndex, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "history_length")
	assert.Contains(t, result.Errors[1], "can_undo")
}

func TestRun_UnknownObjectAborts(t *testing.T) {
	scenario := &Scenario{
		Name: "unknown",
		Steps: []Step{
			{Op: OpPlace, ID: "a"},
			{Op: OpMove, ID: "ghost"},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)

	var se *ScenarioError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Step)
	assert.Equal(t, OpMove, se.Op)
	assert.Contains(t, err.Error(), `"ghost" not on canvas`)
}

func TestRun_FailedPlacementAborts(t *testing.T) {
	scenario := &Scenario{
		Name: "fail-first",
		Steps: []Step{
			{Op: OpFail, ID: "a"},
			{Op: OpPlace, ID: "a"},
		},
	}

	_, err := Run(scenario)
	var se *ScenarioError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Step)
}

func TestRun_UndoWhileRestoringResolvesOnSettle(t *testing.T) {
	scenario := &Scenario{
		Name: "queued",
		Steps: []Step{
			{Op: OpPlace, ID: "a"},
			{Op: OpWait, MS: 150},
			{Op: OpPlace, ID: "b"},
			{Op: OpWait, MS: 150},
			{Op: OpUndo},
			{Op: OpKey, Key: "z", Ctrl: true}, // queued behind the restore
			{Op: OpKey, Key: "z", Ctrl: true}, // dropped: one is in flight
			{Op: OpWait, MS: 100},
			{Op: OpWait, MS: 100},
		},
		Assertions: []Assertion{
			{Type: AssertIndex, Count: 0},
			{Type: AssertNodes},
			{Type: AssertState, State: "idle"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	assert.Equal(t, 1, result.Trace[4].Index)
	assert.Equal(t, "restoring", result.Trace[4].State)

	assert.Equal(t, string(command.ActionUndo), result.Trace[5].Action)
	assert.Equal(t, 1, result.Trace[5].Index)

	assert.Empty(t, result.Trace[6].Action)

	// The settle runs the queued undo, which starts a new restore.
	assert.Equal(t, 0, result.Trace[7].Index)
	assert.Equal(t, "restoring", result.Trace[7].State)
	assert.Equal(t, "idle", result.Trace[8].State)
}

func TestRun_ConfigOverrides(t *testing.T) {
	steps := []Step{}
	for _, id := range []string{"a", "b", "c", "d"} {
		steps = append(steps, Step{Op: OpPlace, ID: id}, Step{Op: OpWait, MS: 40})
	}
	scenario := &Scenario{
		Name:   "small",
		Config: Config{MaxHistory: 3, DebounceMS: 40},
		Steps:  steps,
		Assertions: []Assertion{
			{Type: AssertHistoryLength, Count: 3},
			{Type: AssertIndex, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, 3, result.Final.Capacity)
}

func TestRun_CustomKeymap(t *testing.T) {
	km, err := command.NewKeymap(map[command.Action][]string{
		command.ActionUndo: {"u"},
	})
	require.NoError(t, err)

	scenario := &Scenario{
		Name: "custom",
		Steps: []Step{
			{Op: OpPlace, ID: "a"},
			{Op: OpWait, MS: 150},
			{Op: OpKey, Key: "z", Ctrl: true},
			{Op: OpKey, Key: "u"},
		},
		Assertions: []Assertion{
			{Type: AssertIndex, Count: 0},
		},
	}

	result, err := Run(scenario, WithKeymap(km))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Trace[2].Action)
	assert.Equal(t, string(command.ActionUndo), result.Trace[3].Action)
}

func TestRun_TransformCaptured(t *testing.T) {
	scenario := &Scenario{
		Name: "transform",
		Steps: []Step{
			{Op: OpPlaceFailed, ID: "f", Error: "safety filter"},
			{Op: OpWait, MS: 150},
			{Op: OpTransform, ID: "f", ScaleX: 2, Angle: 45},
			{Op: OpWait, MS: 150},
			{Op: OpUndo},
			{Op: OpWait, MS: 100},
		},
		Assertions: []Assertion{
			{Type: AssertHistoryLength, Count: 3},
			{Type: AssertIndex, Count: 1},
			{Type: AssertNodes, IDs: []string{"f"}},
			{Type: AssertCanRedo, Value: true},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestScenarioError_Unwrap(t *testing.T) {
	err := &ScenarioError{Step: 3, Op: OpUndo, Err: engine.ErrStopped}
	assert.Equal(t, "step 3 (undo): engine stopped", err.Error())
	assert.ErrorIs(t, err, engine.ErrStopped)
}

func TestRun_EngineOptionsAreDefaults(t *testing.T) {
	scenario := &Scenario{
		Name: "defaults",
		Steps: []Step{
			{Op: OpPlace, ID: "a"},
			{Op: OpWait, MS: 40},
		},
		Assertions: []Assertion{{Type: AssertHistoryLength, Count: 2}},
	}

	result, err := Run(scenario, WithEngineOptions(engine.WithDebounce(40*time.Millisecond)))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	// Scenario config wins over the supplied defaults.
	scenario.Config.DebounceMS = 80
	result, err = Run(scenario, WithEngineOptions(engine.WithDebounce(40*time.Millisecond)))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, 1, result.Final.Length)
}
