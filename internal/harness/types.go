package harness

import (
	"fmt"
)

// TraceEvent is the session state observed after one step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Action string `json:"action,omitempty"` // keymap action for key steps

	Length int    `json:"length"`
	Index  int    `json:"index"`
	State  string `json:"state"`

	Nodes      []string `json:"nodes"`
	Connectors int      `json:"connectors"`
	Mode       string   `json:"mode"`
}

// Final is the session state after the last step.
type Final struct {
	Length     int      `json:"length"`
	Capacity   int      `json:"capacity"`
	Index      int      `json:"index"`
	CanUndo    bool     `json:"canUndo"`
	CanRedo    bool     `json:"canRedo"`
	State      string   `json:"state"`
	Nodes      []string `json:"nodes"`
	Connectors int      `json:"connectors"`
	Mode       string   `json:"mode"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final Final `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// ScenarioError reports a step that could not be executed.
type ScenarioError struct {
	Step int // 1-indexed
	Op   string
	Err  error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}
