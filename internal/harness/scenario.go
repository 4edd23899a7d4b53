package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted editing session run against a headless canvas.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Config      Config      `yaml:"config,omitempty"`
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions"`
}

// Config overrides engine settings for one scenario. Zero values keep the
// engine defaults.
type Config struct {
	MaxHistory int `yaml:"max_history,omitempty"`
	DebounceMS int `yaml:"debounce_ms,omitempty"`
	SettleMS   int `yaml:"settle_ms,omitempty"`
}

// Step is one user or clock action. Op selects which of the other fields
// apply.
type Step struct {
	Op string `yaml:"op"`

	// place, place_failed, skeleton, move, transform, remove, fail
	ID     string  `yaml:"id,omitempty"`
	URL    string  `yaml:"url,omitempty"`
	Prompt string  `yaml:"prompt,omitempty"`
	Error  string  `yaml:"error,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
	Top    float64 `yaml:"top,omitempty"`

	// transform
	ScaleX float64 `yaml:"scale_x,omitempty"`
	ScaleY float64 `yaml:"scale_y,omitempty"`
	Angle  float64 `yaml:"angle,omitempty"`

	// connect
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`

	// select
	IDs []string `yaml:"ids,omitempty"`

	// key
	Key      string `yaml:"key,omitempty"`
	Ctrl     bool   `yaml:"ctrl,omitempty"`
	Meta     bool   `yaml:"meta,omitempty"`
	Shift    bool   `yaml:"shift,omitempty"`
	Alt      bool   `yaml:"alt,omitempty"`
	Repeat   bool   `yaml:"repeat,omitempty"`
	Up       bool   `yaml:"up,omitempty"`
	Editable bool   `yaml:"editable,omitempty"`

	// wait
	MS int `yaml:"ms,omitempty"`
}

// Step ops.
const (
	OpPlace       = "place"
	OpPlaceFailed = "place_failed"
	OpSkeleton    = "skeleton"
	OpConnect     = "connect"
	OpMove        = "move"
	OpTransform   = "transform"
	OpRemove      = "remove"
	OpSelect      = "select"
	OpKey         = "key"
	OpWait        = "wait"
	OpUndo        = "undo"
	OpRedo        = "redo"
	OpFail        = "fail"
)

// Assertion is a check against the final session state.
type Assertion struct {
	Type  string   `yaml:"type"`
	Count int      `yaml:"count,omitempty"`
	Value bool     `yaml:"value,omitempty"`
	IDs   []string `yaml:"ids,omitempty"`
	Mode  string   `yaml:"mode,omitempty"`
	State string   `yaml:"state,omitempty"`
}

// Assertion types.
const (
	AssertHistoryLength = "history_length"
	AssertIndex         = "index"
	AssertCanUndo       = "can_undo"
	AssertCanRedo       = "can_redo"
	AssertNodes         = "nodes"
	AssertConnectors    = "connectors"
	AssertMode          = "mode"
	AssertState         = "state"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Config.MaxHistory < 0 || s.Config.DebounceMS < 0 || s.Config.SettleMS < 0 {
		return fmt.Errorf("config values must be non-negative")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpPlace, OpPlaceFailed, OpMove, OpTransform, OpRemove:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", index, st.Op)
		}
	case OpConnect:
		if st.Source == "" || st.Target == "" {
			return fmt.Errorf("steps[%d]: source and target are required for connect", index)
		}
	case OpKey:
		if st.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for key", index)
		}
	case OpWait:
		if st.MS <= 0 {
			return fmt.Errorf("steps[%d]: ms must be positive for wait", index)
		}
	case OpFail:
		if st.ID == "" && st.URL == "" {
			return fmt.Errorf("steps[%d]: id or url is required for fail", index)
		}
	case OpSkeleton, OpSelect, OpUndo, OpRedo:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertHistoryLength, AssertIndex, AssertConnectors:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertMode:
		if a.Mode == "" {
			return fmt.Errorf("assertions[%d]: mode is required for mode", index)
		}
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for state", index)
		}
	case AssertCanUndo, AssertCanRedo, AssertNodes:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
