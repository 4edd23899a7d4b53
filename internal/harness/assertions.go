package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Final    Final  // Final state for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal state:\n")
	fmt.Fprintf(&buf, "  history: %d entries, index %d (%s)\n", e.Final.Length, e.Final.Index, e.Final.State)
	fmt.Fprintf(&buf, "  nodes: %v\n", e.Final.Nodes)
	fmt.Fprintf(&buf, "  connectors: %d\n", e.Final.Connectors)

	return buf.String()
}

// EvaluateAssertions checks every assertion against final and returns one
// message per failure.
func EvaluateAssertions(final Final, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertHistoryLength:
			err = assertInt(final, assertion.Type, assertion.Count, final.Length)
		case AssertIndex:
			err = assertInt(final, assertion.Type, assertion.Count, final.Index)
		case AssertConnectors:
			err = assertInt(final, assertion.Type, assertion.Count, final.Connectors)
		case AssertCanUndo:
			err = assertBool(final, assertion.Type, assertion.Value, final.CanUndo)
		case AssertCanRedo:
			err = assertBool(final, assertion.Type, assertion.Value, final.CanRedo)
		case AssertNodes:
			err = assertNodes(final, assertion.IDs)
		case AssertMode:
			err = assertString(final, assertion.Type, assertion.Mode, final.Mode)
		case AssertState:
			err = assertString(final, assertion.Type, assertion.State, final.State)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertInt(final Final, kind string, expected, actual int) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", expected),
		Actual:   fmt.Sprintf("%d", actual),
		Final:    final,
	}
}

func assertBool(final Final, kind string, expected, actual bool) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%t", expected),
		Actual:   fmt.Sprintf("%t", actual),
		Final:    final,
	}
}

func assertString(final Final, kind, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: expected,
		Actual:   actual,
		Final:    final,
	}
}

// assertNodes compares node keys as a set; final.Nodes is already sorted.
func assertNodes(final Final, expected []string) error {
	want := slices.Clone(expected)
	slices.Sort(want)
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, final.Nodes) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNodes,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", final.Nodes),
		Final:    final,
	}
}
