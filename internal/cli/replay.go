package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/studio/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Trace bool // print the per-step trace in text mode
}

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Errors   []string             `json:"errors,omitempty"`
	Trace    []harness.TraceEvent `json:"trace"`
	Final    harness.Final        `json:"final"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay an editing scenario against a headless canvas",
		Long: `Replay a scripted editing session against an in-memory canvas.

Every step (placements, drags, key presses, waits, undo/redo) runs on a
manual clock, so the output is the same on every run. The history after
each step and the final canvas are printed.

History settings come from the config file unless the scenario overrides
them.

Exit codes:
  0 - Scenario ran and all assertions held
  1 - One or more assertions failed
  2 - Command error (file not found, invalid scenario, step failed)

Examples:
  studio replay ./scenarios/undo_redo.yaml
  studio replay ./scenarios/undo_redo.yaml --trace=false
  studio replay ./scenarios/undo_redo.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", true, "print the per-step trace")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), nil)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeParseFailed, "load scenario", err)
	}
	f.VerboseLog("Loaded scenario %s (%d steps, %d assertions)", scenario.Name, len(scenario.Steps), len(scenario.Assertions))

	result, err := runHarness(opts.RootOptions, scenario)
	if err != nil {
		var se *harness.ScenarioError
		if errors.As(err, &se) {
			return fail(f, ExitCommandError, ErrCodeScenario, "replay failed", err)
		}
		return fail(f, ExitCommandError, ErrCodeGeneric, "replay failed", err)
	}

	out := ReplayResult{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		Errors:   result.Errors,
		Trace:    result.Trace,
		Final:    result.Final,
	}

	if f.JSON() {
		if result.Pass {
			return f.Success(out)
		}
		msg := fmt.Sprintf("%d assertion(s) failed", len(result.Errors))
		if err := f.Failure(ErrCodeAssertFailed, msg, out); err != nil {
			return err
		}
		return reportedExitError(ExitFailure, msg)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s\n", styleTitle.Sprint(scenario.Name))
	if scenario.Description != "" {
		fmt.Fprintf(w, "%s\n", styleSubtle.Sprint(scenario.Description))
	}
	fmt.Fprintln(w)

	if opts.Trace {
		writeTrace(w, result.Trace)
		fmt.Fprintln(w)
	}
	writeFinal(w, result.Final)
	fmt.Fprintln(w)

	if !result.Pass {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "%s %s\n", styleBad.Sprint(markFail), strings.TrimSpace(e))
		}
		return reportedExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(result.Errors)))
	}
	fmt.Fprintf(w, "%s %d assertion(s) passed\n", styleGood.Sprint(markPass), len(scenario.Assertions))
	return nil
}

// runHarness runs scenario with the configured keymap and history
// settings.
func runHarness(opts *RootOptions, scenario *harness.Scenario) (*harness.Result, error) {
	cfg := opts.config()
	km, err := cfg.Keymap()
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}
	return harness.Run(scenario,
		harness.WithKeymap(km),
		harness.WithEngineOptions(cfg.EngineOptions()...),
		harness.WithLogger(opts.engineLogger()),
	)
}

func writeTrace(w io.Writer, trace []harness.TraceEvent) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tOP\tACTION\tHISTORY\tSTATE\tNODES\tEDGES\tMODE")
	for _, ev := range trace {
		action := ev.Action
		if action == "" {
			action = "-"
		}
		nodes := strings.Join(ev.Nodes, ",")
		if nodes == "" {
			nodes = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\t%s\t%d\t%s\n",
			ev.Step, ev.Op, action, ev.Index+1, ev.Length, ev.State, nodes, ev.Connectors, ev.Mode)
	}
	tw.Flush()
}

func writeFinal(w io.Writer, final harness.Final) {
	fmt.Fprintf(w, "History: %d entries (max %d), at %d", final.Length, final.Capacity, final.Index+1)
	fmt.Fprintf(w, " (undo %s, redo %s)\n", yesNo(final.CanUndo), yesNo(final.CanRedo))
	fmt.Fprintf(w, "Canvas:  %d node(s) [%s], %d connector(s), mode %s\n",
		len(final.Nodes), strings.Join(final.Nodes, " "), final.Connectors, final.Mode)
	if final.State != "idle" {
		fmt.Fprintf(w, "%s engine still %s\n", styleWarn.Sprint("!"), final.State)
	}
}

func yesNo(b bool) string {
	if b {
		return styleGood.Sprint("yes")
	}
	return styleSubtle.Sprint("no")
}
