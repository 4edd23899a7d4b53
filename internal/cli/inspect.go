package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/studio/internal/canvas"
	"github.com/roach88/studio/internal/ir"
	"github.com/roach88/studio/internal/snapshot"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Canonical bool     // print the canonical encoding
	FailIDs   []string // card ids whose rebuild is simulated as failing
	FailURLs  []string // image urls whose load is simulated as failing
}

// InspectIssue is one reconstruction problem.
type InspectIssue struct {
	Code  string `json:"code"`
	Kind  string `json:"kind,omitempty"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// InspectResult is the JSON payload of the inspect command.
type InspectResult struct {
	Digest     string   `json:"digest"`
	Nodes      int      `json:"nodes"`
	Connectors int      `json:"connectors"`
	NodeIDs    []string `json:"nodeIds"`
	Viewport   bool     `json:"viewport"` // viewport is well-formed

	Restored struct {
		Nodes      int `json:"nodes"`
		Connectors int `json:"connectors"`
		Dropped    int `json:"dropped"`
	} `json:"restored"`
	Issues []InspectIssue `json:"issues"`

	Canonical string `json:"canonical,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Decode a snapshot and dry-run its reconstruction",
		Long: `Decode a persisted canvas snapshot and report what restoring it would do.

Prints the snapshot digest, node and connector counts, and the outcome of a
reconstruction onto an in-memory canvas: which connectors would be dropped
because an endpoint is missing, and whether the viewport is usable.
--fail-id and --fail-url simulate image load failures.

Exit codes:
  0 - Snapshot decoded (reconstruction issues are reported, not fatal)
  2 - Command error (file not found, invalid JSON)

Examples:
  studio inspect snapshot.json
  studio inspect snapshot.json --canonical
  studio inspect snapshot.json --fail-id card-2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print the canonical JSON encoding")
	cmd.Flags().StringSliceVar(&opts.FailIDs, "fail-id", nil, "simulate a failed rebuild for a card id (repeatable)")
	cmd.Flags().StringSliceVar(&opts.FailURLs, "fail-url", nil, "simulate a failed image load for a url (repeatable)")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("snapshot not found: %s", path), nil)
	}
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "read snapshot", err)
	}

	var snap ir.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fail(f, ExitCommandError, ErrCodeParseFailed, "decode snapshot", err)
	}

	result, err := inspectSnapshot(cmd.Context(), opts, snap)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeParseFailed, "inspect snapshot", err)
	}

	if f.JSON() {
		return f.Success(result)
	}
	writeInspect(cmd.OutOrStdout(), result)
	return nil
}

func inspectSnapshot(ctx context.Context, opts *InspectOptions, snap ir.Snapshot) (*InspectResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	digest, err := ir.SnapshotID(snap)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Digest:     digest,
		Nodes:      len(snap.Nodes()),
		Connectors: len(snap.Connectors()),
		NodeIDs:    snap.NodeIDs(),
		Issues:     []InspectIssue{},
	}
	if result.NodeIDs == nil {
		result.NodeIDs = []string{}
	}
	_, result.Viewport = snap.Viewport()

	if opts.Canonical {
		canonical, err := ir.MarshalCanonical(snap)
		if err != nil {
			return nil, err
		}
		result.Canonical = string(canonical)
	}

	factories := canvas.NewMemoryFactories()
	for _, id := range opts.FailIDs {
		factories.FailID(id)
	}
	for _, url := range opts.FailURLs {
		factories.FailURL(url)
	}
	rec := snapshot.NewReconstructor(factories, canvas.NewRegistry(), snapshot.WithLogger(opts.engineLogger()))
	rep := rec.Restore(ctx, canvas.NewMemory(), snap)

	result.Restored.Nodes = rep.Nodes
	result.Restored.Connectors = rep.Connectors
	result.Restored.Dropped = rep.Dropped()
	for _, issue := range rep.Issues {
		ii := InspectIssue{
			Code: string(issue.Code),
			Kind: string(issue.Kind),
			ID:   issue.NodeID,
		}
		if issue.Err != nil {
			ii.Error = issue.Err.Error()
		}
		result.Issues = append(result.Issues, ii)
	}
	return result, nil
}

func writeInspect(w io.Writer, r *InspectResult) {
	fmt.Fprintf(w, "Snapshot %s\n", styleTitle.Sprint(ir.ShortID(r.Digest)))
	fmt.Fprintf(w, "  digest:     %s\n", r.Digest)
	fmt.Fprintf(w, "  nodes:      %d [%s]\n", r.Nodes, strings.Join(r.NodeIDs, " "))
	fmt.Fprintf(w, "  connectors: %d\n", r.Connectors)
	if r.Viewport {
		fmt.Fprintln(w, "  viewport:   ok")
	} else {
		fmt.Fprintf(w, "  viewport:   %s\n", styleWarn.Sprint("malformed (live viewport kept)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Reconstruction: %d node(s), %d connector(s) rebuilt\n", r.Restored.Nodes, r.Restored.Connectors)
	if len(r.Issues) == 0 {
		fmt.Fprintf(w, "%s no issues\n", styleGood.Sprint(markPass))
	}
	for _, issue := range r.Issues {
		line := issue.Code
		if issue.ID != "" {
			line += " " + issue.ID
		}
		if issue.Error != "" {
			line += ": " + issue.Error
		}
		fmt.Fprintf(w, "%s %s\n", styleWarn.Sprint("!"), line)
	}

	if r.Canonical != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Canonical)
	}
}
