package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/studio/internal/command"
)

// KeyBinding is one action and the chords bound to it.
type KeyBinding struct {
	Action string   `json:"action"`
	Chords []string `json:"chords"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the effective keymap",
		Long: `Print the keyboard bindings in effect after applying [keys] from the config
file. "mod" is Ctrl, or Cmd on macOS.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			km, err := rootOpts.config().Keymap()
			if err != nil {
				return fail(f, ExitCommandError, ErrCodeConfig, "invalid [keys]", err)
			}
			bindings := keyBindings(km)

			if f.JSON() {
				return f.Success(bindings)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, b := range bindings {
				chords := styleSubtle.Sprint("(unbound)")
				if len(b.Chords) > 0 {
					chords = strings.Join(b.Chords, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\n", b.Action, chords)
			}
			return tw.Flush()
		},
	}
}

func keyBindings(km *command.Keymap) []KeyBinding {
	out := make([]KeyBinding, 0, len(command.Actions))
	for _, action := range command.Actions {
		b := KeyBinding{Action: string(action), Chords: []string{}}
		for _, c := range km.Chords(action) {
			b.Chords = append(b.Chords, c.String())
		}
		out = append(out, b)
	}
	return out
}
