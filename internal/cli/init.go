package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/studio/internal/command"
	"github.com/roach88/studio/internal/config"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Path string `json:"path"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: `Write the configuration in effect to the config file (--config, or the
default location), with the full keymap spelled out so it can be edited.
An existing file is kept unless --force is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			path := rootOpts.ConfigPath
			if path == "" {
				path = config.Path()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fail(f, ExitCommandError, ErrCodeWriteFailed,
					fmt.Sprintf("config already exists: %s (use --force to overwrite)", path), nil)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fail(f, ExitCommandError, ErrCodeWriteFailed, "stat config", err)
			}

			cfg := *rootOpts.config()
			cfg.Keys = effectiveKeys(cfg.Keys)
			if err := config.Save(path, &cfg); err != nil {
				return fail(f, ExitCommandError, ErrCodeWriteFailed, "write config", err)
			}

			if f.JSON() {
				return f.Success(InitResult{Path: path})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", styleGood.Sprint(markPass), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

// effectiveKeys returns the default bindings with overrides applied.
func effectiveKeys(overrides map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for action, chords := range command.DefaultBindings() {
		out[string(action)] = chords
	}
	for action, chords := range overrides {
		out[action] = chords
	}
	return out
}
