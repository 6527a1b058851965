// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ed2kdoc/sitegen/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `sitegen config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sitegen configuration",
		Long: `Manage sitegen configuration.

Configuration is read from sitegen.cue in the site root (or --config), then
SITEGEN_* environment variables, on top of built-in defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context(), flags, app.stderr)
			if err != nil {
				return app.fail(cmd, err, flags.verbose)
			}
			switch format {
			case "cue":
				fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			case "toml":
				out, err := config.EncodeTOML(s.cfg)
				if err != nil {
					return app.fail(cmd, err, flags.verbose)
				}
				fmt.Fprint(app.stdout, string(out))
			default:
				return app.fail(cmd, fmt.Errorf("unknown format %q (want cue or toml)", format), flags.verbose)
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default sitegen.cue into the site root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := filepath.Abs(flags.dir)
			if err != nil {
				return app.fail(cmd, err, flags.verbose)
			}
			path := flags.configPath
			if path == "" {
				path = filepath.Join(root, config.FileName)
			}
			if err := config.WriteDefault(path, force); err != nil {
				return app.fail(cmd, err, flags.verbose)
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cfgCmd.AddCommand(showCmd, initCmd)
	return cfgCmd
}
