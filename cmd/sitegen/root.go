// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree. Running the root command without
// a subcommand generates the site.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "sitegen",
		Short: "Generate the VitePress sidebar and theme for an ed2k documentary index",
		Long: TitleStyle.Render("sitegen") + SubtitleStyle.Render(" - VitePress config generator for Markdown document trees") + `

sitegen walks the site root, builds a sidebar from every Markdown document
(directories become collapsible groups, index.md becomes the home entry) and
writes .vitepress/config.mts together with a theme entry and stylesheet.

` + SubtitleStyle.Render("Examples:") + `
  sitegen                     Generate into the current directory
  sitegen -C docs generate    Generate for the site in ./docs
  sitegen tree                Preview the sidebar
  sitegen watch               Regenerate whenever a document changes
  sitegen config init         Write a default sitegen.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, app, flags, false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <dir>/sitegen.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "site root directory")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newGenerateCommand(app, flags),
		newTreeCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
