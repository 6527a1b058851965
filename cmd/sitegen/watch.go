// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a document or sitegen.cue changes",
		Long: `Generate once, then watch the site root and regenerate after every
burst of changes. Generated files under .vitepress are not watched.
Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, app, flags, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, flags *rootFlagValues, debounce time.Duration) error {
	s, err := app.newSession(cmd.Context(), flags, app.stdout)
	if err != nil {
		return app.fail(cmd, err, flags.verbose)
	}

	regenerate := func(ctx context.Context) {
		// Reload so edits to sitegen.cue take effect without a restart.
		current, err := app.newSession(ctx, flags, app.stdout)
		if err != nil {
			fmt.Fprintln(app.stderr, WarningStyle.Render("!")+" "+formatErrorForDisplay(err, flags.verbose))
			return
		}
		report, err := app.generator(current, false).Run(ctx)
		if err != nil {
			fmt.Fprintln(app.stderr, WarningStyle.Render("!")+" "+formatErrorForDisplay(err, flags.verbose))
			return
		}
		app.printReport(report)
	}

	regenerate(cmd.Context())

	w, err := watch.New(watch.Config{
		BaseDir:  s.root,
		Patterns: []string{"**/*" + s.cfg.Scan.DocExt, config.FileName},
		Ignore:   s.cfg.Scan.IgnorePatterns,
		Debounce: debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s %d change(s): regenerating\n", CmdStyle.Render("→"), len(changed))
			regenerate(ctx)
			return nil
		},
	})
	if err != nil {
		return app.fail(cmd, err, flags.verbose)
	}

	fmt.Fprintf(app.stdout, "%s Watching %s (Ctrl+C to stop)\n", CmdStyle.Render("→"), s.root)
	return w.Run(cmd.Context())
}
