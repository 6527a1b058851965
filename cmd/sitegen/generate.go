// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/ed2kdoc/sitegen/internal/emit"
	"github.com/ed2kdoc/sitegen/internal/generate"

	"github.com/spf13/cobra"
)

func newGenerateCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the VitePress config, theme and stylesheet",
		Long: `Scan the site root and write the generated VitePress files.

Nothing is written when the scan fails. With comments enabled the guestbook
page receives the comment widget once; later runs leave it untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, app, flags, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render everything but write nothing and skip hooks")
	return cmd
}

func runGenerate(cmd *cobra.Command, app *App, flags *rootFlagValues, dryRun bool) error {
	s, err := app.newSession(cmd.Context(), flags, app.stdout)
	if err != nil {
		return app.fail(cmd, err, flags.verbose)
	}

	report, err := app.generator(s, dryRun).Run(cmd.Context())
	if err != nil {
		return app.fail(cmd, err, flags.verbose)
	}
	app.printReport(report)
	return nil
}

func (a *App) printReport(r *generate.Report) {
	if r.DryRun {
		fmt.Fprintf(a.stdout, "%s %d files from %d documents (nothing written)\n",
			WarningStyle.Render("Dry run:"), len(r.Artifacts), r.Documents)
	} else {
		fmt.Fprintf(a.stdout, "%s Generated %d files from %d documents in %s\n",
			SuccessStyle.Render("✓"), len(r.Artifacts), r.Documents, r.Duration.Round(time.Millisecond))
	}
	for _, art := range r.Artifacts {
		fmt.Fprintf(a.stdout, "  %s\n", SubtitleStyle.Render(art.Path))
	}
	if r.Guestbook != emit.GuestbookDisabled {
		fmt.Fprintf(a.stdout, "  guestbook: %s\n", r.Guestbook)
	}
	if r.Hooks > 0 {
		fmt.Fprintf(a.stdout, "  hooks: %d ran\n", r.Hooks)
	}
}
