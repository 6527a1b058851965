// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/generate"
	"github.com/ed2kdoc/sitegen/internal/hook"
	"github.com/ed2kdoc/sitegen/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI dependencies. Every command handler receives the App and
	// writes only through its writers.
	App struct {
		fs      afero.Fs
		stdout  io.Writer
		stderr  io.Writer
		environ []string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Fs      afero.Fs
		Stdout  io.Writer
		Stderr  io.Writer
		Environ []string
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		configPath string
		dir        string
		verbose    bool
	}

	// session is the per-invocation state derived from the root flags.
	session struct {
		cfg     *config.Config
		cfgPath string
		root    string
		logger  *log.Logger
	}
)

// NewApp creates an App, filling nil dependencies with the process defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		fs:      deps.Fs,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		environ: deps.Environ,
	}
	if app.fs == nil {
		app.fs = afero.NewOsFs()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.environ == nil {
		app.environ = os.Environ()
	}
	return app
}

// newLogger returns the diagnostic logger writing to w: Info by default,
// Debug with --verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// newSession resolves the site root and loads its configuration. Progress
// lines go to progress: stdout for generation, stderr for commands whose
// stdout is their result.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues, progress io.Writer) (*session, error) {
	root, err := filepath.Abs(flags.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve site root %s: %w", flags.dir, err)
	}
	cfg, cfgPath, err := config.Load(ctx, config.LoadOptions{FilePath: flags.configPath, RootDir: root})
	if err != nil {
		return nil, err
	}

	logger := newLogger(progress, flags.verbose)
	if cfgPath != "" {
		logger.Debug("loaded configuration", "path", cfgPath)
	}
	return &session{cfg: cfg, cfgPath: cfgPath, root: root, logger: logger}, nil
}

// generator builds a Generator for s with hook output on the App writers.
func (a *App) generator(s *session, dryRun bool) *generate.Generator {
	return generate.New(s.cfg, a.fs, s.root,
		generate.WithLogger(s.logger),
		generate.WithDryRun(dryRun),
		generate.WithHookIO(a.stdout, a.stderr),
		generate.WithEnviron(a.environ),
	)
}

// fail renders err for the user and converts it into an ExitError so fang
// does not print it a second time. Hook exit codes are passed through.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if verbose {
		if guide, guideErr := issue.RenderGuide(err, "auto"); guideErr == nil && guide != "" {
			fmt.Fprint(a.stderr, guide)
		}
	}

	code := 1
	var hookErr *hook.ExitError
	if errors.As(err, &hookErr) && hookErr.Code > 0 {
		code = hookErr.Code
	}
	return &ExitError{Code: code, Err: err}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
