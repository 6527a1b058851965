// SPDX-License-Identifier: MPL-2.0

// Package generate wires the scanner, sorter, emitter and hooks into one
// generation run over a site root.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/emit"
	"github.com/ed2kdoc/sitegen/internal/hook"
	"github.com/ed2kdoc/sitegen/internal/issue"
	"github.com/ed2kdoc/sitegen/internal/scan"
	"github.com/ed2kdoc/sitegen/internal/sidebar"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// Generator runs the pipeline for one site root.
	Generator struct {
		cfg     *config.Config
		fs      afero.Fs
		root    string
		logger  *log.Logger
		dryRun  bool
		environ []string
		stdout  io.Writer
		stderr  io.Writer
	}

	// Option customizes a Generator.
	Option func(*Generator)

	// Report summarizes a run.
	Report struct {
		// Documents is the number of scanned documents.
		Documents int
		// Artifacts lists the generated files in write order.
		Artifacts []emit.Artifact
		// Guestbook is what happened to the guestbook page.
		Guestbook emit.Mutation
		// Hooks is the number of hooks that ran.
		Hooks int
		// DryRun is true when nothing was written.
		DryRun   bool
		Duration time.Duration
	}
)

// WithLogger sets the logger shared with the scanner and emitter.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithDryRun renders without writing and skips hooks.
func WithDryRun(dryRun bool) Option {
	return func(g *Generator) { g.dryRun = dryRun }
}

// WithHookIO sets where hook output goes.
func WithHookIO(stdout, stderr io.Writer) Option {
	return func(g *Generator) {
		g.stdout = stdout
		g.stderr = stderr
	}
}

// WithEnviron sets the base environment passed to hooks. It defaults to
// os.Environ().
func WithEnviron(env []string) Option {
	return func(g *Generator) { g.environ = env }
}

// New creates a Generator for the site rooted at root on fs.
func New(cfg *config.Config, fs afero.Fs, root string, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		fs:     fs,
		root:   root,
		logger: log.New(io.Discard),
		stdout: io.Discard,
		stderr: io.Discard,
	}
	for _, o := range opts {
		o(g)
	}
	if g.environ == nil {
		g.environ = os.Environ()
	}
	return g
}

// Sidebar scans the tree and returns the final sidebar without writing
// anything.
func (g *Generator) Sidebar() ([]sidebar.Entry, error) {
	entries, _, err := g.sidebar(g.emitter())
	return entries, err
}

// Run performs a full generation. A scan failure aborts before any write.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	em := g.emitter()

	entries, documents, err := g.sidebar(em)
	if err != nil {
		return nil, err
	}

	report := &Report{Documents: documents, DryRun: g.dryRun}

	report.Guestbook, err = em.EnsureGuestbook()
	if err != nil {
		return nil, g.writeError(g.cfg.Comments.Guestbook, err)
	}
	report.Artifacts, err = em.WriteAll(entries)
	if err != nil {
		resource := g.cfg.Output.Config
		var we *emit.WriteError
		if errors.As(err, &we) {
			resource = we.Path
		}
		return nil, g.writeError(resource, err)
	}

	if !g.dryRun && len(g.cfg.Hooks.AfterGenerate) > 0 {
		if err := g.runHooks(ctx, report.Documents); err != nil {
			return report, err
		}
		report.Hooks = len(g.cfg.Hooks.AfterGenerate)
	}

	report.Duration = time.Since(start)
	g.logger.Debug("generation finished", "documents", report.Documents,
		"artifacts", len(report.Artifacts), "guestbook", report.Guestbook, "duration", report.Duration)
	return report, nil
}

func (g *Generator) emitter() *emit.Emitter {
	return emit.New(g.fs, g.root, g.cfg, emit.WithDryRun(g.dryRun), emit.WithLogger(g.logger))
}

// sidebar builds [home] + scanned + [tail]. When the mutation step is
// about to create the guestbook, the scan runs over an overlay holding an
// empty placeholder, so the page lands wherever the next run will find it.
func (g *Generator) sidebar(em *emit.Emitter) ([]sidebar.Entry, int, error) {
	opts := []scan.Option{scan.WithLogger(g.logger)}
	if g.cfg.Order.Enabled {
		opts = append(opts, scan.WithSorter(sidebar.NewSorter(sidebar.Order{
			Files:  g.cfg.Order.Files,
			Dirs:   g.cfg.Order.Dirs,
			Locale: g.cfg.Site.Lang,
		})))
	}

	fsys, err := g.scanFs(em)
	if err != nil {
		return nil, 0, err
	}

	res, err := scan.New(fsys, g.root, scan.OptionsFromConfig(g.cfg), opts...).Scan()
	if err != nil {
		return nil, 0, issue.NewErrorContext().
			WithOperation("scan documents").
			WithResource(g.root).
			WithKind(issue.KindScanFailed).
			WithSuggestion("Check that every folder below the site root is readable").
			Wrap(err).
			BuildError()
	}

	entries := make([]sidebar.Entry, 0, len(res.Entries)+2)
	entries = append(entries, sidebar.Leaf(g.cfg.Scan.IndexDoc, g.cfg.Site.HomeText, g.cfg.Site.HomeLink))
	entries = append(entries, res.Entries...)
	if res.Tail != nil {
		entries = append(entries, *res.Tail)
	}
	return entries, res.Documents, nil
}

// scanFs returns the filesystem the scanner sees: g.fs, layered with the
// planned guestbook when EnsureGuestbook will create it.
func (g *Generator) scanFs(em *emit.Emitter) (afero.Fs, error) {
	planned, err := em.GuestbookPlanned()
	if err != nil || !planned {
		return g.fs, err
	}
	layer := afero.NewMemMapFs()
	full := filepath.Join(g.root, filepath.FromSlash(g.cfg.Comments.Guestbook))
	if err := layer.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("plan guestbook: %w", err)
	}
	if err := afero.WriteFile(layer, full, nil, 0o644); err != nil {
		return nil, fmt.Errorf("plan guestbook: %w", err)
	}
	return afero.NewCopyOnWriteFs(g.fs, layer), nil
}

func (g *Generator) runHooks(ctx context.Context, documents int) error {
	env := append(append([]string(nil), g.environ...),
		"SITEGEN_ROOT="+g.root,
		"SITEGEN_DOCUMENTS="+strconv.Itoa(documents),
		"SITEGEN_CONFIG_OUTPUT="+g.cfg.Output.Config,
	)
	runner := &hook.Runner{Dir: g.root, Env: env, Stdout: g.stdout, Stderr: g.stderr}

	g.logger.Info("running hooks", "count", len(g.cfg.Hooks.AfterGenerate))
	err := runner.RunAll(ctx, g.cfg.Hooks.AfterGenerate)
	if err == nil {
		return nil
	}

	ec := issue.NewErrorContext().
		WithOperation("run post-generation hook").
		WithKind(issue.KindHookFailed).
		Wrap(err)
	var exitErr *hook.ExitError
	if errors.As(err, &exitErr) {
		ec = ec.WithResource(exitErr.Name)
	} else if errors.Is(err, context.Canceled) {
		return fmt.Errorf("hooks interrupted: %w", err)
	}
	return ec.WithSuggestion("Run the hook command by hand from the site root").BuildError()
}

func (g *Generator) writeError(resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation("write generated files").
		WithResource(resource).
		WithKind(issue.KindWriteFailed).
		WithSuggestion("Make sure the site root and its .vitepress directory are writable").
		Wrap(err).
		BuildError()
}
