// SPDX-License-Identifier: MPL-2.0

package emit

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/sidebar"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"quote": quoteJS,
}).ParseFS(templateFS, "templates/*.tmpl"))

type (
	// Artifact is one generated file. Path is a slash path relative to the
	// site root.
	Artifact struct {
		Path string
		Data []byte
	}

	// Emitter renders artifacts for one site root.
	Emitter struct {
		fs     afero.Fs
		root   string
		cfg    *config.Config
		dryRun bool
		logger *log.Logger
	}

	// Option customizes an Emitter.
	Option func(*Emitter)

	// WriteError reports the artifact that could not be written.
	WriteError struct {
		Path string
		Err  error
	}

	// siteConfig is the structured part of the generated config document.
	siteConfig struct {
		Base        string      `json:"base"`
		Lang        string      `json:"lang"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		SrcDir      string      `json:"srcDir"`
		ThemeConfig themeConfig `json:"themeConfig"`
	}

	themeConfig struct {
		Sidebar []sidebar.Entry `json:"sidebar"`
	}
)

// WithDryRun renders everything but writes nothing.
func WithDryRun(dryRun bool) Option {
	return func(e *Emitter) { e.dryRun = dryRun }
}

// WithLogger sets the logger used to report written files.
func WithLogger(l *log.Logger) Option {
	return func(e *Emitter) { e.logger = l }
}

// New creates an Emitter writing below root on fs.
func New(fs afero.Fs, root string, cfg *config.Config, opts ...Option) *Emitter {
	e := &Emitter{fs: fs, root: root, cfg: cfg, logger: log.New(io.Discard)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ConfigDocument renders the VitePress config with entries as its sidebar.
func (e *Emitter) ConfigDocument(entries []sidebar.Entry) ([]byte, error) {
	if entries == nil {
		entries = []sidebar.Entry{}
	}
	if err := sidebar.ValidateAll(entries); err != nil {
		return nil, fmt.Errorf("emit: sidebar: %w", err)
	}
	site := siteConfig{
		Base:        e.cfg.Site.Base,
		Lang:        e.cfg.Site.Lang,
		Title:       e.cfg.Site.Title,
		Description: e.cfg.Site.Description,
		SrcDir:      e.cfg.Site.SrcDir,
		ThemeConfig: themeConfig{Sidebar: entries},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(site); err != nil {
		return nil, fmt.Errorf("emit: encode site config: %w", err)
	}

	return e.execute("config.mts.tmpl", struct {
		Site      string
		TaskLists bool
		Plugins   []config.PluginConfig
		Search    config.SearchConfig
	}{
		Site:      strings.TrimSuffix(buf.String(), "\n"),
		TaskLists: e.cfg.Markdown.TaskLists,
		Plugins:   e.cfg.Markdown.Plugins,
		Search:    e.cfg.Markdown.Search,
	})
}

// ThemeStub renders the theme entry that extends the default theme.
func (e *Emitter) ThemeStub() ([]byte, error) {
	return e.execute("theme.ts.tmpl", struct {
		Comments         bool
		ComponentImport  string
		StylesheetImport string
	}{
		Comments:         e.cfg.Comments.Enabled,
		ComponentImport:  relImport(e.cfg.Output.Theme, e.cfg.Output.Component),
		StylesheetImport: relImport(e.cfg.Output.Theme, e.cfg.Output.Stylesheet),
	})
}

// Stylesheet renders the list/checkbox and layout rules.
func (e *Emitter) Stylesheet() ([]byte, error) {
	return e.execute("style.css.tmpl", e.cfg.Style)
}

// CommentsComponent renders the giscus Vue component.
func (e *Emitter) CommentsComponent() ([]byte, error) {
	return e.execute("Comments.vue.tmpl", e.widgetData())
}

// Render produces every artifact without touching the filesystem.
func (e *Emitter) Render(entries []sidebar.Entry) ([]Artifact, error) {
	type step struct {
		path   string
		render func() ([]byte, error)
	}
	steps := []step{
		{e.cfg.Output.Config, func() ([]byte, error) { return e.ConfigDocument(entries) }},
		{e.cfg.Output.Theme, e.ThemeStub},
		{e.cfg.Output.Stylesheet, e.Stylesheet},
	}
	if e.cfg.Comments.Enabled {
		steps = append(steps, step{e.cfg.Output.Component, e.CommentsComponent})
	}

	artifacts := make([]Artifact, 0, len(steps))
	for _, s := range steps {
		data, err := s.render()
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Path: s.path, Data: data})
	}
	return artifacts, nil
}

// WriteAll renders and writes every artifact, overwriting existing files.
// A write failure stops immediately; artifacts written before it remain.
func (e *Emitter) WriteAll(entries []sidebar.Entry) ([]Artifact, error) {
	artifacts, err := e.Render(entries)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		if err := e.write(a); err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

func (e *Emitter) write(a Artifact) error {
	if e.dryRun {
		e.logger.Debug("would write", "path", a.Path, "bytes", len(a.Data))
		return nil
	}
	full := e.abs(a.Path)
	if err := e.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &WriteError{Path: a.Path, Err: fmt.Errorf("create directory: %w", err)}
	}
	if err := afero.WriteFile(e.fs, full, a.Data, 0o644); err != nil {
		return &WriteError{Path: a.Path, Err: err}
	}
	e.logger.Info("wrote", "path", a.Path, "bytes", len(a.Data))
	return nil
}

// Error implements the error interface for WriteError.
func (e *WriteError) Error() string {
	return fmt.Sprintf("emit: write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *WriteError) Unwrap() error { return e.Err }

func (e *Emitter) abs(rel string) string {
	return filepath.Join(e.root, filepath.FromSlash(rel))
}

func (e *Emitter) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("emit: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (e *Emitter) widgetData() any {
	return struct {
		config.CommentsConfig
		Lang string
	}{e.cfg.Comments, e.cfg.Site.Lang}
}

// relImport returns the "./"-prefixed import path of target as seen from
// the file at from. Both are slash paths relative to the site root.
func relImport(from, target string) string {
	rel, err := filepath.Rel(path.Dir(from), target)
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func quoteJS(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
