// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidField is the sentinel wrapped by InvalidFieldError.
	ErrInvalidField = errors.New("invalid config field")

	// jsIdentifier matches names emitted verbatim into the generated config.
	jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

type (
	// InvalidFieldError describes one rejected configuration value.
	InvalidFieldError struct {
		Field  string
		Value  string
		Reason string
	}

	// InvalidConfigError collects every field error found by Validate.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the full generator configuration.
	Config struct {
		Site     SiteConfig     `json:"site" mapstructure:"site" toml:"site"`
		Scan     ScanConfig     `json:"scan" mapstructure:"scan" toml:"scan"`
		Order    OrderConfig    `json:"order" mapstructure:"order" toml:"order"`
		Markdown MarkdownConfig `json:"markdown" mapstructure:"markdown" toml:"markdown"`
		Comments CommentsConfig `json:"comments" mapstructure:"comments" toml:"comments"`
		Style    StyleConfig    `json:"style" mapstructure:"style" toml:"style"`
		Output   OutputConfig   `json:"output" mapstructure:"output" toml:"output"`
		Hooks    HooksConfig    `json:"hooks" mapstructure:"hooks" toml:"hooks"`
	}

	// SiteConfig is the fixed metadata embedded in the generated site config.
	SiteConfig struct {
		Title       string `json:"title" mapstructure:"title" toml:"title"`
		Description string `json:"description" mapstructure:"description" toml:"description"`
		// Base is the URL path the site is served under; it starts and ends with "/".
		Base string `json:"base" mapstructure:"base" toml:"base"`
		// Lang is a BCP 47 tag; it also selects the sort collation.
		Lang   string `json:"lang" mapstructure:"lang" toml:"lang"`
		SrcDir string `json:"src_dir" mapstructure:"src_dir" toml:"src_dir"`
		// HomeText and HomeLink describe the synthetic first sidebar entry.
		HomeText string `json:"home_text" mapstructure:"home_text" toml:"home_text"`
		HomeLink string `json:"home_link" mapstructure:"home_link" toml:"home_link"`
	}

	// ScanConfig controls which files become sidebar entries.
	ScanConfig struct {
		// DocExt is the document extension including the dot.
		DocExt string `json:"doc_ext" mapstructure:"doc_ext" toml:"doc_ext"`
		// Ignore lists entry names skipped at any depth.
		Ignore []string `json:"ignore" mapstructure:"ignore" toml:"ignore"`
		// IgnorePatterns are doublestar globs matched against slash paths
		// relative to the site root.
		IgnorePatterns []string `json:"ignore_patterns" mapstructure:"ignore_patterns" toml:"ignore_patterns"`
		// IndexDoc is the home page document, never listed as a leaf.
		IndexDoc string `json:"index_doc" mapstructure:"index_doc" toml:"index_doc"`
		// AppendLast names the document placed after every other top-level entry.
		AppendLast string `json:"append_last" mapstructure:"append_last" toml:"append_last"`
		// SpecialEveryLevel applies IndexDoc and AppendLast handling in every
		// directory instead of only the root.
		SpecialEveryLevel bool `json:"special_every_level" mapstructure:"special_every_level" toml:"special_every_level"`
	}

	// OrderConfig configures the sibling sorter.
	OrderConfig struct {
		Enabled bool `json:"enabled" mapstructure:"enabled" toml:"enabled"`
		// Files are document names (label plus extension) in priority order.
		Files []string `json:"files" mapstructure:"files" toml:"files"`
		// Dirs are directory names in priority order.
		Dirs []string `json:"dirs" mapstructure:"dirs" toml:"dirs"`
		// Collapsed sets the initial state of directory nodes.
		Collapsed bool `json:"collapsed" mapstructure:"collapsed" toml:"collapsed"`
	}

	// MarkdownConfig is the markdown-it hook list of the generated config.
	MarkdownConfig struct {
		TaskLists bool           `json:"task_lists" mapstructure:"task_lists" toml:"task_lists"`
		Plugins   []PluginConfig `json:"plugins" mapstructure:"plugins" toml:"plugins"`
		Search    SearchConfig   `json:"search" mapstructure:"search" toml:"search"`
	}

	// PluginConfig is one extra markdown-it plugin import.
	PluginConfig struct {
		Name   string `json:"name" mapstructure:"name" toml:"name"`
		Import string `json:"import" mapstructure:"import" toml:"import"`
	}

	// SearchConfig describes the search-indexing vite plugin.
	SearchConfig struct {
		Enabled  bool   `json:"enabled" mapstructure:"enabled" toml:"enabled"`
		Plugin   string `json:"plugin" mapstructure:"plugin" toml:"plugin"`
		Import   string `json:"import" mapstructure:"import" toml:"import"`
		Language string `json:"language" mapstructure:"language" toml:"language"`
	}

	// CommentsConfig wires the giscus comments widget and the guestbook page.
	CommentsConfig struct {
		Enabled    bool   `json:"enabled" mapstructure:"enabled" toml:"enabled"`
		Repo       string `json:"repo" mapstructure:"repo" toml:"repo"`
		RepoID     string `json:"repo_id" mapstructure:"repo_id" toml:"repo_id"`
		Category   string `json:"category" mapstructure:"category" toml:"category"`
		CategoryID string `json:"category_id" mapstructure:"category_id" toml:"category_id"`
		// Guestbook is the document that receives the embedded script.
		Guestbook string `json:"guestbook" mapstructure:"guestbook" toml:"guestbook"`
		// Marker is searched for to decide whether the script is present.
		Marker string `json:"marker" mapstructure:"marker" toml:"marker"`
		// Heading is the first line of a newly created guestbook.
		Heading string `json:"heading" mapstructure:"heading" toml:"heading"`
	}

	// StyleConfig holds the layout constants of the generated stylesheet.
	StyleConfig struct {
		ContentMaxWidth string `json:"content_max_width" mapstructure:"content_max_width" toml:"content_max_width"`
		SidebarWidth    string `json:"sidebar_width" mapstructure:"sidebar_width" toml:"sidebar_width"`
		CheckboxSize    string `json:"checkbox_size" mapstructure:"checkbox_size" toml:"checkbox_size"`
	}

	// OutputConfig lists artifact paths relative to the site root.
	OutputConfig struct {
		Config     string `json:"config" mapstructure:"config" toml:"config"`
		Theme      string `json:"theme" mapstructure:"theme" toml:"theme"`
		Stylesheet string `json:"stylesheet" mapstructure:"stylesheet" toml:"stylesheet"`
		Component  string `json:"component" mapstructure:"component" toml:"component"`
	}

	// HooksConfig lists shell snippets run after a successful generation.
	HooksConfig struct {
		AfterGenerate []string `json:"after_generate" mapstructure:"after_generate" toml:"after_generate"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:       "ed2k纪录片",
			Description: "纪录片 ed2k 资源索引",
			Base:        "/",
			Lang:        "zh-CN",
			SrcDir:      ".",
			HomeText:    "首页",
			HomeLink:    "/",
		},
		Scan: ScanConfig{
			DocExt:         ".md",
			Ignore:         []string{".git", ".vitepress", "node_modules", ".github"},
			IgnorePatterns: []string{},
			IndexDoc:       "index.md",
			AppendLast:     "留言板.md",
		},
		Order: OrderConfig{
			Enabled:   true,
			Files:     []string{},
			Dirs:      []string{},
			Collapsed: true,
		},
		Markdown: MarkdownConfig{
			TaskLists: true,
			Plugins:   []PluginConfig{},
			Search: SearchConfig{
				Enabled:  true,
				Plugin:   "pagefindPlugin",
				Import:   "vitepress-plugin-pagefind",
				Language: "zh-cn",
			},
		},
		Comments: CommentsConfig{
			Category:  "Announcements",
			Guestbook: "留言板.md",
			Marker:    "giscus.app/client.js",
			Heading:   "# 留言板",
		},
		Style: StyleConfig{
			ContentMaxWidth: "960px",
			SidebarWidth:    "300px",
			CheckboxSize:    "1em",
		},
		Output: OutputConfig{
			Config:     ".vitepress/config.mts",
			Theme:      ".vitepress/theme/index.ts",
			Stylesheet: ".vitepress/theme/style.css",
			Component:  ".vitepress/theme/components/Comments.vue",
		},
		Hooks: HooksConfig{AfterGenerate: []string{}},
	}
}

// Validate checks constraints the CUE schema cannot express (glob syntax,
// duplicates, cross-field requirements). It returns nil or an
// *InvalidConfigError.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, value, reason string) {
		errs = append(errs, &InvalidFieldError{Field: field, Value: value, Reason: reason})
	}

	if !strings.HasPrefix(c.Site.Base, "/") || !strings.HasSuffix(c.Site.Base, "/") {
		bad("site.base", c.Site.Base, "must start and end with /")
	}
	if strings.TrimSpace(c.Site.Lang) == "" {
		bad("site.lang", c.Site.Lang, "must not be empty")
	}
	if len(c.Scan.DocExt) < 2 || !strings.HasPrefix(c.Scan.DocExt, ".") {
		bad("scan.doc_ext", c.Scan.DocExt, "must look like .md")
	}
	for _, p := range c.Scan.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			bad("scan.ignore_patterns", p, "invalid glob")
		}
	}
	if c.Scan.AppendLast != "" && !strings.HasSuffix(c.Scan.AppendLast, c.Scan.DocExt) {
		bad("scan.append_last", c.Scan.AppendLast, "must carry the document extension")
	}
	if d := firstDuplicate(c.Order.Files); d != "" {
		bad("order.files", d, "listed twice")
	}
	if d := firstDuplicate(c.Order.Dirs); d != "" {
		bad("order.dirs", d, "listed twice")
	}

	for _, p := range c.Markdown.Plugins {
		if !jsIdentifier.MatchString(p.Name) {
			bad("markdown.plugins", p.Name, "must be a JavaScript identifier")
		}
		if strings.TrimSpace(p.Import) == "" {
			bad("markdown.plugins", p.Name, "import must not be empty")
		}
	}
	if c.Markdown.Search.Enabled && !jsIdentifier.MatchString(c.Markdown.Search.Plugin) {
		bad("markdown.search.plugin", c.Markdown.Search.Plugin, "must be a JavaScript identifier")
	}

	for field, p := range map[string]string{
		"output.config":     c.Output.Config,
		"output.theme":      c.Output.Theme,
		"output.stylesheet": c.Output.Stylesheet,
		"output.component":  c.Output.Component,
	} {
		if p == "" || !insideRoot(p) {
			bad(field, p, "must be a relative path inside the site root")
		}
	}
	if g := c.Comments.Guestbook; g != "" && !insideRoot(g) {
		bad("comments.guestbook", g, "must be a relative path inside the site root")
	}

	if c.Comments.Enabled {
		for field, v := range map[string]string{
			"comments.repo":        c.Comments.Repo,
			"comments.repo_id":     c.Comments.RepoID,
			"comments.category_id": c.Comments.CategoryID,
			"comments.guestbook":   c.Comments.Guestbook,
			"comments.marker":      c.Comments.Marker,
		} {
			if strings.TrimSpace(v) == "" {
				bad(field, v, "required when comments are enabled")
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	sortFieldErrors(errs)
	return &InvalidConfigError{FieldErrors: errs}
}

// insideRoot reports whether the slash path p stays below the site root.
func insideRoot(p string) bool {
	return !path.IsAbs(p) && !strings.HasPrefix(path.Clean(p), "..")
}

// Error implements the error interface for InvalidFieldError.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidField for errors.Is() compatibility.
func (e *InvalidFieldError) Unwrap() error { return ErrInvalidField }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}

// sortFieldErrors orders field errors by field name so messages are stable
// despite map iteration above.
func sortFieldErrors(errs []error) {
	field := func(err error) string {
		var fe *InvalidFieldError
		if errors.As(err, &fe) {
			return fe.Field
		}
		return ""
	}
	slices.SortStableFunc(errs, func(a, b error) int {
		return strings.Compare(field(a), field(b))
	})
}
