// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ed2kdoc/sitegen/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "sitegen"
	// FileName is the project config file looked up in the site root.
	FileName = "sitegen.cue"
	// EnvPrefix prefixes environment overrides (SITEGEN_SITE_BASE, ...).
	EnvPrefix = "SITEGEN"

	// maxFileSize bounds the config file read into memory.
	maxFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// FilePath forces loading from a specific file when set; it must exist.
	FilePath string
	// RootDir is the site root searched for FileName when FilePath is empty.
	RootDir string
}

// Load builds the effective configuration: defaults, then the config file
// (if any), then SITEGEN_* environment variables. It returns the config and
// the path of the file that was merged ("" when none).
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	switch {
	case opts.FilePath != "":
		if !fileExists(opts.FilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.FilePath).
				WithKind(issue.KindConfigInvalid).
				WithSuggestion("Verify the --config path is correct").
				WithSuggestion("Run 'sitegen config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.FilePath)).
				BuildError()
		}
		resolved = opts.FilePath
	default:
		candidate := filepath.Join(opts.RootDir, FileName)
		if fileExists(candidate) {
			resolved = candidate
		}
	}

	if resolved != "" {
		if err := loadCUEIntoViper(v, resolved); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolved).
				WithKind(issue.KindConfigInvalid).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'sitegen config show' to see accepted keys").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolved).
			WithKind(issue.KindConfigInvalid).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolved, nil
}

// setDefaults registers every key so env overrides and Unmarshal see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("site.title", d.Site.Title)
	v.SetDefault("site.description", d.Site.Description)
	v.SetDefault("site.base", d.Site.Base)
	v.SetDefault("site.lang", d.Site.Lang)
	v.SetDefault("site.src_dir", d.Site.SrcDir)
	v.SetDefault("site.home_text", d.Site.HomeText)
	v.SetDefault("site.home_link", d.Site.HomeLink)

	v.SetDefault("scan.doc_ext", d.Scan.DocExt)
	v.SetDefault("scan.ignore", d.Scan.Ignore)
	v.SetDefault("scan.ignore_patterns", d.Scan.IgnorePatterns)
	v.SetDefault("scan.index_doc", d.Scan.IndexDoc)
	v.SetDefault("scan.append_last", d.Scan.AppendLast)
	v.SetDefault("scan.special_every_level", d.Scan.SpecialEveryLevel)

	v.SetDefault("order.enabled", d.Order.Enabled)
	v.SetDefault("order.files", d.Order.Files)
	v.SetDefault("order.dirs", d.Order.Dirs)
	v.SetDefault("order.collapsed", d.Order.Collapsed)

	v.SetDefault("markdown.task_lists", d.Markdown.TaskLists)
	v.SetDefault("markdown.plugins", d.Markdown.Plugins)
	v.SetDefault("markdown.search.enabled", d.Markdown.Search.Enabled)
	v.SetDefault("markdown.search.plugin", d.Markdown.Search.Plugin)
	v.SetDefault("markdown.search.import", d.Markdown.Search.Import)
	v.SetDefault("markdown.search.language", d.Markdown.Search.Language)

	v.SetDefault("comments.enabled", d.Comments.Enabled)
	v.SetDefault("comments.repo", d.Comments.Repo)
	v.SetDefault("comments.repo_id", d.Comments.RepoID)
	v.SetDefault("comments.category", d.Comments.Category)
	v.SetDefault("comments.category_id", d.Comments.CategoryID)
	v.SetDefault("comments.guestbook", d.Comments.Guestbook)
	v.SetDefault("comments.marker", d.Comments.Marker)
	v.SetDefault("comments.heading", d.Comments.Heading)

	v.SetDefault("style.content_max_width", d.Style.ContentMaxWidth)
	v.SetDefault("style.sidebar_width", d.Style.SidebarWidth)
	v.SetDefault("style.checkbox_size", d.Style.CheckboxSize)

	v.SetDefault("output.config", d.Output.Config)
	v.SetDefault("output.theme", d.Output.Theme)
	v.SetDefault("output.stylesheet", d.Output.Stylesheet)
	v.SetDefault("output.component", d.Output.Component)

	v.SetDefault("hooks.after_generate", d.Hooks.AfterGenerate)
}

// loadCUEIntoViper compiles the file, unifies it with #Config and merges the
// decoded map into v. Concrete(false) is used because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (limit %d)", len(data), maxFileSize)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// formatCUEError flattens a CUE error list into "<file>: <field.path>: <message>"
// lines.
func formatCUEError(err error, file string) error {
	var lines []string
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(cueerrors.Path(e), ".")
		msg := strings.TrimSpace(strings.TrimPrefix(e.Error(), field+":"))
		if field != "" {
			lines = append(lines, fmt.Sprintf("%s: %s: %s", file, field, msg))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", file, msg))
		}
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}
	return errors.New(strings.Join(lines, "\n"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration as CUE to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeTOML renders cfg as TOML for `config show --format toml`.
func EncodeTOML(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config as toml: %w", err)
	}
	return out, nil
}
