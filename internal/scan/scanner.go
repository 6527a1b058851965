// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/sidebar"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// Options configures a Scanner.
	Options struct {
		// DocExt is the document extension including the dot.
		DocExt string
		// Ignore holds entry names skipped at every depth.
		Ignore []string
		// IgnorePatterns are doublestar globs over slash paths relative to Root.
		IgnorePatterns []string
		// IndexDoc is the home page document, never a leaf.
		IndexDoc string
		// AppendLast is the document reported as Result.Tail instead of
		// being placed among its siblings.
		AppendLast string
		// SpecialEveryLevel applies IndexDoc/AppendLast in every directory.
		SpecialEveryLevel bool
		// Collapsed is the initial state of directory nodes.
		Collapsed bool
	}

	// Result is the outcome of a scan.
	Result struct {
		// Entries is the scanned tree without synthetic entries.
		Entries []sidebar.Entry
		// Tail is the root-level AppendLast document, nil when absent.
		Tail *sidebar.Entry
		// Documents counts every leaf, Tail included.
		Documents int
	}

	// Scanner walks Root on FS.
	Scanner struct {
		fs     afero.Fs
		root   string
		opts   Options
		sorter *sidebar.Sorter
		logger *log.Logger
		ignore map[string]struct{}
	}

	// Option customizes a Scanner.
	Option func(*Scanner)
)

// WithSorter sorts every level of the tree, including the root.
func WithSorter(s *sidebar.Sorter) Option {
	return func(sc *Scanner) { sc.sorter = s }
}

// WithLogger sets the logger for progress lines.
func WithLogger(l *log.Logger) Option {
	return func(sc *Scanner) { sc.logger = l }
}

// OptionsFromConfig maps the scan and order sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DocExt:            cfg.Scan.DocExt,
		Ignore:            cfg.Scan.Ignore,
		IgnorePatterns:    cfg.Scan.IgnorePatterns,
		IndexDoc:          cfg.Scan.IndexDoc,
		AppendLast:        cfg.Scan.AppendLast,
		SpecialEveryLevel: cfg.Scan.SpecialEveryLevel,
		Collapsed:         cfg.Order.Collapsed,
	}
}

// New creates a Scanner rooted at root.
func New(fs afero.Fs, root string, opts Options, options ...Option) *Scanner {
	s := &Scanner{
		fs:     fs,
		root:   root,
		opts:   opts,
		logger: log.New(io.Discard),
		ignore: make(map[string]struct{}, len(opts.Ignore)),
	}
	for _, name := range opts.Ignore {
		s.ignore[name] = struct{}{}
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Scan walks the tree. Any read error aborts the scan.
func (s *Scanner) Scan() (Result, error) {
	var res Result
	entries, tail, err := s.scanDir(nil, &res)
	if err != nil {
		return Result{}, err
	}
	res.Entries = entries
	res.Tail = tail
	return res, nil
}

// scanDir lists the directory at segments (relative to root). It returns
// the qualifying entries and, when AppendLast was found at this level, the
// tail entry separately.
func (s *Scanner) scanDir(segments []string, res *Result) ([]sidebar.Entry, *sidebar.Entry, error) {
	dir := filepath.Join(append([]string{s.root}, segments...)...)
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: read directory %s: %w", dir, err)
	}

	atRoot := len(segments) == 0
	special := atRoot || s.opts.SpecialEveryLevel

	var (
		entries []sidebar.Entry
		tail    *sidebar.Entry
	)
	for _, info := range infos {
		name := info.Name()
		childSegs := append(slices.Clone(segments), name)

		if s.skip(name, childSegs) {
			continue
		}

		if info.IsDir() {
			items, nestedTail, err := s.scanDir(childSegs, res)
			if err != nil {
				return nil, nil, err
			}
			if nestedTail != nil {
				items = append(items, *nestedTail)
			}
			if len(items) == 0 {
				continue
			}
			entries = append(entries, sidebar.Dir(name, items, s.opts.Collapsed))
			continue
		}

		if !isDocument(info, name, s.opts.DocExt) {
			continue
		}
		if special && name == s.opts.IndexDoc {
			continue
		}

		leaf := sidebar.Leaf(name, strings.TrimSuffix(name, s.opts.DocExt), Link(childSegs, s.opts.DocExt))
		res.Documents++
		s.logger.Info("found document", "path", path.Join(childSegs...))

		if special && s.opts.AppendLast != "" && name == s.opts.AppendLast {
			tail = &leaf
			continue
		}
		entries = append(entries, leaf)
	}

	if s.sorter != nil {
		entries = s.sorter.Sort(entries)
	}
	return entries, tail, nil
}

// skip applies the name-based filters shared by files and directories.
func (s *Scanner) skip(name string, segments []string) bool {
	if _, ok := s.ignore[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	rel := path.Join(segments...)
	for _, pat := range s.opts.IgnorePatterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			s.logger.Debug("ignored by pattern", "path", rel, "pattern", pat)
			return true
		}
	}
	return false
}

func isDocument(info os.FileInfo, name, ext string) bool {
	return !info.IsDir() && strings.HasSuffix(name, ext) && len(name) > len(ext)
}
