// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/charmbracelet/glamour"
)

const (
	// KindUnknown has no dedicated guide.
	KindUnknown Kind = iota
	// KindScanFailed is a read failure while walking the document tree.
	KindScanFailed
	// KindWriteFailed is a failure writing a generated artifact.
	KindWriteFailed
	// KindConfigInvalid is an unreadable or schema-violating config file.
	KindConfigInvalid
	// KindHookFailed is a post-generation hook that exited non-zero.
	KindHookFailed
)

type (
	// Kind classifies a failure so the CLI can show matching guidance.
	Kind int

	// Renderer turns Markdown into terminal output.
	Renderer func(markdown, style string) (string, error)
)

var (
	render Renderer = glamour.Render

	guides = map[Kind]string{
		KindScanFailed: `
# Could not read the document tree

sitegen walks every folder below the site root and stops at the first
directory it cannot list. Nothing was written.

## Things to try
- Check permissions of the folder named above (` + "`ls -ld <path>`" + `).
- Add the folder to ` + "`scan.ignore`" + ` or ` + "`scan.ignore_patterns`" + ` in sitegen.cue.
`,
		KindWriteFailed: `
# Could not write a generated file

Artifacts written earlier in this run are left in place.

## Things to try
- Make sure the ` + "`.vitepress`" + ` directory is writable.
- Check the ` + "`output`" + ` section of sitegen.cue for typos.
`,
		KindConfigInvalid: `
# Invalid sitegen.cue

The configuration file failed CUE validation against the built-in schema.

## Things to try
- Run ` + "`sitegen config show`" + ` to see the effective configuration.
- Run ` + "`sitegen config init`" + ` to write a fresh default file.
`,
		KindHookFailed: `
# A post-generation hook failed

Generated files are complete; only the hook listed in
` + "`hooks.after_generate`" + ` failed.

## Things to try
- Run the hook command by hand from the site root.
`,
	}
)

// Guide returns the Markdown guide for k, or "" when k has none.
func Guide(k Kind) string {
	return guides[k]
}

// RenderGuide renders the guide attached to err, if err is (or wraps) an
// ActionableError with a known Kind. It returns "" otherwise.
func RenderGuide(err error, style string) (string, error) {
	var ae *ActionableError
	if !errors.As(err, &ae) {
		return "", nil
	}
	md := Guide(ae.Kind)
	if md == "" {
		return "", nil
	}
	return render(md, style)
}
