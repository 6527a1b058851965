// SPDX-License-Identifier: MPL-2.0

package emit

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

const (
	// GuestbookUnchanged means the marker was already present.
	GuestbookUnchanged Mutation = iota
	// GuestbookAppended means the snippet was appended to an existing page.
	GuestbookAppended
	// GuestbookCreated means the page did not exist and was created.
	GuestbookCreated
	// GuestbookDisabled means comments are turned off.
	GuestbookDisabled
)

// Mutation describes what EnsureGuestbook did (or would do in dry-run).
type Mutation int

// String returns a short label for logs.
func (m Mutation) String() string {
	switch m {
	case GuestbookUnchanged:
		return "unchanged"
	case GuestbookAppended:
		return "appended"
	case GuestbookCreated:
		return "created"
	case GuestbookDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// GuestbookSnippet renders the comment-widget script embedded in the page.
func (e *Emitter) GuestbookSnippet() (string, error) {
	data, err := e.execute("guestbook.html.tmpl", e.widgetData())
	if err != nil {
		return "", err
	}
	snippet := string(data)
	if !strings.Contains(snippet, e.cfg.Comments.Marker) {
		return "", fmt.Errorf("emit: guestbook snippet does not contain marker %q", e.cfg.Comments.Marker)
	}
	return snippet, nil
}

// GuestbookPlanned reports whether EnsureGuestbook would create the page.
func (e *Emitter) GuestbookPlanned() (bool, error) {
	if !e.cfg.Comments.Enabled {
		return false, nil
	}
	exists, err := afero.Exists(e.fs, e.abs(e.cfg.Comments.Guestbook))
	if err != nil {
		return false, fmt.Errorf("emit: stat guestbook: %w", err)
	}
	return !exists, nil
}

// EnsureGuestbook embeds the comment widget in the guestbook page exactly
// once: a page holding the marker is left byte-identical.
func (e *Emitter) EnsureGuestbook() (Mutation, error) {
	if !e.cfg.Comments.Enabled {
		return GuestbookDisabled, nil
	}
	snippet, err := e.GuestbookSnippet()
	if err != nil {
		return GuestbookUnchanged, err
	}

	rel := e.cfg.Comments.Guestbook
	full := e.abs(rel)

	var (
		content  string
		mutation Mutation
	)
	existing, err := afero.ReadFile(e.fs, full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		heading := e.cfg.Comments.Heading
		if heading != "" {
			heading += "\n\n"
		}
		content = heading + snippet
		mutation = GuestbookCreated
	case err != nil:
		return GuestbookUnchanged, fmt.Errorf("emit: read guestbook %s: %w", rel, err)
	case strings.Contains(string(existing), e.cfg.Comments.Marker):
		return GuestbookUnchanged, nil
	default:
		content = string(existing)
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += "\n" + snippet
		mutation = GuestbookAppended
	}

	if err := e.write(Artifact{Path: rel, Data: []byte(content)}); err != nil {
		return GuestbookUnchanged, err
	}
	return mutation, nil
}
