// SPDX-License-Identifier: MPL-2.0

package sidebar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEntry is the sentinel wrapped by InvalidEntryError.
var ErrInvalidEntry = errors.New("invalid sidebar entry")

type (
	// Entry is one navigation node: a file leaf (Link set, no Items) or a
	// directory node (Items set, no Link). See MarshalJSON for the wire
	// shape of each kind.
	Entry struct {
		Text        string
		Link        string
		Collapsible bool
		Collapsed   bool
		Items       []Entry

		// Name is the on-disk name (with extension for files) matched
		// against priority lists. It is not serialized.
		Name string
	}

	leafJSON struct {
		Text string `json:"text"`
		Link string `json:"link"`
	}

	dirJSON struct {
		Text        string  `json:"text"`
		Collapsible bool    `json:"collapsible"`
		Collapsed   bool    `json:"collapsed"`
		Items       []Entry `json:"items"`
	}

	// InvalidEntryError reports a node that is neither a proper leaf nor a
	// proper directory node.
	InvalidEntryError struct {
		Text   string
		Reason string
	}
)

// Leaf returns a file entry.
func Leaf(name, text, link string) Entry {
	return Entry{Name: name, Text: text, Link: link}
}

// Dir returns a directory entry holding items.
func Dir(name string, items []Entry, collapsed bool) Entry {
	return Entry{
		Name:        name,
		Text:        name,
		Items:       items,
		Collapsible: true,
		Collapsed:   collapsed,
	}
}

// IsDir reports whether e is a directory node.
func (e Entry) IsDir() bool {
	return e.Link == "" && e.Items != nil
}

// MarshalJSON writes a leaf as {text, link} and a directory node as
// {text, collapsible, collapsed, items}. Both flags are always present on
// directory nodes, so an expanded group keeps "collapsed": false.
func (e Entry) MarshalJSON() ([]byte, error) {
	var v any = leafJSON{Text: e.Text, Link: e.Link}
	if e.IsDir() {
		v = dirJSON{Text: e.Text, Collapsible: e.Collapsible, Collapsed: e.Collapsed, Items: e.Items}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Validate checks e and all its descendants.
func (e Entry) Validate() error {
	switch {
	case e.Text == "":
		return &InvalidEntryError{Text: e.Name, Reason: "empty text"}
	case e.Link != "" && len(e.Items) > 0:
		return &InvalidEntryError{Text: e.Text, Reason: "has both link and items"}
	case e.Link == "" && len(e.Items) == 0:
		return &InvalidEntryError{Text: e.Text, Reason: "directory without items"}
	}
	for _, child := range e.Items {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll validates every entry of a tree.
func ValidateAll(entries []Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for every entry in depth-first order with its nesting depth.
func Walk(entries []Entry, fn func(e Entry, depth int)) {
	var visit func([]Entry, int)
	visit = func(list []Entry, depth int) {
		for _, e := range list {
			fn(e, depth)
			visit(e.Items, depth+1)
		}
	}
	visit(entries, 0)
}

// CountLeaves returns the number of file leaves in the tree.
func CountLeaves(entries []Entry) int {
	n := 0
	Walk(entries, func(e Entry, _ int) {
		if !e.IsDir() {
			n++
		}
	})
	return n
}

// Error implements the error interface for InvalidEntryError.
func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid sidebar entry %q: %s", e.Text, e.Reason)
}

// Unwrap returns ErrInvalidEntry for errors.Is() compatibility.
func (e *InvalidEntryError) Unwrap() error { return ErrInvalidEntry }
