// SPDX-License-Identifier: MPL-2.0

package sidebar

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used when Order.Locale is empty or unparsable.
const DefaultLocale = "zh-CN"

type (
	// Order is the sorter configuration.
	Order struct {
		// Files lists file names (label plus extension) in priority order.
		Files []string
		// Dirs lists directory names in priority order.
		Dirs []string
		// Locale is the BCP 47 tag for collating non-prioritized labels.
		Locale string
	}

	// Sorter orders sibling entries: directories before files, prioritized
	// names first in list order, the rest by locale collation of the label.
	// A Sorter is not safe for concurrent use.
	Sorter struct {
		filePrio map[string]int
		dirPrio  map[string]int
		coll     *collate.Collator
	}
)

// NewSorter builds a Sorter from o.
func NewSorter(o Order) *Sorter {
	tag, err := language.Parse(o.Locale)
	if err != nil || o.Locale == "" {
		tag = language.MustParse(DefaultLocale)
	}
	return &Sorter{
		filePrio: indexOf(o.Files),
		dirPrio:  indexOf(o.Dirs),
		coll:     collate.New(tag),
	}
}

// Sort returns a new slice holding entries in sorted order. Only the given
// level is reordered.
func (s *Sorter) Sort(entries []Entry) []Entry {
	var dirs, files []Entry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	slices.SortStableFunc(dirs, s.compareBy(s.dirPrio))
	slices.SortStableFunc(files, s.compareBy(s.filePrio))

	out := make([]Entry, 0, len(entries))
	out = append(out, dirs...)
	return append(out, files...)
}

func (s *Sorter) compareBy(prio map[string]int) func(a, b Entry) int {
	return func(a, b Entry) int {
		pa, aok := prio[a.Name]
		pb, bok := prio[b.Name]
		switch {
		case aok && bok:
			return pa - pb
		case aok:
			return -1
		case bok:
			return 1
		}
		if c := s.coll.CompareString(a.Text, b.Text); c != 0 {
			return c
		}
		// Collation may treat distinct strings as equal; fall back to bytes
		// so the order stays total.
		if c := strings.Compare(a.Text, b.Text); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	}
}

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := m[n]; !dup {
			m[n] = i
		}
	}
	return m
}
