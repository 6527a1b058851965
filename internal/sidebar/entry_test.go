// SPDX-License-Identifier: MPL-2.0

package sidebar

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{name: "leaf", entry: Leaf("a.md", "a", "/a")},
		{name: "dir", entry: Dir("d", []Entry{Leaf("a.md", "a", "/d/a")}, true)},
		{name: "empty dir", entry: Dir("d", []Entry{}, true), wantErr: true},
		{name: "no text", entry: Entry{Link: "/a"}, wantErr: true},
		{
			name:    "link and items",
			entry:   Entry{Text: "x", Link: "/x", Items: []Entry{Leaf("a.md", "a", "/a")}},
			wantErr: true,
		},
		{
			name:    "nested invalid",
			entry:   Dir("d", []Entry{Dir("e", []Entry{}, true)}, true),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.entry.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("error should wrap ErrInvalidEntry: %v", err)
			}
		})
	}
}

func TestEntry_JSONShape(t *testing.T) {
	t.Parallel()

	tree := []Entry{
		Dir("BBC纪录片", []Entry{Leaf("a.md", "a", "/BBC%E7%BA%AA%E5%BD%95%E7%89%87/a")}, true),
		Leaf("b.md", "b", "/b"),
	}
	got, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `[{"text":"BBC纪录片","collapsible":true,"collapsed":true,"items":[{"text":"a","link":"/BBC%E7%BA%AA%E5%BD%95%E7%89%87/a"}]},{"text":"b","link":"/b"}]`
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}
}

func TestEntry_JSONShapeExpandedDir(t *testing.T) {
	t.Parallel()

	tree := []Entry{
		Dir("guides", []Entry{Leaf("a b.md", "a b", "/guides/a%20b")}, false),
	}
	got, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `[{"text":"guides","collapsible":true,"collapsed":false,"items":[{"text":"a b","link":"/guides/a%20b"}]}]`
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}
}

func TestCountLeaves(t *testing.T) {
	t.Parallel()

	tree := []Entry{
		Dir("d", []Entry{Leaf("a.md", "a", "/d/a"), Dir("e", []Entry{Leaf("b.md", "b", "/d/e/b")}, false)}, true),
		Leaf("c.md", "c", "/c"),
	}
	if got := CountLeaves(tree); got != 3 {
		t.Errorf("CountLeaves() = %d, want 3", got)
	}
}
