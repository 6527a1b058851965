// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/ed2kdoc/sitegen/internal/sidebar"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
)

func newTreeCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Preview the generated sidebar",
		Long: `Scan the site root and print the sidebar without writing anything.

With --markdown the sidebar is printed as a Markdown link list rendered for
the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context(), flags, app.stderr)
			if err != nil {
				return app.fail(cmd, err, flags.verbose)
			}
			entries, err := app.generator(s, true).Sidebar()
			if err != nil {
				return app.fail(cmd, err, flags.verbose)
			}

			if !markdown {
				fmt.Fprintln(app.stdout, renderTree(s.cfg.Site.Title, entries))
				fmt.Fprintln(app.stdout, SubtitleStyle.Render(fmt.Sprintf("%d pages", sidebar.CountLeaves(entries))))
				return nil
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return app.fail(cmd, fmt.Errorf("create markdown renderer: %w", err), flags.verbose)
			}
			out, err := r.Render(sidebarMarkdown(s.cfg.Site.Title, entries))
			if err != nil {
				return app.fail(cmd, fmt.Errorf("render markdown: %w", err), flags.verbose)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the sidebar as rendered Markdown")
	return cmd
}

// renderTree draws entries below a root labeled title.
func renderTree(title string, entries []sidebar.Entry) string {
	t := tree.Root(TitleStyle.Render(title)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumeratorStyle)
	addTreeChildren(t, entries)
	return t.String()
}

func addTreeChildren(t *tree.Tree, entries []sidebar.Entry) {
	for _, e := range entries {
		if e.IsDir() {
			sub := tree.Root(CmdStyle.Render(e.Text + "/"))
			addTreeChildren(sub, e.Items)
			t.Child(sub)
			continue
		}
		t.Child(e.Text + " " + SubtitleStyle.Render(e.Link))
	}
}

// sidebarMarkdown renders entries as a nested Markdown list.
func sidebarMarkdown(title string, entries []sidebar.Entry) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	writeMarkdownList(&sb, entries, 0)
	return sb.String()
}

func writeMarkdownList(sb *strings.Builder, entries []sidebar.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(sb, "%s- **%s**\n", indent, e.Text)
			writeMarkdownList(sb, e.Items, depth+1)
			continue
		}
		fmt.Fprintf(sb, "%s- [%s](%s)\n", indent, e.Text, e.Link)
	}
}
