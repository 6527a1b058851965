// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"
)

// GenerateCUE renders cfg as a sitegen.cue document accepted by Load.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// sitegen configuration\n")
	sb.WriteString("// Omitted fields keep their built-in defaults.\n\n")

	sb.WriteString("site: {\n")
	fmt.Fprintf(&sb, "\ttitle:       %q\n", cfg.Site.Title)
	fmt.Fprintf(&sb, "\tdescription: %q\n", cfg.Site.Description)
	fmt.Fprintf(&sb, "\tbase:        %q\n", cfg.Site.Base)
	fmt.Fprintf(&sb, "\tlang:        %q\n", cfg.Site.Lang)
	fmt.Fprintf(&sb, "\tsrc_dir:     %q\n", cfg.Site.SrcDir)
	fmt.Fprintf(&sb, "\thome_text:   %q\n", cfg.Site.HomeText)
	fmt.Fprintf(&sb, "\thome_link:   %q\n", cfg.Site.HomeLink)
	sb.WriteString("}\n")

	sb.WriteString("\nscan: {\n")
	fmt.Fprintf(&sb, "\tdoc_ext:             %q\n", cfg.Scan.DocExt)
	fmt.Fprintf(&sb, "\tignore:              %s\n", cueList(cfg.Scan.Ignore))
	fmt.Fprintf(&sb, "\tignore_patterns:     %s\n", cueList(cfg.Scan.IgnorePatterns))
	fmt.Fprintf(&sb, "\tindex_doc:           %q\n", cfg.Scan.IndexDoc)
	fmt.Fprintf(&sb, "\tappend_last:         %q\n", cfg.Scan.AppendLast)
	fmt.Fprintf(&sb, "\tspecial_every_level: %v\n", cfg.Scan.SpecialEveryLevel)
	sb.WriteString("}\n")

	sb.WriteString("\norder: {\n")
	fmt.Fprintf(&sb, "\tenabled:   %v\n", cfg.Order.Enabled)
	fmt.Fprintf(&sb, "\tfiles:     %s\n", cueList(cfg.Order.Files))
	fmt.Fprintf(&sb, "\tdirs:      %s\n", cueList(cfg.Order.Dirs))
	fmt.Fprintf(&sb, "\tcollapsed: %v\n", cfg.Order.Collapsed)
	sb.WriteString("}\n")

	sb.WriteString("\nmarkdown: {\n")
	fmt.Fprintf(&sb, "\ttask_lists: %v\n", cfg.Markdown.TaskLists)
	if len(cfg.Markdown.Plugins) == 0 {
		sb.WriteString("\tplugins: []\n")
	} else {
		sb.WriteString("\tplugins: [\n")
		for _, p := range cfg.Markdown.Plugins {
			fmt.Fprintf(&sb, "\t\t{name: %q, import: %q},\n", p.Name, p.Import)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("\tsearch: {\n")
	fmt.Fprintf(&sb, "\t\tenabled:  %v\n", cfg.Markdown.Search.Enabled)
	fmt.Fprintf(&sb, "\t\tplugin:   %q\n", cfg.Markdown.Search.Plugin)
	fmt.Fprintf(&sb, "\t\timport:   %q\n", cfg.Markdown.Search.Import)
	fmt.Fprintf(&sb, "\t\tlanguage: %q\n", cfg.Markdown.Search.Language)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\ncomments: {\n")
	fmt.Fprintf(&sb, "\tenabled:     %v\n", cfg.Comments.Enabled)
	// An empty repo would violate the owner/name pattern.
	if cfg.Comments.Repo != "" {
		fmt.Fprintf(&sb, "\trepo:        %q\n", cfg.Comments.Repo)
	}
	fmt.Fprintf(&sb, "\trepo_id:     %q\n", cfg.Comments.RepoID)
	fmt.Fprintf(&sb, "\tcategory:    %q\n", cfg.Comments.Category)
	fmt.Fprintf(&sb, "\tcategory_id: %q\n", cfg.Comments.CategoryID)
	fmt.Fprintf(&sb, "\tguestbook:   %q\n", cfg.Comments.Guestbook)
	fmt.Fprintf(&sb, "\tmarker:      %q\n", cfg.Comments.Marker)
	fmt.Fprintf(&sb, "\theading:     %q\n", cfg.Comments.Heading)
	sb.WriteString("}\n")

	sb.WriteString("\nstyle: {\n")
	fmt.Fprintf(&sb, "\tcontent_max_width: %q\n", cfg.Style.ContentMaxWidth)
	fmt.Fprintf(&sb, "\tsidebar_width:     %q\n", cfg.Style.SidebarWidth)
	fmt.Fprintf(&sb, "\tcheckbox_size:     %q\n", cfg.Style.CheckboxSize)
	sb.WriteString("}\n")

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tconfig:     %q\n", cfg.Output.Config)
	fmt.Fprintf(&sb, "\ttheme:      %q\n", cfg.Output.Theme)
	fmt.Fprintf(&sb, "\tstylesheet: %q\n", cfg.Output.Stylesheet)
	fmt.Fprintf(&sb, "\tcomponent:  %q\n", cfg.Output.Component)
	sb.WriteString("}\n")

	sb.WriteString("\nhooks: {\n")
	fmt.Fprintf(&sb, "\tafter_generate: %s\n", cueList(cfg.Hooks.AfterGenerate))
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
