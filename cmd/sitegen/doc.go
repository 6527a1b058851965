// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the sitegen CLI.
//
// The root command generates the VitePress configuration for the document
// tree in the current (or --dir) directory. Subcommands preview the sidebar,
// watch the tree for changes and manage sitegen.cue.
package cmd
