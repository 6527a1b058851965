// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for sitegen's user-facing failures.
//
// Errors carry the failed operation, the file or directory involved and a list
// of suggestions. Each failure class also has a Markdown guide that the CLI
// renders in verbose mode.
package issue
