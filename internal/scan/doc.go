// SPDX-License-Identifier: MPL-2.0

// Package scan walks the document tree of a site and builds its sidebar.
//
// The walk is synchronous and fails fast: the first unreadable directory
// aborts the scan and nothing is returned.
package scan
