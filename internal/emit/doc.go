// SPDX-License-Identifier: MPL-2.0

// Package emit renders and writes the files consumed by VitePress: the site
// config carrying the sidebar, the theme entry, the stylesheet, the comments
// component, and the one-time guestbook mutation.
//
// Every artifact is a pure function of the configuration (and, for the site
// config, the sidebar), so repeated runs produce identical bytes.
package emit
