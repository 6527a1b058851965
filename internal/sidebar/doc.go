// SPDX-License-Identifier: MPL-2.0

// Package sidebar defines the navigation tree handed to the site generator
// and the deterministic ordering applied to sibling entries.
package sidebar
