// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"net/url"
	"strings"
)

// Link builds the root-relative URL path of a document from its path
// segments (directory names then file name), stripping ext from the last
// segment and percent-encoding each segment.
func Link(segments []string, ext string) string {
	if len(segments) == 0 {
		return "/"
	}
	escaped := make([]string, len(segments))
	last := len(segments) - 1
	for i, s := range segments {
		if i == last {
			s = strings.TrimSuffix(s, ext)
		}
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}
