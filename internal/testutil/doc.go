// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for building document trees in tests,
// both in memory (afero) and on disk, failing the test on setup errors.
package testutil
