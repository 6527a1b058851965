// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "scan documents"},
			expected: "failed to scan documents",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "scan documents", Resource: "/srv/site"},
			expected: "failed to scan documents: /srv/site",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write artifact",
				Resource:  ".vitepress/config.mts",
				Cause:     errors.New("read-only file system"),
			},
			expected: "failed to write artifact: .vitepress/config.mts: read-only file system",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("scan documents").
		Wrap(fs.ErrPermission).
		BuildError()

	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "scan documents",
		Resource:    "/srv/site/private",
		Suggestions: []string{"Check directory permissions"},
		Cause: &ActionableError{
			Operation: "read directory",
			Cause:     fs.ErrPermission,
		},
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check directory permissions") {
		t.Errorf("Format(false) missing suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not list the chain:\n%s", plain)
	}

	verbose := err.Format(true)
	for _, want := range []string{
		"Error chain:",
		"1. failed to read directory: permission denied",
		"2. permission denied",
	} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithResource("/srv/site")
	if ctx.Build() != nil {
		t.Error("Build() should return nil without an operation")
	}
	if err := ctx.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}
