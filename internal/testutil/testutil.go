// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// MemRoot is the site root used by MemTree.
const MemRoot = "/site"

// MemTree returns an in-memory filesystem rooted at MemRoot holding files.
// Keys are slash paths relative to the root; a key ending in "/" creates an
// empty directory.
func MemTree(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	MustMkdirAll(t, fs, MemRoot)
	writeAll(t, fs, MemRoot, files)
	return fs
}

// DiskTree writes files below a fresh temporary directory and returns it.
// Keys follow the MemTree conventions.
func DiskTree(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	writeAll(t, afero.NewOsFs(), dir, files)
	return dir
}

// MustMkdirAll creates path and its parents on fs.
func MustMkdirAll(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	if err := fs.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustReadFile returns the contents of path on fs.
func MustReadFile(t testing.TB, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// MustChdir changes the working directory to dir and restores it on cleanup.
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(original); err != nil {
			t.Errorf("failed to restore directory to %s: %v", original, err)
		}
	})
}

func writeAll(t testing.TB, fs afero.Fs, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			MustMkdirAll(t, fs, full)
			continue
		}
		MustMkdirAll(t, fs, filepath.Dir(full))
		if err := afero.WriteFile(fs, full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", full, err)
		}
	}
}
