// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ed2kdoc/sitegen/internal/config"
	"github.com/ed2kdoc/sitegen/internal/emit"
	"github.com/ed2kdoc/sitegen/internal/hook"
	"github.com/ed2kdoc/sitegen/internal/issue"
	"github.com/ed2kdoc/sitegen/internal/sidebar"
	"github.com/ed2kdoc/sitegen/internal/testutil"

	"github.com/spf13/afero"
)

func texts(entries []sidebar.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func withComments(cfg *config.Config) *config.Config {
	cfg.Comments.Enabled = true
	cfg.Comments.Repo = "owner/docs"
	cfg.Comments.RepoID = "R_1"
	cfg.Comments.CategoryID = "DIC_1"
	return cfg
}

func TestSidebar_GuestbookScenario(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, map[string]string{
		"index.md":    "# home",
		"留言板.md":      "# 留言板",
		"BBC纪录片/a.md": "a",
		"empty/":      "",
	})

	entries, err := New(config.DefaultConfig(), fsys, testutil.MemRoot).Sidebar()
	if err != nil {
		t.Fatalf("Sidebar() error: %v", err)
	}

	want := []string{"首页", "BBC纪录片", "留言板"}
	if got := texts(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("sidebar = %v, want %v", got, want)
	}
	if entries[0].Link != "/" {
		t.Errorf("home link = %q, want /", entries[0].Link)
	}
	if got := texts(entries[1].Items); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("BBC纪录片 items = %v, want [a]", got)
	}
	if err := sidebar.ValidateAll(entries); err != nil {
		t.Errorf("invalid sidebar: %v", err)
	}
}

func TestSidebar_SortsFiles(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, map[string]string{"b.md": "", "a.md": ""})
	entries, err := New(config.DefaultConfig(), fsys, testutil.MemRoot).Sidebar()
	if err != nil {
		t.Fatalf("Sidebar() error: %v", err)
	}
	if got, want := texts(entries), []string{"首页", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("sidebar = %v, want %v", got, want)
	}
}

func TestSidebar_PriorityOrder(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Order.Files = []string{"z.md"}
	cfg.Order.Dirs = []string{"later"}

	fsys := testutil.MemTree(t, map[string]string{
		"a.md": "", "z.md": "", "early/x.md": "", "later/y.md": "",
	})
	entries, err := New(cfg, fsys, testutil.MemRoot).Sidebar()
	if err != nil {
		t.Fatalf("Sidebar() error: %v", err)
	}
	if got, want := texts(entries), []string{"首页", "later", "early", "z", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("sidebar = %v, want %v", got, want)
	}
}

func TestSidebar_PlannedGuestbookIsTail(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, map[string]string{"a.md": ""})
	entries, err := New(withComments(config.DefaultConfig()), fsys, testutil.MemRoot).Sidebar()
	if err != nil {
		t.Fatalf("Sidebar() error: %v", err)
	}
	if got, want := texts(entries), []string{"首页", "a", "留言板"}; !reflect.DeepEqual(got, want) {
		t.Errorf("sidebar = %v, want %v", got, want)
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(testutil.MemRoot, "留言板.md")); ok {
		t.Error("Sidebar() created the guestbook")
	}
}

func TestRun_PlannedGuestbookOutsideTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		appendLast string
		want       []string
	}{
		{name: "other append_last", appendLast: "留言板.md", want: []string{"首页", "a", "guestbook", "z"}},
		{name: "no append_last", appendLast: "", want: []string{"首页", "a", "guestbook", "z"}},
		{name: "guestbook is append_last", appendLast: "guestbook.md", want: []string{"首页", "a", "z", "guestbook"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := testutil.MemTree(t, map[string]string{"index.md": "", "a.md": "", "z.md": ""})
			cfg := withComments(config.DefaultConfig())
			cfg.Comments.Guestbook = "guestbook.md"
			cfg.Scan.AppendLast = tt.appendLast

			planned, err := New(cfg, fsys, testutil.MemRoot).Sidebar()
			if err != nil {
				t.Fatalf("Sidebar() error: %v", err)
			}
			if got := texts(planned); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("planned sidebar = %v, want %v", got, tt.want)
			}

			configPath := filepath.Join(testutil.MemRoot, ".vitepress/config.mts")
			var docs [2]string
			for i := range docs {
				report, err := New(cfg, fsys, testutil.MemRoot).Run(context.Background())
				if err != nil {
					t.Fatalf("Run() #%d error: %v", i+1, err)
				}
				if report.Documents != 3 {
					t.Errorf("Run() #%d documents = %d, want 3", i+1, report.Documents)
				}
				docs[i] = testutil.MustReadFile(t, fsys, configPath)
			}
			if docs[0] != docs[1] {
				t.Errorf("config differs between runs:\nfirst:\n%s\nsecond:\n%s", docs[0], docs[1])
			}
		})
	}
}

func TestRun_WritesArtifactsAndGuestbook(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, map[string]string{"index.md": "", "BBC纪录片/a.md": ""})
	report, err := New(withComments(config.DefaultConfig()), fsys, testutil.MemRoot).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Guestbook != emit.GuestbookCreated {
		t.Errorf("guestbook = %s, want created", report.Guestbook)
	}
	if report.Documents != 2 {
		t.Errorf("documents = %d, want 2", report.Documents)
	}
	if len(report.Artifacts) != 4 {
		t.Errorf("artifacts = %d, want 4", len(report.Artifacts))
	}

	cfgDoc := testutil.MustReadFile(t, fsys, filepath.Join(testutil.MemRoot, ".vitepress/config.mts"))
	if !strings.Contains(cfgDoc, `"link": "/%E7%95%99%E8%A8%80%E6%9D%BF"`) {
		t.Errorf("created guestbook missing from sidebar:\n%s", cfgDoc)
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, map[string]string{
		"index.md": "", "b.md": "", "a.md": "", "中国/x.md": "", "北京/y.md": "",
	})
	cfg := withComments(config.DefaultConfig())
	paths := []string{
		".vitepress/config.mts",
		".vitepress/theme/index.ts",
		".vitepress/theme/style.css",
		".vitepress/theme/components/Comments.vue",
		"留言板.md",
	}

	snapshot := func() map[string]string {
		if _, err := New(cfg, fsys, testutil.MemRoot).Run(context.Background()); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		out := make(map[string]string, len(paths))
		for _, p := range paths {
			out[p] = testutil.MustReadFile(t, fsys, filepath.Join(testutil.MemRoot, p))
		}
		return out
	}

	first := snapshot()
	second := snapshot()
	for _, p := range paths {
		if first[p] != second[p] {
			t.Errorf("%s differs between runs", p)
		}
	}
}

func TestRun_GuestbookWithMarkerUntouched(t *testing.T) {
	t.Parallel()

	page := "# 留言板\n\n<script src=\"https://giscus.app/client.js\"></script>\n"
	fsys := testutil.MemTree(t, map[string]string{"留言板.md": page})

	report, err := New(withComments(config.DefaultConfig()), fsys, testutil.MemRoot).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Guestbook != emit.GuestbookUnchanged {
		t.Errorf("guestbook = %s, want unchanged", report.Guestbook)
	}
	if got := testutil.MustReadFile(t, fsys, filepath.Join(testutil.MemRoot, "留言板.md")); got != page {
		t.Errorf("guestbook modified:\n%s", got)
	}
}

// failingFs fails to open one directory.
type failingFs struct {
	afero.Fs
	bad string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == f.bad {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.Fs.Open(name)
}

func TestRun_ScanFailureWritesNothing(t *testing.T) {
	t.Parallel()

	base := testutil.MemTree(t, map[string]string{"a.md": "", "locked/b.md": ""})
	fsys := failingFs{Fs: base, bad: filepath.Join(testutil.MemRoot, "locked")}

	_, err := New(withComments(config.DefaultConfig()), fsys, testutil.MemRoot).Run(context.Background())
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("Run() error = %v, want permission denied", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Kind != issue.KindScanFailed {
		t.Errorf("error is not a scan-failed ActionableError: %#v", err)
	}
	for _, p := range []string{".vitepress", "留言板.md"} {
		if ok, _ := afero.Exists(base, filepath.Join(testutil.MemRoot, p)); ok {
			t.Errorf("%s written despite scan failure", p)
		}
	}
}

func TestRun_WriteFailure(t *testing.T) {
	t.Parallel()

	fsys := afero.NewReadOnlyFs(testutil.MemTree(t, map[string]string{"a.md": ""}))
	_, err := New(config.DefaultConfig(), fsys, testutil.MemRoot).Run(context.Background())

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Kind != issue.KindWriteFailed {
		t.Errorf("Run() error = %v, want write-failed ActionableError", err)
	}
}

// rejectFs fails writes to a single path.
type rejectFs struct {
	afero.Fs
	path string
}

func (r rejectFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if filepath.Clean(name) == r.path && flag&os.O_WRONLY != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return r.Fs.OpenFile(name, flag, perm)
}

func TestRun_WriteFailureNamesArtifact(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	fsys := rejectFs{
		Fs:   testutil.MemTree(t, map[string]string{"a.md": ""}),
		path: filepath.Join(testutil.MemRoot, filepath.FromSlash(cfg.Output.Stylesheet)),
	}
	_, err := New(cfg, fsys, testutil.MemRoot).Run(context.Background())

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Kind != issue.KindWriteFailed {
		t.Fatalf("Run() error = %v, want write-failed ActionableError", err)
	}
	if ae.Resource != cfg.Output.Stylesheet {
		t.Errorf("resource = %q, want %q", ae.Resource, cfg.Output.Stylesheet)
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	dir := testutil.DiskTree(t, map[string]string{"a.md": ""})
	cfg := withComments(config.DefaultConfig())
	cfg.Hooks.AfterGenerate = []string{"echo ran > hook.out"}

	report, err := New(cfg, afero.NewOsFs(), dir, WithDryRun(true)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !report.DryRun || report.Hooks != 0 {
		t.Errorf("report = %+v, want dry run without hooks", report)
	}
	for _, p := range []string{".vitepress", "留言板.md", "hook.out"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			t.Errorf("%s exists after dry run", p)
		}
	}
}

func TestRun_Hooks(t *testing.T) {
	t.Parallel()

	dir := testutil.DiskTree(t, map[string]string{"a.md": "", "b.md": ""})
	cfg := config.DefaultConfig()
	cfg.Hooks.AfterGenerate = []string{
		`echo "$SITEGEN_DOCUMENTS $SITEGEN_CONFIG_OUTPUT" > hook.out`,
	}

	report, err := New(cfg, afero.NewOsFs(), dir, WithEnviron([]string{})).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Hooks != 1 {
		t.Errorf("hooks = %d, want 1", report.Hooks)
	}
	data, err := os.ReadFile(filepath.Join(dir, "hook.out"))
	if err != nil {
		t.Fatalf("hook output missing: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "2 .vitepress/config.mts" {
		t.Errorf("hook saw %q", got)
	}
}

func TestRun_HookFailure(t *testing.T) {
	t.Parallel()

	dir := testutil.DiskTree(t, map[string]string{"a.md": ""})
	cfg := config.DefaultConfig()
	cfg.Hooks.AfterGenerate = []string{"true", "exit 7"}

	report, err := New(cfg, afero.NewOsFs(), dir, WithEnviron([]string{})).Run(context.Background())

	var exitErr *hook.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 7 {
		t.Fatalf("Run() error = %v, want hook exit 7", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Kind != issue.KindHookFailed || ae.Resource != hook.Name(1) {
		t.Errorf("error = %#v, want hook-failed ActionableError for %s", err, hook.Name(1))
	}
	if report == nil || len(report.Artifacts) == 0 {
		t.Error("artifacts should be reported even when a hook fails")
	}
	if _, err := os.Stat(filepath.Join(dir, ".vitepress", "config.mts")); err != nil {
		t.Errorf("config not written before hook failure: %v", err)
	}
}
