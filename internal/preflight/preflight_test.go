package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracksift/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if r := CheckDirectoryAccess("Dir", dir); !r.Passed {
		t.Fatalf("expected pass, got %+v", r)
	}
	missing := filepath.Join(dir, "missing")
	if r := CheckDirectoryAccess("Dir", missing); r.Passed || !strings.Contains(r.Detail, "does not exist") {
		t.Fatalf("expected missing failure, got %+v", r)
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r := CheckDirectoryAccess("Dir", file); r.Passed || !strings.Contains(r.Detail, "not a directory") {
		t.Fatalf("expected not-a-directory failure, got %+v", r)
	}
}

func TestRunAllHonoursHistoryToggle(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.HistoryDB = filepath.Join(t.TempDir(), "history.db")

	if got := RunAll(context.Background(), &cfg); len(got) != 2 || len(Failed(got)) != 0 {
		t.Fatalf("unexpected results %+v", got)
	}
	cfg.History.Enabled = false
	if got := RunAll(context.Background(), &cfg); len(got) != 1 {
		t.Fatalf("expected only the log directory check, got %+v", got)
	}
}

func TestCheckSourcesDeduplicatesDirectories(t *testing.T) {
	dir := t.TempDir()
	results := CheckSources([]string{filepath.Join(dir, "a.mkv"), filepath.Join(dir, "b.mkv"), "/nonexistent-dir/c.mkv"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	failed := Failed(results)
	if len(failed) != 1 || !strings.Contains(failed[0].Detail, "/nonexistent-dir") {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestCheckSystemDepsUsesConfiguredBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "/nonexistent/ffmpeg"
	statuses := CheckSystemDeps(&cfg)
	if statuses[0].Command != "/nonexistent/ffmpeg" || statuses[0].Available {
		t.Fatalf("unexpected ffmpeg status %+v", statuses[0])
	}
	if !statuses[2].Optional {
		t.Fatal("lspci must be optional")
	}
}
