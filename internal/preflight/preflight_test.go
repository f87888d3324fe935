package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"fileset/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllSkipsUnsetPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Database = filepath.Join(t.TempDir(), "fileset.db")

	results := RunAll(&cfg)
	if len(results) != 1 || results[0].Name != "Database directory" || !results[0].Passed {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRunAllReportsMissingScratch(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Database = filepath.Join(base, "fileset.db")
	cfg.Paths.LogDir = base
	cfg.Paths.ScratchDir = filepath.Join(base, "missing")

	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Scratch directory" {
		t.Fatalf("expected only scratch to fail, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil, got %+v", results)
	}
}
