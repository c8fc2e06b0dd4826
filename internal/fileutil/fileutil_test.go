package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"cliptrim/internal/fileutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "payload")

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected copy content %q", data)
	}
}

func TestMoveFileCreatesTargetDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "deep", "dst.txt")
	writeFile(t, src, "payload")

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if fileutil.PathExists(src) {
		t.Fatal("expected source to be gone after move")
	}
	if !fileutil.PathExists(dst) {
		t.Fatal("expected destination to exist after move")
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	writeFile(t, path, "x")

	if err := fileutil.RemoveIfExists(path); err != nil {
		t.Fatalf("remove existing: %v", err)
	}
	if err := fileutil.RemoveIfExists(path); err != nil {
		t.Fatalf("remove missing should be a no-op: %v", err)
	}
	if err := fileutil.RemoveIfExists(""); err != nil {
		t.Fatalf("remove empty path should be a no-op: %v", err)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if fileutil.PathExists(filepath.Join(dir, "missing")) {
		t.Fatal("missing path reported as existing")
	}
	if fileutil.PathExists(dir) {
		t.Fatal("directory should not count as a regular file")
	}
	path := filepath.Join(dir, "file.txt")
	writeFile(t, path, "x")
	if !fileutil.PathExists(path) {
		t.Fatal("regular file not detected")
	}
}
