package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("previous longer content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestWriteFileAtomicLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteFileAtomic(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected replaced content, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestMoveFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "staged.zip")
	dst := filepath.Join(dir, "final.zip")
	if err := os.WriteFile(src, []byte("zipbytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFileAtomic(src, dst, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "zipbytes" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestIsRegularFileAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	if IsRegularFile(path) {
		t.Fatal("expected missing file to report false")
	}
	if IsRegularFile(dir) {
		t.Fatal("expected directory to report false")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsRegularFile(path) {
		t.Fatal("expected regular file")
	}

	removed, err := RemoveIfExists(path)
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = RemoveIfExists(path)
	if err != nil || removed {
		t.Fatalf("expected no-op removal, got removed=%v err=%v", removed, err)
	}
}
