package staging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"capestudio/internal/logging"
	"capestudio/internal/staging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := staging.CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func makeDir(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if age > 0 {
		ts := time.Now().Add(-age)
		if err := os.Chtimes(dir, ts, ts); err != nil {
			t.Fatalf("set time: %v", err)
		}
	}
	return dir
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	root := t.TempDir()
	oldDir := makeDir(t, root, "old-item", 2*time.Hour)
	recentDir := makeDir(t, root, "recent-item", 0)

	result := staging.CleanStale(context.Background(), root, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
}

func TestCleanStaleSkipsLockedDirectories(t *testing.T) {
	root := t.TempDir()
	dir := makeDir(t, root, "busy-item", 2*time.Hour)

	lock := staging.NewLock(root, "busy-item")
	if err := lock.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	result := staging.CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != dir {
		t.Fatalf("expected %s skipped, got %v", dir, result.Skipped)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("locked directory should remain: %v", err)
	}
}

func TestListDirectoriesReportsSize(t *testing.T) {
	root := t.TempDir()
	makeDir(t, root, "item", 0)
	if err := os.WriteFile(filepath.Join(root, "item.lock"), nil, 0o644); err != nil {
		t.Fatalf("write lock: %v", err)
	}

	dirs, err := staging.ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected one directory, got %d", len(dirs))
	}
	if dirs[0].Name != "item" || dirs[0].Size != 2 || dirs[0].Locked {
		t.Fatalf("unexpected dir info %+v", dirs[0])
	}
}
