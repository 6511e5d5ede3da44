package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockSuffix = ".lock"

// WorkDir returns the staging directory for one item.
func WorkDir(stagingDir, itemID string) string {
	return filepath.Join(stagingDir, itemID)
}

// LockPath returns the lock file guarding an item's staging directory.
func LockPath(stagingDir, itemID string) string {
	return filepath.Join(stagingDir, itemID+lockSuffix)
}

// NewLock returns the flock guarding an item's staging directory.
func NewLock(stagingDir, itemID string) *flock.Flock {
	return flock.New(LockPath(stagingDir, itemID))
}

// DirInfo contains metadata about a staging directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	Locked  bool
}

// ListDirectories returns every staging directory with its metadata.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
			Locked:  isLocked(stagingDir, entry.Name()),
		})
	}
	return dirs, nil
}

// isLocked reports whether a build currently holds the item's lock.
func isLocked(stagingDir, name string) bool {
	lock := NewLock(stagingDir, name)
	if _, err := os.Stat(lock.Path()); err != nil {
		return false
	}
	ok, err := lock.TryLock()
	if err != nil {
		return true
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
