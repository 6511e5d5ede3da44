// Package fileutil holds small filesystem helpers shared by the packager and
// the cape library.
package fileutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// CopyFile streams src to dst, creating or truncating dst with mode 0o644.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
