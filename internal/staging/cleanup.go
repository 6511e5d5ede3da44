package staging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"capestudio/internal/logging"
)

// CleanStaleResult contains the outcome of a stale directory cleanup.
type CleanStaleResult struct {
	Removed []string
	Skipped []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staging directories older than maxAge whose build lock is
// not held. A non-positive maxAge removes every unlocked directory.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	dirs, err := ListDirectories(stagingDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if maxAge > 0 && !dir.ModTime.Before(cutoff) {
			continue
		}
		if dir.Locked {
			result.Skipped = append(result.Skipped, dir.Path)
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale staging directory", "staging_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		_ = os.Remove(LockPath(stagingDir, dir.Name))
		result.Removed = append(result.Removed, dir.Path)
		logger.Info("removed stale staging directory",
			logging.String("path", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return result
}
