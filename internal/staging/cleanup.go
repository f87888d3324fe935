// Package staging manages scratch directories that hold catalog files
// extracted from archives while they are loaded.
package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fileset/internal/logging"
)

// DirPrefix names every scratch directory this package creates.
const DirPrefix = "fileset-catalog-"

// DefaultMaxAge is how old a scratch directory must be before CleanStale
// treats it as abandoned by an interrupted run.
const DefaultMaxAge = 24 * time.Hour

// NewDir creates a scratch directory under base, or under the system temp
// directory when base is empty.
func NewDir(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", fmt.Errorf("create scratch base %s: %w", base, err)
		}
	}
	dir, err := os.MkdirTemp(base, DirPrefix)
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	return dir, nil
}

// CleanStaleResult reports what CleanStale removed.
type CleanStaleResult struct {
	Removed []string
	Errors  []error
}

// CleanStale removes scratch directories under base older than maxAge.
// Entries without DirPrefix are never touched. An empty base means the
// system temp directory.
func CleanStale(ctx context.Context, base string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	if logger == nil {
		logger = logging.NewNop()
	}
	base = strings.TrimSpace(base)
	if base == "" {
		base = os.TempDir()
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, fmt.Errorf("read scratch base: %w", err))
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err())
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(base, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("remove %s: %w", path, err))
			logging.WarnWithContext(logger, "stale scratch cleanup failed", "scratch_cleanup_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale scratch directory",
			logging.String(logging.FieldPath, path),
			logging.String("age", time.Since(info.ModTime()).Round(time.Minute).String()),
		)
	}
	return result
}
