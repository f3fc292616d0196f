// Package baseline manages the sentinel files that mark time zero in the
// shared download directory. The browser writes downloads into that
// directory asynchronously and it may already contain unrelated files, so
// the maximum sentinel modification time is the only reference point for
// "new file since the run started" checks.
package baseline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/italolelis/batch_restyler/internal/logctx"
)

const (
	sentinelPrefix = "spacer_"
	sentinelExt    = ".tmp"

	dirPerm = 0755
)

// Markers owns the sentinel files of one run.
type Markers struct {
	dir string
}

func NewMarkers(dir string) *Markers {
	return &Markers{dir: dir}
}

// IsSentinel reports whether name matches the sentinel naming pattern.
func IsSentinel(name string) bool {
	return strings.HasPrefix(name, sentinelPrefix) && strings.HasSuffix(name, sentinelExt)
}

// Establish creates count empty sentinel files in the download directory.
func (m *Markers) Establish(ctx context.Context, count int) error {
	logger := logctx.LoggerFromContext(ctx)

	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	for i := 1; i <= count; i++ {
		path := filepath.Join(m.dir, fmt.Sprintf("%s%04d%s", sentinelPrefix, i, sentinelExt))

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create sentinel %s: %w", path, err)
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close sentinel %s: %w", path, err)
		}
	}

	logger.Info("established download baseline", "dir", m.dir, "sentinel_count", count)

	return nil
}

// LatestTime returns the maximum modification time among the sentinel
// files, or the zero time if none exist. The zero case never happens after
// Establish succeeded but must not fail either.
func (m *Markers) LatestTime() (time.Time, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read download dir: %w", err)
	}

	var latest time.Time

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsSentinel(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to stat sentinel %s: %w", entry.Name(), err)
		}

		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}

	return latest, nil
}

// Teardown removes all sentinel files. Individual removal failures are
// logged and skipped; calling Teardown on an already clean directory is a
// no-op.
func (m *Markers) Teardown(ctx context.Context) {
	logger := logctx.LoggerFromContext(ctx)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		logger.Error("failed to read download dir for teardown", "dir", m.dir, "err", err)

		return
	}

	removed := 0

	for _, entry := range entries {
		if !IsSentinel(entry.Name()) {
			continue
		}

		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
			logger.Warn("failed to remove sentinel", "file", entry.Name(), "err", err)

			continue
		}

		removed++
	}

	logger.Info("removed download baseline", "dir", m.dir, "removed", removed)
}
