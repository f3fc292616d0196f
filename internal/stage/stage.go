// Package stage manages the scratch upload directory the browser file
// picker reads from. The picker selects entries by keyboard navigation, so
// the directory must hold exactly the base image plus the style reference,
// and the style file gets a name that sorts after any base image.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/italolelis/batch_restyler/internal/logctx"
)

// StyleBaseName is the name (without extension) the style reference is
// staged under. The run of z's keeps it last in picker sort order.
const StyleBaseName = "zzzzzz_style"

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Stager owns the scratch upload directory.
type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Wipe clears the scratch directory, creating it if missing. Entries that
// cannot be removed are logged and left behind.
func (s *Stager) Wipe(ctx context.Context) error {
	logger := logctx.LoggerFromContext(ctx)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(s.dir, dirPerm)
		}

		return fmt.Errorf("failed to read staging dir: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(s.dir, entry.Name())

		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove staged entry", "entry", entry.Name(), "err", err)
		}
	}

	logger.Info("cleared staging dir", "dir", s.dir)

	return nil
}

// CopyStyle copies the first (sorted) non-hidden regular file from styleDir
// into the scratch directory under StyleBaseName plus its original
// extension, and returns the staged path.
func (s *Stager) CopyStyle(ctx context.Context, styleDir string) (string, error) {
	logger := logctx.LoggerFromContext(ctx)

	entries, err := os.ReadDir(styleDir)
	if err != nil {
		return "", fmt.Errorf("failed to read style dir: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return "", fmt.Errorf("no style files found in %s", styleDir)
	}

	sort.Strings(names)

	src := filepath.Join(styleDir, names[0])
	dest := filepath.Join(s.dir, StyleBaseName+filepath.Ext(names[0]))

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("failed to stage style file: %w", err)
	}

	logger.Info("staged style file", "src", src, "dest", dest)

	return dest, nil
}

// StageBase copies the base image into the scratch directory under its own
// name so the picker lists it before the style file.
func (s *Stager) StageBase(path string) error {
	dest := filepath.Join(s.dir, filepath.Base(path))

	if err := copyFile(path, dest); err != nil {
		return fmt.Errorf("failed to stage base image: %w", err)
	}

	return nil
}

// UnstageBase removes a previously staged base image. Missing files are
// fine; the upload already consumed the staging copy's purpose.
func (s *Stager) UnstageBase(ctx context.Context, path string) {
	logger := logctx.LoggerFromContext(ctx)

	target := filepath.Join(s.dir, filepath.Base(path))

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to unstage base image", "file", target, "err", err)
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return err
	}

	return out.Close()
}
