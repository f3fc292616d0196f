// Package scan enumerates the input images directory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/italolelis/batch_restyler/internal/batch"
)

// Images lists the non-hidden regular files in dir in sorted name order.
// A missing or unreadable directory is a fatal fault for the run.
func Images(dir string) ([]batch.FileItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images dir: %w", err)
	}

	items := make([]batch.FileItem, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		items = append(items, batch.FileItem{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return items, nil
}
