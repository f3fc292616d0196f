// Package collect turns the browser's asynchronous, unsignalled downloads
// into per-item outcomes. There is no completion callback from the driven
// application: the only evidence of a finished download is a new file in
// the shared download directory, judged against the sentinel baseline.
package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/batch_restyler/internal/baseline"
	"github.com/italolelis/batch_restyler/internal/batch"
	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/italolelis/batch_restyler/internal/ui"
)

// downloadJS clicks the application's "download result" control.
const downloadJS = `document.querySelector("span:nth-child(3) > button").click()`

// errorMarkerContent is the fixed diagnostic written for failed items.
const errorMarkerContent = "An error occurred for this file during download.\n"

const (
	// interItemDelay spaces consecutive download triggers.
	interItemDelay = 5 * time.Second

	dirPerm  = 0755
	filePerm = 0644
)

// Outcome is the verification result for one item. It is derived from
// filesystem state at verification time and never re-checked.
type Outcome struct {
	Item         batch.FileItem
	Success      bool
	ArchivedPath string
	ArchivedSize int64
}

// Collector triggers result downloads and files each item's outcome.
type Collector struct {
	driver      ui.Driver
	markers     *baseline.Markers
	downloadDir string
	outputDir   string

	settle pace.Sampler
	sleep  func(time.Duration)
}

// NewCollector builds a Collector. The settle sampler sets how long a
// triggered download gets to land on disk before its outcome is decided.
func NewCollector(driver ui.Driver, markers *baseline.Markers, downloadDir, outputDir string, settle pace.Sampler) *Collector {
	return &Collector{
		driver:      driver,
		markers:     markers,
		downloadDir: downloadDir,
		outputDir:   outputDir,
		settle:      settle,
		sleep:       time.Sleep,
	}
}

// CollectBatch triggers and verifies downloads for every item of b, in
// order. The baseline timestamp is captured once before the first trigger
// and never advanced between items: item i succeeds if anything new
// appeared since the batch's downloads began, a deliberately coarse check.
func (c *Collector) CollectBatch(ctx context.Context, b *batch.Batch) ([]Outcome, error) {
	logger := logctx.LoggerFromContext(ctx)

	_ = c.driver.FocusTab(batch.FirstTab)

	baselineTime, err := c.markers.LatestTime()
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}

	outcomes := make([]Outcome, 0, len(b.Items))

	for i, item := range b.Items {
		logger.Info("collecting result", "file", item.Name, "tab", b.Tab(i))

		_ = c.driver.FocusTab(b.Tab(i))

		if err := c.driver.InjectText(downloadJS); err != nil {
			logger.Warn("failed to inject download snippet", "file", item.Name, "err", err)
		}

		_ = c.driver.PressEnter()

		c.sleep(c.settle())

		outcomes = append(outcomes, c.verifyOne(ctx, item, baselineTime))

		c.sleep(interItemDelay)
	}

	return outcomes, nil
}

// verifyOne decides one item's outcome against the batch baseline and
// either archives the newest download or writes the failure marker.
func (c *Collector) verifyOne(ctx context.Context, item batch.FileItem, baselineTime time.Time) Outcome {
	logger := logctx.LoggerFromContext(ctx)

	ok, err := c.anyFileSince(baselineTime)
	if err != nil {
		logger.Error("failed to check download dir", "file", item.Name, "err", err)

		ok = false
	}

	if !ok {
		logger.Warn("download failed", "file", item.Name)

		if err := c.markError(item); err != nil {
			logger.Error("failed to write error marker", "file", item.Name, "err", err)
		}

		return Outcome{Item: item}
	}

	archived, size, err := c.archiveNewest(item)
	if err != nil {
		// The download is there but could not be relocated. The item still
		// counts as succeeded; the file stays in the download directory.
		logger.Warn("failed to archive download", "file", item.Name, "err", err)

		return Outcome{Item: item, Success: true}
	}

	logger.Info("archived result", "file", item.Name, "target", archived, "size", humanize.Bytes(uint64(size)))

	return Outcome{Item: item, Success: true, ArchivedPath: archived, ArchivedSize: size}
}

// anyFileSince reports whether any non-hidden regular non-sentinel file in
// the download directory has a modification time strictly after t.
func (c *Collector) anyFileSince(t time.Time) (bool, error) {
	files, err := c.listDownloads()
	if err != nil {
		return false, err
	}

	for _, info := range files {
		if info.ModTime().After(t) {
			return true, nil
		}
	}

	return false, nil
}

// archiveNewest moves the most recent download into the output directory
// under the item's base name, keeping the download's own extension. The
// newest-file heuristic misattributes results if the browser writes several
// files close together; the application offers no name hint to do better.
// An existing file under the target name is overwritten.
func (c *Collector) archiveNewest(item batch.FileItem) (string, int64, error) {
	files, err := c.listDownloads()
	if err != nil {
		return "", 0, err
	}

	if len(files) == 0 {
		return "", 0, fmt.Errorf("no downloads found in %s", c.downloadDir)
	}

	newest := files[0]
	for _, info := range files[1:] {
		if info.ModTime().After(newest.ModTime()) {
			newest = info
		}
	}

	if err := os.MkdirAll(c.outputDir, dirPerm); err != nil {
		return "", 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	src := filepath.Join(c.downloadDir, newest.Name())
	dest := filepath.Join(c.outputDir, item.BaseName()+filepath.Ext(newest.Name()))

	if err := os.Rename(src, dest); err != nil {
		return "", 0, fmt.Errorf("failed to move download: %w", err)
	}

	return dest, newest.Size(), nil
}

// markError writes the persistent failure marker for item.
func (c *Collector) markError(item batch.FileItem) error {
	if err := os.MkdirAll(c.outputDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(c.outputDir, "error_"+item.BaseName()+".txt")

	if err := os.WriteFile(path, []byte(errorMarkerContent), filePerm); err != nil {
		return fmt.Errorf("failed to write error marker: %w", err)
	}

	return nil
}

func (c *Collector) listDownloads() ([]os.FileInfo, error) {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read download dir: %w", err)
	}

	files := make([]os.FileInfo, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") || baseline.IsSentinel(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		files = append(files, info)
	}

	return files, nil
}
