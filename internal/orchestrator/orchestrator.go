// Package orchestrator sequences batches through their life cycle:
// upload every item, idle with tab rotation, verify and archive downloads,
// close the batch's tabs, move on. Transitions are strictly sequential and
// unconditional; nothing retries and nothing branches back.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/italolelis/batch_restyler/internal/batch"
	"github.com/italolelis/batch_restyler/internal/collect"
	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/notifier"
	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/italolelis/batch_restyler/internal/storage"
	"github.com/italolelis/batch_restyler/internal/telemetry"
	"github.com/italolelis/batch_restyler/internal/ui"
)

// Phase is a batch's position in its life cycle.
type Phase string

const (
	PhaseUploading   Phase = "uploading"
	PhaseIdling      Phase = "idling"
	PhaseDownloading Phase = "downloading"
	PhaseClosing     Phase = "closing"
	PhaseDone        Phase = "done"
)

// Tab closes are spaced out like the rest of the input.
const (
	closeDelayMin = 200 * time.Millisecond
	closeDelayMax = 500 * time.Millisecond
)

// Uploader submits one item, leaving its tab open.
type Uploader interface {
	UploadOne(ctx context.Context, item batch.FileItem) error
}

// Rotator keeps the batch's tabs attended for the idle window.
type Rotator interface {
	Rotate(ctx context.Context, tabs []int, window time.Duration)
}

// Collector verifies and archives the batch's downloads.
type Collector interface {
	CollectBatch(ctx context.Context, b *batch.Batch) ([]collect.Outcome, error)
}

// Snapshot is the progress view published for the status endpoint. It is a
// copy; readers never see the controller's internal state directly.
type Snapshot struct {
	StartedAt    time.Time `json:"started_at"`
	TotalFiles   int       `json:"total_files"`
	TotalBatches int       `json:"total_batches"`
	CurrentBatch int       `json:"current_batch"`
	Phase        Phase     `json:"phase"`
	Uploaded     int       `json:"uploaded"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
}

// Params carries the controller's collaborators and knobs.
type Params struct {
	Driver    ui.Driver
	Uploader  Uploader
	Rotator   Rotator
	Collector Collector

	Journal   storage.OutcomeWriteRepository
	Notifier  notifier.Notifier
	Telemetry *telemetry.Telemetry

	RunID           string
	BatchSize       int
	IdleWindow      time.Duration
	EnableDownloads bool
}

// Controller drives the whole run, one batch at a time.
type Controller struct {
	driver    ui.Driver
	uploader  Uploader
	rotator   Rotator
	collector Collector

	journal storage.OutcomeWriteRepository
	notif   notifier.Notifier
	tel     *telemetry.Telemetry

	runID           string
	batchSize       int
	idleWindow      time.Duration
	enableDownloads bool

	closeDelay pace.Sampler
	sleep      func(time.Duration)

	mu   sync.RWMutex
	snap Snapshot
}

func NewController(p Params) *Controller {
	return &Controller{
		driver:          p.Driver,
		uploader:        p.Uploader,
		rotator:         p.Rotator,
		collector:       p.Collector,
		journal:         p.Journal,
		notif:           p.Notifier,
		tel:             p.Telemetry,
		runID:           p.RunID,
		batchSize:       p.BatchSize,
		idleWindow:      p.IdleWindow,
		enableDownloads: p.EnableDownloads,
		closeDelay:      pace.Uniform(closeDelayMin, closeDelayMax),
		sleep:           time.Sleep,
	}
}

// Snapshot returns a copy of the current progress view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snap
}

// Run chunks items and processes every batch to completion, in order.
func (c *Controller) Run(ctx context.Context, items []batch.FileItem) error {
	logger := logctx.LoggerFromContext(ctx)

	batches := batch.Chunk(items, c.batchSize)

	c.mu.Lock()
	c.snap.StartedAt = time.Now()
	c.snap.TotalFiles = len(items)
	c.snap.TotalBatches = len(batches)
	c.mu.Unlock()

	for _, b := range batches {
		logger.Info("starting batch", "batch", b.Index, "size", len(b.Items), "batches", len(batches))

		if err := c.runBatch(ctx, b); err != nil {
			return err
		}

		logger.Info("finished batch", "batch", b.Index)
	}

	return nil
}

func (c *Controller) runBatch(ctx context.Context, b *batch.Batch) error {
	logger := logctx.LoggerFromContext(ctx)

	c.setPhase(b, PhaseUploading)

	for i, item := range b.Items {
		logger.Info("uploading item", "batch", b.Index, "position", i+1, "of", len(b.Items), "file", item.Name)

		if err := c.uploader.UploadOne(ctx, item); err != nil {
			// Upload faults are invisible downstream; the item surfaces as a
			// verification failure later.
			logger.Warn("upload fault", "file", item.Name, "err", err)
		}

		c.tel.RecordUpload(ctx)

		c.mu.Lock()
		c.snap.Uploaded++
		c.mu.Unlock()
	}

	if !c.enableDownloads {
		c.setPhase(b, PhaseDone)
		c.tel.RecordBatch(ctx)

		return nil
	}

	c.setPhase(b, PhaseIdling)
	c.rotator.Rotate(ctx, b.Tabs(), c.idleWindow)

	c.setPhase(b, PhaseDownloading)

	outcomes, err := c.collector.CollectBatch(ctx, b)
	if err != nil {
		return err
	}

	for _, outcome := range outcomes {
		c.recordOutcome(ctx, b, outcome)
	}

	c.setPhase(b, PhaseClosing)
	c.closeBatchTabs(b)

	c.setPhase(b, PhaseDone)
	c.tel.RecordBatch(ctx)

	return nil
}

// recordOutcome fans one verification result out to the journal, the
// metrics, the notifier and the progress snapshot. None of these sinks may
// stop the run; their failures are logged and dropped.
func (c *Controller) recordOutcome(ctx context.Context, b *batch.Batch, outcome collect.Outcome) {
	logger := logctx.LoggerFromContext(ctx)

	result := storage.OutcomeFailed
	if outcome.Success {
		result = storage.OutcomeSuccess
	}

	c.tel.RecordDownload(ctx, result)

	c.mu.Lock()
	if outcome.Success {
		c.snap.Succeeded++
	} else {
		c.snap.Failed++
	}
	c.mu.Unlock()

	if c.journal != nil {
		err := c.journal.RecordOutcome(storage.OutcomeRecord{
			RunID:        c.runID,
			FileName:     outcome.Item.Name,
			BatchIndex:   b.Index,
			Outcome:      result,
			ArchivedPath: outcome.ArchivedPath,
		})
		if err != nil {
			logger.Error("failed to journal outcome", "file", outcome.Item.Name, "err", err)
		}
	}

	if c.notif != nil && !outcome.Success {
		if err := c.notif.Notify("❌ Download failed for file: " + outcome.Item.Name); err != nil {
			logger.Error("failed to send notification", "file", outcome.Item.Name, "err", err)
		}
	}
}

// closeBatchTabs returns focus to the first batch tab and closes exactly
// one tab per item. Closing a tab shifts the later ones left, so closing at
// a fixed position drains the whole batch.
func (c *Controller) closeBatchTabs(b *batch.Batch) {
	if len(b.Items) == 0 {
		return
	}

	_ = c.driver.FocusTab(batch.FirstTab)

	for range b.Items {
		_ = c.driver.CloseTab()
		c.sleep(c.closeDelay())
	}
}

func (c *Controller) setPhase(b *batch.Batch, phase Phase) {
	c.mu.Lock()
	c.snap.CurrentBatch = b.Index
	c.snap.Phase = phase
	c.mu.Unlock()
}
