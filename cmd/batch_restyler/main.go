package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/italolelis/batch_restyler/internal/baseline"
	"github.com/italolelis/batch_restyler/internal/collect"
	"github.com/italolelis/batch_restyler/internal/config"
	"github.com/italolelis/batch_restyler/internal/http/rest"
	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/notifier"
	"github.com/italolelis/batch_restyler/internal/orchestrator"
	"github.com/italolelis/batch_restyler/internal/pace"
	"github.com/italolelis/batch_restyler/internal/rotate"
	"github.com/italolelis/batch_restyler/internal/scan"
	"github.com/italolelis/batch_restyler/internal/stage"
	"github.com/italolelis/batch_restyler/internal/storage"
	"github.com/italolelis/batch_restyler/internal/storage/sqlite"
	"github.com/italolelis/batch_restyler/internal/telemetry"
	"github.com/italolelis/batch_restyler/internal/ui/osascript"
	"github.com/italolelis/batch_restyler/internal/upload"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("batch restyler starting...", "log_level", cfg.LogLevel)

	if err := run(logctx.WithLogger(context.Background(), logger), cfg); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	runID := storage.GenerateRunID()

	logger := logctx.LoggerFromContext(ctx).With("run_id", runID)
	ctx = logctx.WithLogger(ctx, logger)

	// =========================================================================
	// Start Outcome Journal
	database, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("journal error: %w", err)
	}
	defer database.Close()

	journal := sqlite.NewOutcomeRepository(database)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New("batch_restyler")
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}

	// =========================================================================
	// Prepare Staging and Baseline
	driver := osascript.NewDriver(cfg.Browser, logger)

	stager := stage.NewStager(cfg.StagingDir)
	if err := stager.Wipe(ctx); err != nil {
		return fmt.Errorf("failed to prepare staging dir: %w", err)
	}

	if _, err := stager.CopyStyle(ctx, cfg.StyleDir); err != nil {
		return fmt.Errorf("failed to prepare style file: %w", err)
	}

	markers := baseline.NewMarkers(cfg.DownloadDir)
	if err := markers.Establish(ctx, cfg.SentinelCount); err != nil {
		return fmt.Errorf("failed to establish baseline: %w", err)
	}

	// =========================================================================
	// Enumerate Input
	items, err := scan.Images(cfg.ImagesDir)
	if err != nil {
		return err
	}

	logger.Info("enumerated input files", "dir", cfg.ImagesDir, "count", len(items))

	// =========================================================================
	// Start Batch Controller
	var notif notifier.Notifier
	if cfg.DiscordWebhookURL != "" {
		notif = &notifier.DiscordNotifier{WebhookURL: cfg.DiscordWebhookURL}
	}

	rotator := rotate.NewScheduler(driver, cfg.TabVisitMaxAge, pace.Uniform(cfg.TabSwitchMin, cfg.TabSwitchMax))
	rotator.OnSwitch = func(int) { tel.RecordTabSwitch(ctx) }

	controller := orchestrator.NewController(orchestrator.Params{
		Driver:          driver,
		Uploader:        upload.NewSequencer(driver, stager, cfg.TargetURL, pace.Uniform(cfg.UploadPacingMin, cfg.UploadPacingMax)),
		Rotator:         rotator,
		Collector:       collect.NewCollector(driver, markers, cfg.DownloadDir, cfg.OutputDir, pace.Uniform(cfg.SettleDelayMin, cfg.SettleDelayMax)),
		Journal:         journal,
		Notifier:        notif,
		Telemetry:       tel,
		RunID:           runID,
		BatchSize:       cfg.BatchSize,
		IdleWindow:      cfg.IdleWindow,
		EnableDownloads: cfg.EnableDownloads,
	})

	// =========================================================================
	// Start Status Service
	server := setupServer(ctx, controller, tel, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("serving status endpoint", "host", cfg.Web.BindAddress)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	// =========================================================================
	// Start Main Loop
	g.Go(func() error {
		defer shutdownServer(ctx, server, cfg.Web.ShutdownTimeout)

		_ = driver.Activate()

		logger.Info("starting first batch shortly", "start_delay", cfg.StartDelay.String())
		time.Sleep(cfg.StartDelay)

		if err := controller.Run(gctx, items); err != nil {
			return err
		}

		markers.Teardown(gctx)

		summary, err := journal.GetSummary(runID)
		if err != nil {
			logger.Error("failed to read run summary", "err", err)

			return nil
		}

		logger.Info("all batches complete",
			"total", summary.Total,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
		)

		return nil
	})

	return g.Wait()
}

// setupServer prepares the read-only status and metrics server.
func setupServer(ctx context.Context, controller *orchestrator.Controller, tel *telemetry.Telemetry, cfg *config.Config) *http.Server {
	r := chi.NewRouter()
	r.Mount("/", rest.NewStatusHandler(controller, tel.PrometheusHandler()).Routes())

	return &http.Server{
		Addr:         cfg.Web.BindAddress,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func shutdownServer(ctx context.Context, server *http.Server, timeout time.Duration) {
	logger := logctx.LoggerFromContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to gracefully shutdown the server", "err", err)

		if err := server.Close(); err != nil {
			logger.Error("could not stop server", "err", err)
		}
	}
}
