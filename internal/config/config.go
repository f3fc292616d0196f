package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config struct for environment variables. Every timing knob the run uses
// lives here so tests can construct a Config with fixed values instead of
// relying on the defaults.
type Config struct {
	TargetURL string `envconfig:"TARGET_URL" required:"true"`
	Browser   string `envconfig:"BROWSER" default:"Google Chrome"`

	ImagesDir   string `envconfig:"IMAGES_DIR" default:"images"`
	StyleDir    string `envconfig:"STYLE_DIR" default:"style"`
	StagingDir  string `envconfig:"STAGING_DIR" default:"tmp_upload"`
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"out"`
	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"~/Downloads"`

	BatchSize       int           `envconfig:"BATCH_SIZE" default:"3"`
	IdleWindow      time.Duration `envconfig:"IDLE_WINDOW" default:"180s"`
	TabSwitchMin    time.Duration `envconfig:"TAB_SWITCH_MIN" default:"3s"`
	TabSwitchMax    time.Duration `envconfig:"TAB_SWITCH_MAX" default:"7s"`
	TabVisitMaxAge  time.Duration `envconfig:"TAB_VISIT_MAX_AGE" default:"30s"`
	SettleDelayMin  time.Duration `envconfig:"SETTLE_DELAY_MIN" default:"6s"`
	SettleDelayMax  time.Duration `envconfig:"SETTLE_DELAY_MAX" default:"8s"`
	UploadPacingMin time.Duration `envconfig:"UPLOAD_PACING_MIN" default:"9s"`
	UploadPacingMax time.Duration `envconfig:"UPLOAD_PACING_MAX" default:"16s"`
	StartDelay      time.Duration `envconfig:"START_DELAY" default:"5s"`
	SentinelCount   int           `envconfig:"SENTINEL_COUNT" default:"20"`
	EnableDownloads bool          `envconfig:"ENABLE_DOWNLOADS" default:"true"`

	LogLevel          string `envconfig:"LOG_LEVEL" default:"INFO"`
	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
	DBPath            string `envconfig:"DB_PATH" default:"outcomes.db"`

	Web struct {
		BindAddress     string        `split_words:"true" default:"127.0.0.1:9210"`
		ReadTimeout     time.Duration `split_words:"true" default:"30s"`
		WriteTimeout    time.Duration `split_words:"true" default:"30s"`
		IdleTimeout     time.Duration `split_words:"true" default:"5s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	}
}

// LoadConfig reads environment variables and populates the Config struct.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	if cfg.TabSwitchMax < cfg.TabSwitchMin {
		return nil, fmt.Errorf("tab switch delay range is inverted: %s > %s", cfg.TabSwitchMin, cfg.TabSwitchMax)
	}

	if cfg.SettleDelayMax < cfg.SettleDelayMin {
		return nil, fmt.Errorf("settle delay range is inverted: %s > %s", cfg.SettleDelayMin, cfg.SettleDelayMax)
	}

	cfg.DownloadDir = expandHome(cfg.DownloadDir)

	return &cfg, nil
}

// expandHome resolves a leading "~" against the current user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return path
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
