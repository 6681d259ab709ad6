package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"YQ_ENV" default:"development"`

	HTTPPort    int           `envconfig:"YQ_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"YQ_HTTP_TIMEOUT" default:"15s"`

	DownloadDir     string        `envconfig:"YQ_DOWNLOAD_DIR" default:"./downloads"`
	DownloadTimeout time.Duration `envconfig:"YQ_DOWNLOAD_TIMEOUT" default:"1h"`

	MaxStoredJobs   int `envconfig:"YQ_MAX_STORED_JOBS" default:"100"`
	RecentJobsLimit int `envconfig:"YQ_RECENT_JOBS_LIMIT" default:"50"`

	YtdlpPath   string `envconfig:"YQ_YTDLP_PATH" default:"yt-dlp"`
	YtdlpConfig string `envconfig:"YQ_YTDLP_CONFIG" default:""`

	ShutdownTimeout time.Duration `envconfig:"YQ_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"YQ_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"YQ_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive: %s", c.DownloadTimeout)
	}

	if c.MaxStoredJobs <= 0 {
		return fmt.Errorf("max stored jobs must be positive: %d", c.MaxStoredJobs)
	}

	if c.RecentJobsLimit <= 0 {
		return fmt.Errorf("recent jobs limit must be positive: %d", c.RecentJobsLimit)
	}
	if c.RecentJobsLimit > c.MaxStoredJobs {
		return fmt.Errorf("recent jobs limit %d exceeds stored jobs cap %d", c.RecentJobsLimit, c.MaxStoredJobs)
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}
	if c.YtdlpPath == "" {
		return fmt.Errorf("yt-dlp path cannot be empty")
	}

	return nil
}
