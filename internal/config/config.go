// Package config provides configuration for the reelsmith server.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort            = 8790
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".reelsmith"
	DefaultAuthToken       = "changeme"
	DefaultFFmpegBin       = "ffmpeg"
	DefaultWhisperBin      = "whisper-cli"
	DefaultStageTimeout    = 600 * time.Second
	DefaultDownloadTimeout = 120 * time.Second

	// Environment variable names
	EnvPort              = "REELSMITH_PORT"
	EnvLogLevel          = "REELSMITH_LOG_LEVEL"
	EnvDataDir           = "REELSMITH_DATA_DIR"
	EnvAuthToken         = "REELSMITH_AUTH_TOKEN"
	EnvWebhookURL        = "REELSMITH_WEBHOOK_URL"
	EnvLegacyCallbackURL = "REELSMITH_LEGACY_CALLBACK_URL"
	EnvFFmpegBin         = "REELSMITH_FFMPEG_BIN"
	EnvWhisperBin        = "REELSMITH_WHISPER_BIN"
	EnvWhisperModel      = "REELSMITH_WHISPER_MODEL"
	EnvStageTimeout      = "REELSMITH_STAGE_TIMEOUT"
	EnvDownloadTimeout   = "REELSMITH_DOWNLOAD_TIMEOUT"
)

// EnvConfig reads configuration from environment variables once at startup.
// Components receive values from it at construction time; nothing reads the
// environment after Load returns.
type EnvConfig struct {
	port              int
	logLevel          string
	dataDir           string
	authToken         string
	webhookURL        string
	legacyCallbackURL string
	ffmpegBin         string
	whisperBin        string
	whisperModel      string
	stageTimeout      time.Duration
	downloadTimeout   time.Duration
}

// Load creates an EnvConfig with defaults and environment variable overrides.
func Load() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		authToken:       DefaultAuthToken,
		ffmpegBin:       DefaultFFmpegBin,
		whisperBin:      DefaultWhisperBin,
		stageTimeout:    DefaultStageTimeout,
		downloadTimeout: DefaultDownloadTimeout,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	if tok := os.Getenv(EnvAuthToken); tok != "" {
		cfg.authToken = tok
	}

	cfg.webhookURL = os.Getenv(EnvWebhookURL)
	cfg.legacyCallbackURL = os.Getenv(EnvLegacyCallbackURL)

	if b := os.Getenv(EnvFFmpegBin); b != "" {
		cfg.ffmpegBin = b
	}
	if b := os.Getenv(EnvWhisperBin); b != "" {
		cfg.whisperBin = b
	}
	cfg.whisperModel = os.Getenv(EnvWhisperModel)

	var err error
	if cfg.stageTimeout, err = timeoutFromEnv(EnvStageTimeout, DefaultStageTimeout); err != nil {
		return nil, err
	}
	if cfg.downloadTimeout, err = timeoutFromEnv(EnvDownloadTimeout, DefaultDownloadTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func timeoutFromEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number of seconds", name)
	}
	return time.Duration(secs) * time.Second, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// WorkDir returns the directory job workspaces are created under
func (c *EnvConfig) WorkDir() string {
	return filepath.Join(c.dataDir, "work")
}

// AuthToken returns the shared secret inbound requests must present
func (c *EnvConfig) AuthToken() string {
	return c.authToken
}

// WebhookURL returns the primary result webhook endpoint, if configured
func (c *EnvConfig) WebhookURL() string {
	return c.webhookURL
}

// LegacyCallbackURL returns the JSON-only fallback endpoint for failure
// notices, if configured
func (c *EnvConfig) LegacyCallbackURL() string {
	return c.legacyCallbackURL
}

func (c *EnvConfig) FFmpegBin() string {
	return c.ffmpegBin
}

func (c *EnvConfig) WhisperBin() string {
	return c.whisperBin
}

func (c *EnvConfig) WhisperModel() string {
	return c.whisperModel
}

// StageTimeout bounds each external tool invocation
func (c *EnvConfig) StageTimeout() time.Duration {
	return c.stageTimeout
}

// DownloadTimeout bounds the source acquisition transfer
func (c *EnvConfig) DownloadTimeout() time.Duration {
	return c.downloadTimeout
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
