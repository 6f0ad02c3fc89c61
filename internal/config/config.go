// Package config loads the bot configuration from a YAML file with
// environment variable overrides. Precedence: defaults, then file values,
// then environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvToken       = "TELEGRAM_BOT_TOKEN"
	EnvBackend     = "YTAUDIO_BACKEND"
	EnvFFmpegPath  = "YTAUDIO_FFMPEG_PATH"
	EnvYTDLPPath   = "YTAUDIO_YTDLP_PATH"
	EnvTempDir     = "YTAUDIO_TEMP_DIR"
	EnvAdminChatID = "YTAUDIO_ADMIN_CHAT_ID"
	EnvLogLevel    = "YTAUDIO_LOG_LEVEL"
)

// Backend names accepted by the `backend` setting.
const (
	BackendNative = "native"
	BackendYTDLP  = "ytdlp"
)

// Config is the explicit configuration surface of the whole process. It is
// constructed once at startup and passed in; nothing reads it globally.
type Config struct {
	Token       string `yaml:"telegram-bot-token"`
	AdminChatID int64  `yaml:"admin-chat-id"`

	Backend   string `yaml:"backend"`
	YTDLPPath string `yaml:"ytdlp-path"`

	Transcode     bool   `yaml:"transcode"`
	FFmpegPath    string `yaml:"ffmpeg-path"`
	TargetCodec   string `yaml:"target-codec"`
	TargetBitrate string `yaml:"target-bitrate"`

	MaxDurationSeconds    int    `yaml:"max-duration-seconds"`
	MaxSizeBytes          int64  `yaml:"max-size-bytes"`
	RequestTimeoutSeconds int    `yaml:"request-timeout-seconds"`
	MaxConcurrent         int64  `yaml:"max-concurrent"`
	TempDir               string `yaml:"temp-dir"`

	LogLevel string `yaml:"log-level"`
}

// Default returns the built-in configuration. The duration and size
// ceilings follow the Telegram bot transport limits the delivery layer
// lives with: 20 minutes and 50 MB.
func Default() Config {
	return Config{
		Backend:               BackendNative,
		Transcode:             true,
		TargetCodec:           "libmp3lame",
		TargetBitrate:         "128k",
		MaxDurationSeconds:    1200,
		MaxSizeBytes:          50_000_000,
		RequestTimeoutSeconds: 300,
		MaxConcurrent:         4,
		LogLevel:              "info",
	}
}

// Load reads path (if it exists) over the defaults and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set. A
// malformed value is an error rather than a silent skip, so a typo cannot
// quietly drop the admin features.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv(EnvYTDLPPath); v != "" {
		cfg.YTDLPPath = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		cfg.TempDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvAdminChatID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s=%q: %w", EnvAdminChatID, v, err)
		}
		cfg.AdminChatID = id
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Backend != BackendNative && c.Backend != BackendYTDLP {
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendNative, BackendYTDLP)
	}
	if c.MaxDurationSeconds <= 0 {
		return fmt.Errorf("max-duration-seconds must be positive, got %d", c.MaxDurationSeconds)
	}
	if c.MaxSizeBytes <= 0 {
		return fmt.Errorf("max-size-bytes must be positive, got %d", c.MaxSizeBytes)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request-timeout-seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max-concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.Transcode && c.TargetCodec == "" {
		return fmt.Errorf("target-codec must be set when transcode is enabled")
	}
	return nil
}

// TargetExt returns the output filename extension for the configured codec.
func (c Config) TargetExt() string {
	switch c.TargetCodec {
	case "libmp3lame", "mp3":
		return ".mp3"
	case "aac":
		return ".m4a"
	default:
		return ".audio"
	}
}
