// Package cli wires configuration, backends, and the pipeline into cobra
// subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/bot"
	"github.com/alekseyp/ytaudio/internal/config"
	"github.com/alekseyp/ytaudio/internal/ffmpeg"
	"github.com/alekseyp/ytaudio/internal/pipeline"
	"github.com/alekseyp/ytaudio/internal/source"
	"github.com/alekseyp/ytaudio/internal/source/native"
	"github.com/alekseyp/ytaudio/internal/source/ytdlp"
)

// ErrTokenMissing indicates no Telegram bot token was configured.
var ErrTokenMissing = errors.New("telegram bot token is not set")

// defaultConfigPath is used when --config is not given.
const defaultConfigPath = "config.yaml"

// RunCmd starts the bot: long-polls Telegram and serves retrieval requests
// until interrupted.
func RunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				return fmt.Errorf("%w: set telegram-bot-token in %s or %s in the environment",
					ErrTokenMissing, configPath, config.EnvToken)
			}

			log := newLogger(cfg.LogLevel)

			store, err := artifact.NewStore(cfg.TempDir)
			if err != nil {
				return err
			}

			backend := newBackend(cfg)

			var (
				transcoder    pipeline.Transcoder
				converterInfo string
			)
			if cfg.Transcode {
				// Resolve and verify once at startup so a broken ffmpeg
				// deployment refuses to serve instead of failing per video.
				path, err := ffmpeg.NewResolver().Resolve(cfg.FFmpegPath)
				if err != nil {
					return err
				}
				converterInfo, err = ffmpeg.Verify(cmd.Context(), ffmpeg.ExecRunner{}, path)
				if err != nil {
					return err
				}
				transcoder = ffmpeg.NewTranscoder(path, cfg.TargetCodec, cfg.TargetBitrate)
				log.Info("converter ready", "path", path, "version", converterInfo)
			}

			pipe := pipeline.New(backend, store, transcoder, pipeline.Config{
				MaxDurationSeconds: cfg.MaxDurationSeconds,
				MaxSizeBytes:       cfg.MaxSizeBytes,
				TargetExt:          cfg.TargetExt(),
			}, log)

			api, err := tgbotapi.NewBotAPI(cfg.Token)
			if err != nil {
				return fmt.Errorf("connect to Telegram: %w", err)
			}

			b := bot.New(api, pipe, store, bot.Options{
				RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
				MaxConcurrent:  cfg.MaxConcurrent,
				AdminChatID:    cfg.AdminChatID,
				ConverterInfo:  converterInfo,
			}, log)

			if err := b.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

// PurgeCmd removes any temporary artifacts left behind by abnormal process
// termination. Safe to run repeatedly.
func PurgeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove leftover temporary files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			store, err := artifact.NewStore(cfg.TempDir)
			if err != nil {
				return err
			}
			if err := store.Purge(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", store.Root())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

// CheckCmd verifies the converter deployment and prints its version.
func CheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the audio converter is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			path, err := ffmpeg.NewResolver().Resolve(cfg.FFmpegPath)
			if err != nil {
				return err
			}
			version, err := ffmpeg.Verify(cmd.Context(), ffmpeg.ExecRunner{}, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", path, version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

// newBackend selects the extraction backend from configuration.
func newBackend(cfg config.Config) source.Backend {
	if cfg.Backend == config.BackendYTDLP {
		return ytdlp.New(cfg.YTDLPPath)
	}
	return native.New()
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
