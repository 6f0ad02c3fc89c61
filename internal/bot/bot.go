// Package bot is the Telegram-facing delivery layer. It parses commands,
// forwards candidate links to the retrieval pipeline, and sends the
// resulting audio back. All decision logic lives in the pipeline; this
// package only translates outcomes into messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/ffmpeg"
	"github.com/alekseyp/ytaudio/internal/pipeline"
	"github.com/alekseyp/ytaudio/internal/source"
)

// Telegram transport limits for audio metadata fields.
const (
	maxTitleRunes  = 64
	maxReasonRunes = 200
)

// Options carries the delivery-layer settings from configuration.
type Options struct {
	RequestTimeout time.Duration
	MaxConcurrent  int64
	AdminChatID    int64
	ConverterInfo  string // shown by /check, e.g. "ffmpeg version 6.1.1"
}

// Bot long-polls Telegram and dispatches one pipeline run per link. Runs
// are bounded by a weighted semaphore so slow downloads never block the
// update loop.
type Bot struct {
	api   *tgbotapi.BotAPI
	pipe  *pipeline.Pipeline
	store *artifact.Store
	sem   *semaphore.Weighted
	opts  Options
	log   *slog.Logger
}

// New creates a Bot around an authorized Telegram API client.
func New(api *tgbotapi.BotAPI, pipe *pipeline.Pipeline, store *artifact.Store, opts Options, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Bot{
		api:   api,
		pipe:  pipe,
		store: store,
		sem:   semaphore.NewWeighted(opts.MaxConcurrent),
		opts:  opts,
		log:   log,
	}
}

// Run consumes updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(msg.Chat.ID, startText)
		case "help":
			b.reply(msg.Chat.ID, helpText)
		case "check":
			b.handleCheck(msg.Chat.ID)
		case "purge":
			b.handlePurge(msg.Chat.ID)
		default:
			b.reply(msg.Chat.ID, "Unknown command. See /help.")
		}
		return
	}

	// Anything that is not a command is treated as a candidate link. The
	// pipeline itself rejects non-links, so no pre-filtering here.
	go b.handleLink(ctx, msg.Chat.ID, msg.Text)
}

// handleLink runs the retrieval pipeline for one message, keeping the
// requester informed through an edited status message.
func (b *Bot) handleLink(ctx context.Context, chatID int64, text string) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer b.sem.Release(1)

	status, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Processing link..."))
	if err != nil {
		b.log.Warn("send status message", "error", err)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()

	notify := func(stage pipeline.Stage, meta source.Metadata) {
		switch stage {
		case pipeline.StageProbed:
			b.edit(chatID, status.MessageID, fmt.Sprintf(
				"🎵 %s\n👤 %s\n⏱ %d:%02d\n\n⬇️ Downloading audio...",
				truncate(meta.Title, maxTitleRunes),
				truncate(meta.Author, maxTitleRunes),
				meta.DurationSeconds/60, meta.DurationSeconds%60))
		case pipeline.StageTranscoding:
			b.edit(chatID, status.MessageID, "🎛 Converting audio...")
		}
	}

	out := b.pipe.Run(runCtx, text, notify)
	defer func() {
		if err := out.Close(); err != nil {
			b.log.Error("artifact cleanup failed", "error", err)
		}
	}()

	switch out.Status {
	case pipeline.Delivered:
		b.deliver(chatID, status.MessageID, out)
	case pipeline.Rejected:
		b.edit(chatID, status.MessageID, "❌ "+truncate(rejectionText(out.Err), maxReasonRunes))
	case pipeline.Failed:
		b.edit(chatID, status.MessageID, "❌ "+truncate(failureText(out.Err), maxReasonRunes))
		if errors.Is(out.Err, ffmpeg.ErrConverterMissing) && b.opts.AdminChatID != 0 {
			b.reply(b.opts.AdminChatID, "⚠️ Converter is missing or broken; audio conversion is down. Check the ffmpeg deployment.")
		}
	}
}

// deliver uploads the artifact with its display metadata.
func (b *Bot) deliver(chatID int64, statusID int, out pipeline.Outcome) {
	b.edit(chatID, statusID, "📤 Uploading audio...")

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(out.Artifact.Path))
	audio.Title = truncate(out.Metadata.Title, maxTitleRunes)
	audio.Performer = truncate(out.Metadata.Author, maxTitleRunes)
	audio.Duration = out.Metadata.DurationSeconds

	if _, err := b.api.Send(audio); err != nil {
		b.log.Error("audio upload failed", "error", err)
		b.edit(chatID, statusID, "❌ Could not upload the audio file. Please try again.")
		return
	}
	b.edit(chatID, statusID, "✅ Done! Audio sent.")
}

func (b *Bot) handleCheck(chatID int64) {
	if b.opts.ConverterInfo == "" {
		b.reply(chatID, "Transcoding is disabled; audio is delivered in its original container.")
		return
	}
	b.reply(chatID, "✅ Converter ready: "+b.opts.ConverterInfo)
}

// handlePurge removes leftover temporary artifacts. Admin only.
func (b *Bot) handlePurge(chatID int64) {
	if b.opts.AdminChatID == 0 || chatID != b.opts.AdminChatID {
		b.reply(chatID, "This command is restricted to the bot operator.")
		return
	}
	if err := b.store.Purge(); err != nil {
		b.log.Error("purge failed", "error", err)
		b.reply(chatID, "❌ Cleanup failed: "+truncate(err.Error(), maxReasonRunes))
		return
	}
	b.reply(chatID, "✅ Temporary files cleaned up.")
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send message", "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Warn("edit message", "error", err)
	}
}
