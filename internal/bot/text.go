package bot

import (
	"errors"

	"github.com/alekseyp/ytaudio/internal/ffmpeg"
	"github.com/alekseyp/ytaudio/internal/pipeline"
	"github.com/alekseyp/ytaudio/internal/source"
)

const startText = `👋 Hi! Send me a YouTube link and I will reply with the audio track.

Supported links:
• https://youtube.com/watch?v=...
• https://youtu.be/...
• https://youtube.com/shorts/...

Limits: public videos only, capped duration and file size.
See /help for details.`

const helpText = `📖 How to use this bot:

1. Send a YouTube video link
2. Wait while the audio is retrieved
3. Receive the audio file

Commands:
/start — welcome message
/help — this help
/check — converter status
/purge — clean temporary files (operator)

If a video fails, try another link; upstream errors are usually transient.`

// rejectionText maps user-correctable errors to requester-facing text.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, source.ErrNotAReference):
		return "That does not look like a YouTube link. Send a watch, youtu.be, or shorts link."
	case errors.Is(err, pipeline.ErrDurationExceeded):
		return "The video is too long: " + err.Error()
	case errors.Is(err, pipeline.ErrSizeExceeded):
		return "The audio file is too large to send: " + err.Error()
	case errors.Is(err, source.ErrNoAudio):
		return "This video has no separate audio track."
	default:
		return err.Error()
	}
}

// failureText maps environment/upstream errors to requester-facing text.
func failureText(err error) string {
	switch {
	case errors.Is(err, ffmpeg.ErrConverterMissing):
		return "Audio conversion is temporarily unavailable. The operator has been notified."
	case errors.Is(err, source.ErrExtractionFailed):
		return "Could not read the video. It may be private, removed, or region-locked. Try again or send a different link."
	case errors.Is(err, source.ErrDownloadFailed):
		return "The download failed. Please try again."
	case errors.Is(err, ffmpeg.ErrTranscodeFailed):
		return "Audio conversion failed for this video. Try a different one."
	default:
		return "Something went wrong: " + err.Error()
	}
}

// truncate caps s at n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
