package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/alekseyp/ytaudio/internal/artifact"
)

// Transcoder normalizes fetched audio into the target codec by invoking the
// external converter process.
type Transcoder struct {
	path    string // resolved converter binary
	codec   string // e.g. libmp3lame
	bitrate string // e.g. 128k
	run     Runner
}

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithRunner sets the process runner (for testing).
func WithRunner(r Runner) TranscoderOption {
	return func(t *Transcoder) { t.run = r }
}

// NewTranscoder creates a Transcoder for a resolved converter path.
func NewTranscoder(path, codec, bitrate string, opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		path:    path,
		codec:   codec,
		bitrate: bitrate,
		run:     ExecRunner{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode converts src into destPath and returns the new artifact.
// Success requires a zero exit status and a non-empty destination file; the
// source file is removed in the same step so it cannot leak. Any other
// outcome wraps ErrTranscodeFailed, or ErrConverterMissing when the binary
// itself could not be invoked, or ErrTimeout when the request deadline
// expired mid-conversion.
func (t *Transcoder) Transcode(ctx context.Context, src artifact.File, destPath string) (artifact.File, error) {
	args := []string{
		"-y",
		"-i", src.Path,
		"-vn",
		"-acodec", t.codec,
		"-b:a", t.bitrate,
		"-ac", "2",
		"-ar", "44100",
		destPath,
	}

	out, err := t.run.Run(ctx, t.path, args)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return artifact.File{}, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return artifact.File{}, fmt.Errorf("%w: %q: %v", ErrConverterMissing, t.path, err)
		default:
			return artifact.File{}, fmt.Errorf("%w: %v: %s", ErrTranscodeFailed, err, tail(out, 200))
		}
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: no output file: %v", ErrTranscodeFailed, err)
	}
	if info.Size() == 0 {
		_ = os.Remove(destPath)
		return artifact.File{}, fmt.Errorf("%w: empty output file", ErrTranscodeFailed)
	}

	// The pre-transcode artifact is owned by this step and must not leak.
	if err := os.Remove(src.Path); err != nil && !os.IsNotExist(err) {
		return artifact.File{}, fmt.Errorf("remove source after transcode: %w", err)
	}

	return artifact.File{
		Path:      destPath,
		SizeBytes: info.Size(),
		MimeHint:  codecMime(t.codec),
	}, nil
}

// codecMime maps the target codec to a delivery MIME hint.
func codecMime(codec string) string {
	switch codec {
	case "libmp3lame", "mp3":
		return "audio/mpeg"
	case "aac":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

// tail returns the last n bytes of converter output for error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
