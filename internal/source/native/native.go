// Package native implements the extraction backend on top of the in-process
// YouTube client, with no external tools required.
package native

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kkdai/youtube/v2"

	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/source"
)

// Backend probes and fetches through github.com/kkdai/youtube.
//
// Each Probe stashes its video under a fresh token carried in the stream
// handles it issues, so Fetch can resolve the itag without a second upstream
// call. Keying by token rather than video ID keeps concurrent requests for
// the same video isolated; the entry is consumed by Fetch, which keeps
// handles single-use.
type Backend struct {
	client youtube.Client

	mu     sync.Mutex
	probed map[string]*youtube.Video
}

// New creates the native backend.
func New() *Backend {
	return &Backend{probed: make(map[string]*youtube.Video)}
}

func (b *Backend) Name() string { return "native" }

// Probe performs one upstream metadata call and lists the audio-only
// streams of the video.
func (b *Backend) Probe(ctx context.Context, ref source.Reference) (source.Metadata, error) {
	video, err := b.client.GetVideoContext(ctx, ref.URL())
	if err != nil {
		return source.Metadata{}, fmt.Errorf("%w: %v", source.ErrExtractionFailed, err)
	}

	token := uuid.NewString()

	var streams []source.Stream
	for _, f := range video.Formats {
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		streams = append(streams, source.Stream{
			AverageBitrate: bitrateKbps(f),
			Container:      containerOf(f.MimeType),
			Handle:         token + "|" + strconv.Itoa(f.ItagNo),
		})
	}

	b.mu.Lock()
	b.probed[token] = video
	b.mu.Unlock()

	return source.Metadata{
		Title:           video.Title,
		Author:          video.Author,
		DurationSeconds: int(video.Duration.Seconds()),
		Streams:         streams,
	}, nil
}

// Fetch downloads the bytes of a stream returned by Probe into destDir.
func (b *Backend) Fetch(ctx context.Context, ref source.Reference, stream source.Stream, destDir string) (artifact.File, error) {
	token, rest, ok := strings.Cut(stream.Handle, "|")
	if !ok {
		return artifact.File{}, fmt.Errorf("%w: bad handle %q", source.ErrStaleStream, stream.Handle)
	}

	b.mu.Lock()
	video := b.probed[token]
	delete(b.probed, token)
	b.mu.Unlock()
	if video == nil {
		return artifact.File{}, fmt.Errorf("%w: handle for video %s was not issued by a live probe", source.ErrStaleStream, ref.ID())
	}

	itag, err := strconv.Atoi(rest)
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: bad handle %q", source.ErrStaleStream, stream.Handle)
	}

	var format *youtube.Format
	for i := range video.Formats {
		if video.Formats[i].ItagNo == itag {
			format = &video.Formats[i]
			break
		}
	}
	if format == nil {
		return artifact.File{}, fmt.Errorf("%w: itag %d not in probed formats", source.ErrStaleStream, itag)
	}

	reader, _, err := b.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: open stream: %v", source.ErrDownloadFailed, err)
	}
	defer func() { _ = reader.Close() }()

	dest := filepath.Join(destDir, artifact.SafeName(video.Title, stream.Container.Ext()))
	out, err := os.Create(dest) // #nosec G304 -- dest is inside the request scope
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: create %s: %v", source.ErrDownloadFailed, dest, err)
	}

	n, err := io.Copy(out, reader)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return artifact.File{}, fmt.Errorf("%w: %v", source.ErrDownloadFailed, err)
	}
	if n == 0 {
		_ = os.Remove(dest)
		return artifact.File{}, fmt.Errorf("%w: zero-byte stream", source.ErrDownloadFailed)
	}

	return artifact.File{
		Path:      dest,
		SizeBytes: n,
		MimeHint:  "audio/" + stream.Container.String(),
	}, nil
}

// containerOf maps a MIME type like "audio/mp4; codecs=..." to a container.
func containerOf(mimeType string) source.Container {
	mime, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(mime) {
	case "audio/mp4":
		return source.ContainerMP4
	case "audio/webm":
		return source.ContainerWebM
	default:
		return source.ContainerOther
	}
}

// bitrateKbps reports the stream bitrate in kbit/s, preferring the average
// bitrate when the upstream provides it.
func bitrateKbps(f youtube.Format) int {
	br := f.AverageBitrate
	if br == 0 {
		br = f.Bitrate
	}
	return br / 1000
}
