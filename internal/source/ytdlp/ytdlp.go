// Package ytdlp implements the extraction backend by shelling out to the
// yt-dlp tool and downloading the direct stream URLs it reports.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/source"
)

// Backend probes via `yt-dlp --dump-json` and fetches the reported direct
// stream URL over plain HTTP. Each Probe issues its handles under a fresh
// token so concurrent requests for the same video stay isolated; the stash
// entry is consumed by Fetch, which keeps handles single-use.
type Backend struct {
	path   string // yt-dlp binary
	client *http.Client

	mu     sync.Mutex
	titles map[string]string // probe token -> title, stashed by Probe for Fetch
}

// New creates a yt-dlp backend using the given binary path.
func New(path string) *Backend {
	if path == "" {
		path = "yt-dlp"
	}
	return &Backend{
		path:   path,
		client: http.DefaultClient,
		titles: make(map[string]string),
	}
}

func (b *Backend) Name() string { return "ytdlp" }

// probeOutput is the subset of yt-dlp's JSON dump the backend consumes.
type probeOutput struct {
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
	Formats  []struct {
		ACodec string  `json:"acodec"`
		VCodec string  `json:"vcodec"`
		ABR    float64 `json:"abr"`
		Ext    string  `json:"ext"`
		URL    string  `json:"url"`
	} `json:"formats"`
}

// Probe runs yt-dlp once and parses its JSON dump.
func (b *Backend) Probe(ctx context.Context, ref source.Reference) (source.Metadata, error) {
	cmd := exec.CommandContext(ctx, b.path,
		"--dump-json",
		"--no-warnings",
		"--no-playlist",
		ref.URL(),
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return source.Metadata{}, fmt.Errorf("%w: yt-dlp: %v: %s", source.ErrExtractionFailed, err, errBuf.String())
	}

	var data probeOutput
	if err := json.Unmarshal(out.Bytes(), &data); err != nil {
		return source.Metadata{}, fmt.Errorf("%w: parse yt-dlp output: %v", source.ErrExtractionFailed, err)
	}

	token := uuid.NewString()

	var streams []source.Stream
	for _, f := range data.Formats {
		if f.ACodec == "" || f.ACodec == "none" {
			continue
		}
		if f.VCodec != "" && f.VCodec != "none" {
			continue // audio-only streams
		}
		if f.URL == "" {
			continue
		}
		streams = append(streams, source.Stream{
			AverageBitrate: int(f.ABR),
			Container:      containerOf(f.Ext),
			Handle:         token + "|" + f.URL,
		})
	}

	b.mu.Lock()
	b.titles[token] = data.Title
	b.mu.Unlock()

	return source.Metadata{
		Title:           data.Title,
		Author:          data.Uploader,
		DurationSeconds: int(data.Duration),
		Streams:         streams,
	}, nil
}

// Fetch downloads the direct stream URL into destDir.
func (b *Backend) Fetch(ctx context.Context, ref source.Reference, stream source.Stream, destDir string) (artifact.File, error) {
	token, streamURL, okHandle := strings.Cut(stream.Handle, "|")
	if !okHandle {
		return artifact.File{}, fmt.Errorf("%w: bad handle", source.ErrStaleStream)
	}

	b.mu.Lock()
	title, ok := b.titles[token]
	delete(b.titles, token)
	b.mu.Unlock()
	if !ok {
		return artifact.File{}, fmt.Errorf("%w: handle for video %s was not issued by a live probe", source.ErrStaleStream, ref.ID())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: %v", source.ErrDownloadFailed, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: %v", source.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return artifact.File{}, fmt.Errorf("%w: HTTP %d from stream URL", source.ErrDownloadFailed, resp.StatusCode)
	}

	dest := filepath.Join(destDir, artifact.SafeName(title, stream.Container.Ext()))
	out, err := os.Create(dest) // #nosec G304 -- dest is inside the request scope
	if err != nil {
		return artifact.File{}, fmt.Errorf("%w: create %s: %v", source.ErrDownloadFailed, dest, err)
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return artifact.File{}, fmt.Errorf("%w: %v", source.ErrDownloadFailed, err)
	}
	if n == 0 {
		_ = os.Remove(dest)
		return artifact.File{}, fmt.Errorf("%w: zero-byte response", source.ErrDownloadFailed)
	}

	return artifact.File{
		Path:      dest,
		SizeBytes: n,
		MimeHint:  "audio/" + stream.Container.String(),
	}, nil
}

// containerOf maps a yt-dlp extension to a container.
func containerOf(ext string) source.Container {
	switch ext {
	case "m4a", "mp4":
		return source.ContainerMP4
	case "webm":
		return source.ContainerWebM
	default:
		return source.ContainerOther
	}
}
