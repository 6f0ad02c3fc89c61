package source

import "fmt"

// Container identifies the audio container format of a stream.
type Container int

const (
	ContainerOther Container = iota
	ContainerMP4
	ContainerWebM
)

func (c Container) String() string {
	switch c {
	case ContainerMP4:
		return "mp4"
	case ContainerWebM:
		return "webm"
	default:
		return "other"
	}
}

// Ext returns the filename extension for the container.
func (c Container) Ext() string {
	switch c {
	case ContainerMP4:
		return ".m4a"
	case ContainerWebM:
		return ".webm"
	default:
		return ".bin"
	}
}

// Stream describes one downloadable audio-only encoding of a video.
// Handle is opaque and only meaningful to the backend that produced it,
// within the same request.
type Stream struct {
	AverageBitrate int // kbit/s
	Container      Container
	Handle         string
}

// Metadata holds the per-request probe result. It is fetched fresh for
// every request and never cached.
type Metadata struct {
	Title           string
	Author          string
	DurationSeconds int
	Streams         []Stream
}

// SelectStream picks the single best audio stream. Streams in the mp4
// container are preferred over all others; within the preferred container
// the highest average bitrate wins. If no mp4 stream exists, the highest
// bitrate stream of any container is used. Ties keep the first-encountered
// stream, so selection is deterministic for a given probe order.
func SelectStream(streams []Stream) (Stream, error) {
	if len(streams) == 0 {
		return Stream{}, fmt.Errorf("%w: probe returned no candidates", ErrNoAudio)
	}

	best := -1
	bestAny := 0
	for i, s := range streams {
		if s.Container == ContainerMP4 {
			if best < 0 || s.AverageBitrate > streams[best].AverageBitrate {
				best = i
			}
		}
		if s.AverageBitrate > streams[bestAny].AverageBitrate {
			bestAny = i
		}
	}

	if best >= 0 {
		return streams[best], nil
	}
	return streams[bestAny], nil
}
