package source

import "errors"

// ErrNotAReference indicates the input text is not a recognized video link.
var ErrNotAReference = errors.New("not a video link")

// ErrExtractionFailed indicates the upstream extraction service could not
// provide metadata (video missing, private, geo-blocked, network failure,
// malformed response). The cause is preserved in the wrapped message.
var ErrExtractionFailed = errors.New("extraction failed")

// ErrNoAudio indicates the video exposes no audio-only streams.
var ErrNoAudio = errors.New("no audio stream available")

// ErrDownloadFailed indicates the selected stream could not be fetched to disk.
var ErrDownloadFailed = errors.New("download failed")

// ErrStaleStream indicates a stream handle was used outside the probe that
// produced it. Stream handles are valid for one Fetch within one request.
var ErrStaleStream = errors.New("stale stream handle")
