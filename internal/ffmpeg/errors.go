package ffmpeg

import "errors"

// ErrConverterMissing indicates the ffmpeg binary could not be located or
// started. This is a deployment problem, not a per-video problem, and is
// surfaced to the operator distinctly.
var ErrConverterMissing = errors.New("ffmpeg not found")

// ErrTranscodeFailed indicates ffmpeg ran but did not produce a usable
// output file (non-zero exit, empty destination).
var ErrTranscodeFailed = errors.New("transcode failed")

// ErrTimeout indicates the converter did not finish within the request
// deadline.
var ErrTimeout = errors.New("transcode timed out")
