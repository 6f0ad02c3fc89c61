package pipeline

import "errors"

// ErrDurationExceeded indicates the video is longer than the configured
// ceiling. Checked before any download happens.
var ErrDurationExceeded = errors.New("video too long")

// ErrSizeExceeded indicates the final artifact is larger than the configured
// byte ceiling. The artifact is removed before the error is returned.
var ErrSizeExceeded = errors.New("audio file too large")
