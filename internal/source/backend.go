package source

import (
	"context"

	"github.com/alekseyp/ytaudio/internal/artifact"
)

// Backend abstracts the upstream extraction service. Implementations probe
// video metadata and fetch stream bytes; the pipeline stays identical
// whichever backend configuration selects.
//
// Probe performs exactly one upstream call. Fetch downloads the bytes of a
// stream previously returned by Probe into destDir and reports the created
// file. Stream handles do not survive beyond one Fetch in the request that
// probed them.
type Backend interface {
	Name() string
	Probe(ctx context.Context, ref Reference) (Metadata, error)
	Fetch(ctx context.Context, ref Reference, stream Stream, destDir string) (artifact.File, error)
}
