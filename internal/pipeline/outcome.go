package pipeline

import (
	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/source"
)

// Status is the terminal state of one pipeline run.
type Status int

const (
	// Delivered means the artifact is ready for handoff.
	Delivered Status = iota
	// Rejected means the requester can correct the input (bad link, too
	// long, too large, no audio track).
	Rejected
	// Failed means an upstream or environment problem; resubmitting later
	// may succeed.
	Failed
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the single terminal value of a pipeline run.
//
// On Delivered, Artifact and Metadata are set and the consumer owns the
// final cleanup: it must call Close after the artifact has been handed off.
// On Rejected and Failed, Err carries the stage error and all temporary
// files are already gone.
type Outcome struct {
	Status   Status
	Artifact artifact.File
	Metadata source.Metadata
	Err      error

	scope *artifact.Scope
}

// Close reclaims the request's temporary files. Idempotent; a no-op for
// outcomes that carried no artifact.
func (o Outcome) Close() error {
	if o.scope == nil {
		return nil
	}
	return o.scope.Close()
}
