// Package pipeline sequences the audio retrieval state machine: classify,
// probe, duration gate, stream selection, fetch, transcode, size gate. Each
// run produces exactly one terminal Outcome and leaves no temporary files
// behind on rejection or failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/alekseyp/ytaudio/internal/artifact"
	"github.com/alekseyp/ytaudio/internal/ffmpeg"
	"github.com/alekseyp/ytaudio/internal/source"
)

// Stage identifies a progress notification point during a run.
type Stage int

const (
	// StageProbed fires after metadata arrived and passed the duration gate.
	StageProbed Stage = iota
	// StageFetching fires before the download starts.
	StageFetching
	// StageTranscoding fires before the converter runs.
	StageTranscoding
)

// Progress receives stage notifications during a run. Metadata is populated
// from StageProbed on. Implementations must return quickly. May be nil.
type Progress func(stage Stage, meta source.Metadata)

// Transcoder converts a fetched artifact into the target codec.
// *ffmpeg.Transcoder is the production implementation.
type Transcoder interface {
	Transcode(ctx context.Context, src artifact.File, destPath string) (artifact.File, error)
}

// Config holds the constraint and output parameters of the pipeline.
type Config struct {
	MaxDurationSeconds int
	MaxSizeBytes       int64
	TargetExt          string // extension of transcoded output, e.g. ".mp3"
}

// Pipeline orchestrates one retrieval per Run call. Safe for concurrent use;
// runs share no mutable state beyond the uniquely-named temp namespace.
type Pipeline struct {
	backend    source.Backend
	store      *artifact.Store
	transcoder Transcoder // nil disables the transcode stage
	cfg        Config
	log        *slog.Logger
}

// New creates a Pipeline. transcoder may be nil, in which case the fetched
// container is delivered as-is.
func New(backend source.Backend, store *artifact.Store, transcoder Transcoder, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		backend:    backend,
		store:      store,
		transcoder: transcoder,
		cfg:        cfg,
		log:        log,
	}
}

// Run executes the full state machine for one requester input and returns
// its terminal outcome. Temporary files are reclaimed on every path; for
// Delivered outcomes the caller must invoke Outcome.Close after handing the
// artifact off.
func (p *Pipeline) Run(ctx context.Context, text string, notify Progress) Outcome {
	if notify == nil {
		notify = func(Stage, source.Metadata) {}
	}

	ref, err := source.Classify(text)
	if err != nil {
		return Outcome{Status: Rejected, Err: err}
	}

	log := p.log.With("video", ref.ID(), "backend", p.backend.Name())

	meta, err := p.backend.Probe(ctx, ref)
	if err != nil {
		log.Warn("probe failed", "error", err)
		return p.failed(ctx, err)
	}

	if p.cfg.MaxDurationSeconds > 0 && meta.DurationSeconds > p.cfg.MaxDurationSeconds {
		return Outcome{Status: Rejected, Err: fmt.Errorf(
			"%w: %ds exceeds the %ds limit",
			ErrDurationExceeded, meta.DurationSeconds, p.cfg.MaxDurationSeconds)}
	}
	notify(StageProbed, meta)

	stream, err := source.SelectStream(meta.Streams)
	if err != nil {
		return Outcome{Status: Rejected, Err: err}
	}
	log.Info("stream selected",
		"container", stream.Container.String(),
		"bitrate_kbps", stream.AverageBitrate,
		"duration_s", meta.DurationSeconds)

	scope, err := p.store.NewScope()
	if err != nil {
		return p.failed(ctx, err)
	}
	delivered := false
	defer func() {
		if !delivered {
			if cerr := scope.Close(); cerr != nil {
				log.Error("scope cleanup failed", "error", cerr)
			}
		}
	}()

	notify(StageFetching, meta)
	fetched, err := p.backend.Fetch(ctx, ref, stream, scope.Dir())
	if err != nil {
		log.Warn("fetch failed", "error", err)
		return p.failed(ctx, err)
	}
	log.Info("fetched", "bytes", fetched.SizeBytes)

	final := fetched
	if p.transcoder != nil {
		notify(StageTranscoding, meta)
		dest := filepath.Join(scope.Dir(), artifact.SafeName(meta.Title, p.cfg.TargetExt))
		if dest == fetched.Path {
			dest = filepath.Join(scope.Dir(), artifact.SafeName("converted "+meta.Title, p.cfg.TargetExt))
		}
		final, err = p.transcoder.Transcode(ctx, fetched, dest)
		if err != nil {
			if errors.Is(err, ffmpeg.ErrConverterMissing) {
				// Deployment problem, not a per-video problem.
				log.Error("converter missing", "error", err)
			} else {
				log.Warn("transcode failed", "error", err)
			}
			return p.failed(ctx, err)
		}
		log.Info("transcoded", "bytes", final.SizeBytes)
	}

	if p.cfg.MaxSizeBytes > 0 && final.SizeBytes > p.cfg.MaxSizeBytes {
		return Outcome{Status: Rejected, Err: fmt.Errorf(
			"%w: %d bytes exceeds the %d byte limit",
			ErrSizeExceeded, final.SizeBytes, p.cfg.MaxSizeBytes)}
	}

	delivered = true
	return Outcome{
		Status:   Delivered,
		Artifact: final,
		Metadata: meta,
		scope:    scope,
	}
}

// failed builds the Failed outcome, folding a request timeout into a
// distinct cause so the requester sees it is transient.
func (p *Pipeline) failed(ctx context.Context, err error) Outcome {
	if ctx.Err() != nil {
		err = fmt.Errorf("request timed out: %w", err)
	}
	return Outcome{Status: Failed, Err: err}
}
