package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Environment variable consulted when no path is configured.
const envFFmpegPath = "FFMPEG_PATH"

// Resolver locates the ffmpeg binary. Lookups are injectable so resolution
// precedence can be tested without a real binary.
type Resolver struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGetenv sets the environment lookup function (for testing).
func WithGetenv(fn func(string) string) ResolverOption {
	return func(r *Resolver) { r.getenv = fn }
}

// WithLookPath sets the PATH lookup function (for testing).
func WithLookPath(fn func(string) (string, error)) ResolverOption {
	return func(r *Resolver) { r.lookPath = fn }
}

// WithStat sets the file stat function (for testing).
func WithStat(fn func(string) (os.FileInfo, error)) ResolverOption {
	return func(r *Resolver) { r.stat = fn }
}

// NewResolver creates a Resolver with production defaults.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. configured path (error if set but the binary is absent)
//  2. FFMPEG_PATH environment variable (error if set but absent)
//  3. system PATH
//
// A configured-but-missing binary is an error rather than a fallthrough so
// a broken deployment fails at startup instead of silently picking a
// different ffmpeg.
func (r *Resolver) Resolve(configured string) (string, error) {
	if configured != "" {
		if _, err := r.stat(configured); err != nil {
			return "", fmt.Errorf("%w: configured path %q: %v", ErrConverterMissing, configured, err)
		}
		return configured, nil
	}

	if envPath := r.getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found", ErrConverterMissing, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.lookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: not configured and not on PATH", ErrConverterMissing)
}

// Verify runs `<path> -version` and reports the version line. Used once at
// startup so a missing converter shows up as a deployment problem before
// any request is served.
func Verify(ctx context.Context, runner Runner, path string) (string, error) {
	out, err := runner.Run(ctx, path, []string{"-version"})
	if err != nil {
		return "", fmt.Errorf("%w: %q did not run: %v", ErrConverterMissing, path, err)
	}
	version := out
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		version = out[:i]
	}
	return strings.TrimSpace(version), nil
}
