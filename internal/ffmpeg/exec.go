package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner runs the converter process and returns its combined output.
// ffmpeg writes its diagnostics to stderr, so both streams are drained into
// one buffer; draining also prevents pipe backpressure from stalling the
// child process.
type Runner interface {
	Run(ctx context.Context, path string, args []string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run executes the command and waits for it, honoring ctx cancellation.
func (ExecRunner) Run(ctx context.Context, path string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}
