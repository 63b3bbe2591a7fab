package ffmpeg

import (
	"context"
	"os/exec"
)

// CommandRunner defines the interface for running external commands.
// This allows mocking exec.Command in tests.
type CommandRunner interface {
	// Run executes a command and returns its combined stdout and stderr,
	// which is where ffmpeg writes its diagnostics.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Output executes a command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec.
type ExecCommandRunner struct{}

// Run executes a command and returns its combined output and any error.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Output executes a command and returns its stdout.
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}
