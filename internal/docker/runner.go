package docker

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// RunOptions configures a single external process invocation. Nil streams
// are discarded (stdout/stderr) or empty (stdin), as with os/exec.
type RunOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessRunner spawns an external process and waits for it.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	// Run executes name with args and returns its exit code.
	//
	// A non-zero exit is reported through the exit code with a nil error.
	// The error is reserved for failures to start or wait for the process
	// (e.g., the executable is not on PATH, or ctx was cancelled before start).
	Run(ctx context.Context, name string, args []string, opts RunOptions) (int, error)
}

// ExecRunner implements ProcessRunner with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements ProcessRunner.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts RunOptions) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal, which
		// includes cancellation through ctx.
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, ctxErr
		}
		return -1, err
	}

	return -1, err
}
