package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Lifecycle runs the three docker steps of a java-in-docker run. Steps are
// executed one at a time and each waits for its process to exit, because
// every step changes daemon state the next one depends on.
type Lifecycle struct {
	runner ProcessRunner
	logger *log.Logger

	// Dir is the working directory of every docker process, normally the
	// project directory so relative compose files resolve.
	Dir string

	// Stdin, Stdout and Stderr are attached to the application container
	// by Run. They default to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// BeforeRun, when set, is called after the service has been stopped and
	// before the application container starts.
	BeforeRun func(ctx context.Context)
}

// NewLifecycle creates a Lifecycle that spawns processes through runner
// and reports captured output through logger.
func NewLifecycle(runner ProcessRunner, logger *log.Logger, dir string) *Lifecycle {
	return &Lifecycle{
		runner: runner,
		logger: logger,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// captured is the outcome of a process whose output was buffered.
type captured struct {
	args     []string
	exitCode int
	stdout   string
	stderr   string
}

// failure converts a captured non-zero exit into an ExternalProcessFailure.
func (c captured) failure() *model.ExternalProcessFailure {
	return &model.ExternalProcessFailure{
		Program:  Program,
		Args:     c.args,
		ExitCode: c.exitCode,
		Stderr:   c.stderr,
	}
}

// capture runs docker with args, buffering stdout and stderr.
func (l *Lifecycle) capture(ctx context.Context, args []string) (captured, error) {
	var stdout, stderr bytes.Buffer

	l.logger.Debug("Commandline", "cmd", commandLine(args))

	code, err := l.runner.Run(ctx, Program, args, RunOptions{
		Dir:    l.Dir,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return captured{}, fmt.Errorf("failed to run %s: %w", commandLine(args), err)
	}

	return captured{
		args:     args,
		exitCode: code,
		stdout:   stdout.String(),
		stderr:   stderr.String(),
	}, nil
}

// report surfaces captured output: stdout at info level, stderr at error level.
func (l *Lifecycle) report(c captured) {
	if out := strings.TrimRight(c.stdout, "\n"); out != "" {
		l.logger.Info(out)
	}
	if errOut := strings.TrimRight(c.stderr, "\n"); errOut != "" {
		l.logger.Error(errOut)
	}
}

// RemoveContainer force-removes the named container.
//
// A container that does not exist is not an error: when docker fails with
// exactly the daemon's "No such container" message the removal counts as
// done. Any other failure is logged and returned as an
// *model.ExternalProcessFailure.
func (l *Lifecycle) RemoveContainer(ctx context.Context, containerName string) error {
	c, err := l.capture(ctx, BuildRemoveArgs(containerName))
	if err != nil {
		return err
	}

	if c.exitCode == 0 {
		l.logger.Debug("Removed container", "container", containerName)
		return nil
	}

	if c.stderr == NoSuchContainerMessage(containerName) {
		l.logger.Debug("Container does not exist, nothing to remove", "container", containerName)
		return nil
	}

	l.report(c)
	return c.failure()
}

// StopService stops the compose service's running container(s). Any
// non-zero exit is logged verbatim and returned as an
// *model.ExternalProcessFailure.
func (l *Lifecycle) StopService(ctx context.Context, composeFile, serviceName string) error {
	c, err := l.capture(ctx, BuildStopArgs(composeFile, serviceName))
	if err != nil {
		return err
	}

	if c.exitCode != 0 {
		l.report(c)
		return c.failure()
	}

	// docker compose writes its progress to stderr even on success.
	l.logger.Debug("Stopped service", "service", serviceName, "output", strings.TrimSpace(c.stderr))
	return nil
}

// Run starts the application container with the terminal streams attached
// and waits for it to exit. A non-zero exit of the container is returned
// as an *model.ExternalProcessFailure carrying the exit code.
func (l *Lifecycle) Run(ctx context.Context, inv model.RunInvocation) error {
	args, err := BuildRunArgs(inv)
	if err != nil {
		return err
	}
	return l.runArgs(ctx, args)
}

func (l *Lifecycle) runArgs(ctx context.Context, args []string) error {
	l.logger.Debug("Commandline", "cmd", commandLine(args))

	code, err := l.runner.Run(ctx, Program, args, RunOptions{
		Dir:    l.Dir,
		Stdin:  l.Stdin,
		Stdout: l.Stdout,
		Stderr: l.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", commandLine(args), err)
	}
	if code != 0 {
		return &model.ExternalProcessFailure{Program: Program, Args: args, ExitCode: code}
	}
	return nil
}

// RunAll removes the stale container, stops the service and runs the
// application, strictly in that order. The run command is built first so
// that a configuration error aborts before any process is spawned. The
// first failing step ends the sequence.
func (l *Lifecycle) RunAll(ctx context.Context, inv model.RunInvocation) error {
	args, err := BuildRunArgs(inv)
	if err != nil {
		return err
	}

	if err := l.RemoveContainer(ctx, inv.ContainerName); err != nil {
		return err
	}
	if err := l.StopService(ctx, inv.ComposeFile, inv.ServiceName); err != nil {
		return err
	}

	if l.BeforeRun != nil {
		l.BeforeRun(ctx)
	}

	l.logger.Info("Running application in container", "service", inv.ServiceName, "main", inv.MainClass)
	return l.runArgs(ctx, args)
}

// commandLine renders the full command for log output.
func commandLine(args []string) string {
	return Program + " " + strings.Join(args, " ")
}
