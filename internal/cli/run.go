// Package cli: run.go implements the "java-in-docker run" command.
//
// The run command removes a stale application container, stops the
// service's existing container and then runs the application in a fresh
// container of the same service, with the build directory and the Gradle
// user home bind-mounted. The container's exit code becomes the exit code
// of java-in-docker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/java-in-docker/internal/compose"
	"github.com/shinji-kodama/java-in-docker/internal/config"
	"github.com/shinji-kodama/java-in-docker/internal/docker"
	"github.com/shinji-kodama/java-in-docker/internal/model"
	"github.com/shinji-kodama/java-in-docker/internal/port"
)

// servicePortsArg makes docker compose run publish the service's ports.
const servicePortsArg = "--service-ports"

// runFlags holds the flag values for the run command.
type runFlags struct {
	// dryRun prints the docker commands instead of executing them.
	dryRun bool
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the application in a fresh container of the service",
		Long: `Run the application in a fresh container of the configured Compose service.

Three docker commands run in order, each waiting for the previous one:

  docker rm --force <container>
  docker compose [-f <file>] stop <service>
  docker compose [-f <file>] run --rm --name <container> ... <service> java -cp <classpath> <main>

Examples:
  java-in-docker run --service app
  java-in-docker run -s app --java-arg -Xmx1g --run-arg -e --run-arg DEBUG=1
  java-in-docker run -s app --dry-run`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the docker commands without running them")

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context, cmd *cobra.Command, flags *runFlags) error {
	logger := newLogger(cmd.ErrOrStderr())

	// Step 1: Load configuration and build every argument vector up front,
	// so invalid input fails before any process is spawned.
	cfg, err := loadValidConfig(cmd)
	if err != nil {
		return err
	}

	inv, err := prepareInvocation(cfg, logger)
	if err != nil {
		return err
	}

	runArgs, err := docker.BuildRunArgs(inv)
	if err != nil {
		return err
	}

	if flags.dryRun {
		return printPlan(cmd.OutOrStdout(), planFor(inv, runArgs))
	}

	// Step 2: Preflight checks.
	var composeFile *compose.File
	if !cfg.SkipPreflight {
		if err := pingDaemon(ctx, logger); err != nil {
			return err
		}
		composeFile = inspectCompose(cfg, logger)
	}

	// Step 3: remove, stop, run.
	lifecycle := docker.NewLifecycle(docker.NewExecRunner(), logger, cfg.ProjectDir)
	lifecycle.Stdin = cmd.InOrStdin()
	lifecycle.Stdout = cmd.OutOrStdout()
	lifecycle.Stderr = cmd.ErrOrStderr()
	if composeFile != nil && slices.Contains(inv.ExtraRunArgs, servicePortsArg) {
		lifecycle.BeforeRun = func(context.Context) {
			warnBusyPorts(logger, port.NewScanner(), composeFile, inv.ServiceName)
		}
	}

	return containerExit(lifecycle.RunAll(ctx, inv), runArgs)
}

// containerExit turns a failure of the run step into a CLIError carrying
// the container's exit code. Other errors are returned unchanged.
func containerExit(err error, runArgs []string) error {
	var procErr *model.ExternalProcessFailure
	if !errors.As(err, &procErr) || !slices.Equal(procErr.Args, runArgs) {
		return err
	}

	code := model.ExitCode(procErr.ExitCode)
	if procErr.ExitCode <= 0 || procErr.ExitCode > 255 {
		code = model.ExitProcessFailed
	}
	return model.WrapCLIError(code, fmt.Sprintf("application exited with code %d", procErr.ExitCode), nil)
}

// pingDaemon confirms the Docker daemon is reachable.
func pingDaemon(ctx context.Context, logger *log.Logger) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("Connected to Docker daemon")
	return nil
}

// inspectCompose loads the compose file for diagnostics and warns when the
// configured service is not defined in it. Without a configured file the
// one docker compose would pick in the project directory is used. Problems
// reading the file are only logged: docker compose reports them
// authoritatively.
func inspectCompose(cfg *config.Config, logger *log.Logger) *compose.File {
	path := cfg.ComposeFilePath()
	if path == "" {
		path = compose.FindDefault(cfg.ProjectDir)
		if path == "" {
			logger.Debug("No compose file found, skipping compose checks", "dir", cfg.ProjectDir)
			return nil
		}
	}

	f, err := compose.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Compose file not found, skipping compose checks", "file", path)
		} else {
			logger.Warn("Cannot inspect compose file", "file", path, "err", err)
		}
		return nil
	}

	if !f.HasService(cfg.ServiceName) {
		logger.Warn("Service not found in compose file",
			"service", cfg.ServiceName,
			"file", path,
			"services", strings.Join(f.ServiceNames(), ","))
	}
	return f
}

// warnBusyPorts logs every published host port of service that is still
// bound on this host after the service was stopped.
func warnBusyPorts(logger *log.Logger, scanner *port.Scanner, f *compose.File, service string) {
	ports, skipped := f.PublishedPorts(service)
	for _, raw := range skipped {
		logger.Debug("Skipping port entry that cannot be checked statically", "port", raw)
	}
	for _, p := range ports {
		if !port.Checkable(p.Protocol) {
			logger.Debug("Skipping port with unsupported protocol", "port", p.String())
		}
	}
	for _, p := range scanner.BusyPorts(ports) {
		logger.Warn("Published port is already in use", "service", service, "port", p.String())
	}
}

// plan is the set of docker argument vectors a run would execute.
type plan struct {
	Remove []string `json:"remove"`
	Stop   []string `json:"stop"`
	Run    []string `json:"run"`
}

func planFor(inv model.RunInvocation, runArgs []string) plan {
	return plan{
		Remove: docker.BuildRemoveArgs(inv.ContainerName),
		Stop:   docker.BuildStopArgs(inv.ComposeFile, inv.ServiceName),
		Run:    runArgs,
	}
}

// printPlan outputs the planned docker commands in text or JSON format.
func printPlan(w io.Writer, p plan) error {
	if IsJSONOutput() {
		return printJSON(w, p)
	}

	for _, args := range [][]string{p.Remove, p.Stop, p.Run} {
		if _, err := fmt.Fprintln(w, docker.Program+" "+strings.Join(args, " ")); err != nil {
			return err
		}
	}
	return nil
}
