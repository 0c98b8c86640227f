// Package cli: stop.go implements the "java-in-docker stop-service" command.
//
// The command stops the compose service's running container(s) with
// `docker compose stop`, which frees the ports the application container
// is about to publish.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/java-in-docker/internal/docker"
)

// NewStopCommand creates the "stop-service" cobra command.
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop-service",
		Short: "Stop the compose service",
		Long: `Stop the configured Compose service (docker compose stop).

The service's containers are stopped but not removed.

Examples:
  java-in-docker stop-service --service app
  java-in-docker stop-service -s app -f docker-compose.dev.yml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), cmd, docker.NewExecRunner())
		},
	}

	return cmd
}

// runStop is the main logic function for the stop-service command.
func runStop(ctx context.Context, cmd *cobra.Command, runner docker.ProcessRunner) error {
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := loadValidConfig(cmd)
	if err != nil {
		return err
	}

	lifecycle := docker.NewLifecycle(runner, logger, cfg.ProjectDir)
	if err := lifecycle.StopService(ctx, cfg.DockerComposeFile, cfg.ServiceName); err != nil {
		return err
	}

	return printActionResult(cmd.OutOrStdout(), "stopped", "service", cfg.ServiceName)
}
