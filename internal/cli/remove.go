// Package cli: remove.go implements the "java-in-docker remove-container"
// command.
//
// The command force-removes the application container left behind by an
// earlier run, for example after the terminal was closed. A container that
// does not exist is not an error.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/java-in-docker/internal/docker"
)

// NewRemoveCommand creates the "remove-container" cobra command.
func NewRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-container",
		Short: "Remove the application container",
		Long: `Force-remove the application container (docker rm --force).

The container name defaults to the service name. Removing a container that
does not exist succeeds.

Examples:
  java-in-docker remove-container --service app
  java-in-docker remove-container -s app --container-name app-dev`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), cmd, docker.NewExecRunner())
		},
	}

	return cmd
}

// runRemove is the main logic function for the remove-container command.
func runRemove(ctx context.Context, cmd *cobra.Command, runner docker.ProcessRunner) error {
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := loadValidConfig(cmd)
	if err != nil {
		return err
	}

	lifecycle := docker.NewLifecycle(runner, logger, cfg.ProjectDir)
	if err := lifecycle.RemoveContainer(ctx, cfg.ContainerName); err != nil {
		return err
	}

	return printActionResult(cmd.OutOrStdout(), "removed", "container", cfg.ContainerName)
}

// printActionResult outputs the result of a single lifecycle step in text
// or JSON format.
func printActionResult(w io.Writer, action, kind, name string) error {
	if IsJSONOutput() {
		return printJSON(w, map[string]interface{}{
			"action": action,
			kind:     name,
		})
	}

	_, err := fmt.Fprintf(w, "%s %q %s\n", kind, name, action)
	return err
}
