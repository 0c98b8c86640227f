// Package cli: config.go implements the "java-in-docker config" command,
// which prints the effective configuration after defaults, the config
// file, environment variables and flags have been applied.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/java-in-docker/internal/config"
)

// NewConfigCommand creates the "config" cobra command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration.

Values are layered, lowest precedence first: defaults, the project config
file, JAVA_IN_DOCKER_* environment variables, and command line flags.
The text output is valid java-in-docker.yml content.

Examples:
  java-in-docker config
  java-in-docker config --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}

	return cmd
}

// printConfig outputs cfg as JSON or as YAML.
func printConfig(w io.Writer, cfg *config.Config) error {
	if IsJSONOutput() {
		return printJSON(w, cfg)
	}

	if cfg.File != "" {
		if _, err := fmt.Fprintf(w, "# loaded from %s\n", cfg.File); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
