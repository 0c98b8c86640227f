// Package cli: classpath.go implements the "java-in-docker classpath"
// command, which prints the classpath the application container would be
// started with.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// NewClasspathCommand creates the "classpath" cobra command.
func NewClasspathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classpath",
		Short: "Print the container classpath",
		Long: `Print the classpath the application container would be started with.

Entries are container paths: classes directories first, then the resources
directory, then the dependency artifacts. Entries outside the build
directory and the Gradle user home are reported as warnings and left out.

Examples:
  java-in-docker classpath
  java-in-docker classpath --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasspath(cmd)
		},
	}

	return cmd
}

// runClasspath is the main logic function for the classpath command.
// Unmapped entries are printed before the strict-mode error is returned.
func runClasspath(cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	strict := cfg.FailOnUnmapped
	cfg.FailOnUnmapped = false
	res, err := resolveClasspath(cfg, logger)
	if err != nil {
		return err
	}

	if err := printClasspath(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if strict && res.HasUnmapped() {
		return model.WrapCLIError(model.ExitUnresolvedClasspath,
			"classpath entries outside the mounted directories",
			&model.UnresolvedPathError{Paths: res.Unmapped})
	}
	return nil
}

// classpathOutput is the JSON shape of the classpath command's output.
type classpathOutput struct {
	Classpath string   `json:"classpath"`
	Entries   []string `json:"entries"`
	Unmapped  []string `json:"unmapped"`
}

// printClasspath outputs the resolution in text or JSON format. Text mode
// prints the joined classpath only.
func printClasspath(w io.Writer, res model.ClasspathResolution) error {
	if IsJSONOutput() {
		out := classpathOutput{
			Classpath: res.Join(),
			Entries:   res.OrderedContainerPaths,
			Unmapped:  res.Unmapped,
		}
		if out.Entries == nil {
			out.Entries = []string{}
		}
		if out.Unmapped == nil {
			out.Unmapped = []string{}
		}
		return printJSON(w, out)
	}

	_, err := fmt.Fprintln(w, res.Join())
	return err
}
