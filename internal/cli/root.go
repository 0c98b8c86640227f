// Package cli implements the cobra-based CLI commands for java-in-docker.
//
// Each subcommand (run, remove-container, stop-service, classpath, config)
// is defined in its own file within this package. This file defines the
// root command, the global flags and the mapping from errors to exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug, which shows every docker
	// command line before it runs.
	verbose bool

	// quiet raises the log level to error.
	quiet bool

	// configFile is an explicit config file, overriding the lookup in the
	// project directory.
	configFile string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// logPrefix is shown on every log line.
const logPrefix = "java-in-docker"

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; it provides help
// text, global flags and the configuration flags every subcommand shares.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "java-in-docker",
		Short: "Run a locally built JVM application in its Docker Compose service",
		Long: `java-in-docker runs a JVM application inside the container of a Docker
Compose service, using the classes and dependency artifacts the build
already produced on the host.

The build directory and the Gradle user home are bind-mounted into the
container, and every classpath entry is rewritten to its container path.
No image is built.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats them as text or JSON based on --json.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (log docker command lines)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	pf.StringVar(&configFile, "config", "", "Config file (default: java-in-docker.{yml,yaml,toml,json} in the project directory)")
	registerConfigFlags(pf)

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewClasspathCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// SIGINT and SIGTERM cancel the command's context, which terminates any
// docker process still running.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}

	cliErr := asCLIError(err)
	printError(os.Stderr, cliErr)
	os.Exit(int(cliErr.Code))
}

// asCLIError maps an error to the CLIError carrying its exit code.
//
// CLIErrors keep their own code and message. The domain error kinds map to
// their dedicated codes with the error text as message, so nothing is
// printed twice. Anything else exits with code 1.
func asCLIError(err error) *model.CLIError {
	var (
		cliErr     *model.CLIError
		cfgErr     *model.ConfigurationError
		unresolved *model.UnresolvedPathError
		ioErr      *model.IOFailure
		procErr    *model.ExternalProcessFailure
	)

	switch {
	case errors.As(err, &cliErr):
		return cliErr
	case errors.As(err, &cfgErr):
		return model.NewCLIError(model.ExitConfigurationError, err.Error())
	case errors.As(err, &unresolved):
		return model.NewCLIError(model.ExitUnresolvedClasspath, err.Error())
	case errors.As(err, &ioErr):
		return model.NewCLIError(model.ExitIOError, err.Error())
	case errors.As(err, &procErr):
		return model.NewCLIError(model.ExitProcessFailed, err.Error())
	case errors.Is(err, context.Canceled):
		return model.NewCLIError(model.ExitGeneralError, "interrupted")
	default:
		return model.NewCLIError(model.ExitGeneralError, err.Error())
	}
}

// printError outputs an error in the appropriate format (JSON or text)
// based on the --json global flag. Errors always go to stderr because
// stdout is reserved for command output.
func printError(w io.Writer, cliErr *model.CLIError) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"code":    int(cliErr.Code),
				"message": cliErr.Message,
			},
		}
		if cliErr.Err != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = cliErr.Err.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if cliErr.Err != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", cliErr.Message, cliErr.Err)
	} else {
		fmt.Fprintf(w, "Error: %s\n", cliErr.Message)
	}
}

// newLogger creates the logger used by all commands, honouring --verbose
// and --quiet.
func newLogger(w io.Writer) *log.Logger {
	level := log.InfoLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: logPrefix,
		Level:  level,
	})
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
