package model

import (
	"fmt"
	"strings"
)

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigurationError indicates required configuration is missing
	// or invalid. No docker process has been spawned.
	ExitConfigurationError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitUnresolvedClasspath indicates classpath entries fell outside the
	// mounted volumes and strict mode turned that into a failure.
	ExitUnresolvedClasspath ExitCode = 4

	// ExitProcessFailed indicates a docker command exited non-zero.
	ExitProcessFailed ExitCode = 5

	// ExitIOError indicates a build artifact could not be read.
	ExitIOError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ConfigurationError reports a required input that is missing or invalid.
// It is fatal and raised before any process is spawned.
type ConfigurationError struct {
	// Field is the configuration key at fault (e.g., "serviceName").
	Field string

	// Message describes what is wrong.
	Message string
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// UnresolvedPathError lists classpath entries that fell outside every
// known volume mapping. It is diagnostic: whether it aborts a run is
// decided by the caller.
type UnresolvedPathError struct {
	Paths []string
}

// Error implements the error interface for UnresolvedPathError.
func (e *UnresolvedPathError) Error() string {
	return fmt.Sprintf("%d classpath entries cannot be mapped into the container: %s",
		len(e.Paths), strings.Join(e.Paths, ", "))
}

// ExternalProcessFailure reports a docker command that exited non-zero.
type ExternalProcessFailure struct {
	// Program is the executable that was run (normally "docker").
	Program string

	// Args is the argument vector, excluding the program name.
	Args []string

	// ExitCode is the exit status reported by the process.
	ExitCode int

	// Stderr holds captured standard error, when it was captured.
	Stderr string
}

// Error implements the error interface for ExternalProcessFailure.
func (e *ExternalProcessFailure) Error() string {
	msg := fmt.Sprintf("%s %s exited with code %d", e.Program, strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// IOFailure wraps a failed read of a build artifact, keeping the path.
type IOFailure struct {
	Path string
	Err  error
}

// Error implements the error interface for IOFailure.
func (e *IOFailure) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *IOFailure) Unwrap() error {
	return e.Err
}
