// Package model defines the domain types and value objects for the
// java-in-docker CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (VolumeMapping, ClasspathResolution, RunInvocation, etc.)
// are built immediately before a single docker invocation and discarded
// afterwards. Nothing is cached between runs: every run re-derives the
// classpath from the current build output.
//
// The package also defines exit codes (ExitCode), the error kinds raised
// by the core, and a custom error type (CLIError) that carries exit codes
// for proper OS process exit handling.
package model
