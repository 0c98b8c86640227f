// Package main is the entry point for the java-in-docker CLI.
//
// The binary runs a locally built JVM application inside a Docker Compose
// service's container. It delegates all functionality to the internal/cli
// package, which defines the cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development they default to "dev", "none", and "unknown".
package main

import (
	"github.com/shinji-kodama/java-in-docker/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
