// Package docker builds and executes the docker commands behind
// java-in-docker.
//
// This package handles:
//   - Argument vectors for "docker compose run", "docker rm --force" and
//     "docker compose stop" (command.go). These builders are pure.
//   - The process boundary: ProcessRunner and its os/exec implementation
//     (runner.go).
//   - The container lifecycle: remove the stale container, stop the
//     service's existing container, run the application (lifecycle.go).
//   - A Docker Engine SDK client used to check that the daemon answers
//     before anything is spawned (client.go).
package docker
