// Package port checks whether the host ports a compose service publishes
// are free before the application container is started.
//
// "docker compose run --service-ports" fails late, after the container has
// been created, when a published port is still held by another process.
// Scanning up front turns that into an early, named warning.
package port
