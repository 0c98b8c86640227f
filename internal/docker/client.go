package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// defaultPingTimeout bounds the daemon preflight. Docker Desktop on macOS
// can take a few seconds to answer after waking up.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. java-in-docker drives the
// lifecycle through the docker CLI (compose has no SDK), so the client is
// only used to confirm the daemon is reachable before anything is spawned.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client.
//
// DOCKER_HOST and the other DOCKER_* variables are honoured when set.
// Otherwise the first existing socket among the platform's well-known
// locations is used, falling back to the SDK default.
func NewClient() (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	if os.Getenv("DOCKER_HOST") == "" {
		if host, err := detectDockerHost(); err == nil {
			opts = append(opts, client.WithHost(host))
		}
	}

	c, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to create Docker client",
			err,
		)
	}

	return &Client{inner: c}, nil
}

// socketCandidates lists the Unix socket paths tried on this platform,
// most preferred first.
func socketCandidates() []string {
	candidates := []string{"/var/run/docker.sock"}

	// Rootless docker.
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		candidates = append(candidates, filepath.Join(runtimeDir, "docker.sock"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".docker", "run", "docker.sock"))
		if runtime.GOOS == "darwin" {
			candidates = append(candidates, filepath.Join(home, ".colima", "default", "docker.sock"))
		}
	}

	return candidates
}

// detectDockerHost returns the daemon address for the current platform.
func detectDockerHost() (string, error) {
	if runtime.GOOS == "windows" {
		return "npipe:////./pipe/docker_engine", nil
	}
	return detectUnixSocket(socketCandidates())
}

// detectUnixSocket returns the unix:// address of the first path that exists.
func detectUnixSocket(paths []string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return "unix://" + p, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v", paths)
}

// Ping verifies that the Docker daemon answers within defaultPingTimeout.
// Failure is returned as a model.CLIError with ExitDockerNotRunning.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker daemon is not responding, is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases the resources held by the client.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
