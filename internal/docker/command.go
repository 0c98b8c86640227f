package docker

import (
	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Program is the container runtime executable every command is run with.
const Program = "docker"

// NoSuchContainerMessage returns the exact stderr text the Docker daemon
// prints when "docker rm" targets a container that does not exist.
func NoSuchContainerMessage(containerName string) string {
	return "Error response from daemon: No such container: " + containerName + "\n"
}

// composeArgs returns the "compose [-f file]" prefix shared by compose
// subcommands. An empty composeFile leaves file discovery to docker compose.
func composeArgs(composeFile string) []string {
	args := make([]string, 0, 3)
	args = append(args, "compose")
	if composeFile != "" {
		args = append(args, "-f", composeFile)
	}
	return args
}

// BuildRunArgs returns the argument vector (without the program name) that
// runs the application in a fresh container of the compose service:
//
//	compose [-f file] run --rm --name <container> <extra run args...>
//	  -v <host>:<container>... <service>
//	  java <extra java args...> -cp <classpath> <main class>
//
// Argument positions follow the docker compose CLI grammar and must not be
// reordered. A missing service, container name or main class yields a
// *model.ConfigurationError and no arguments.
func BuildRunArgs(inv model.RunInvocation) ([]string, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	args := composeArgs(inv.ComposeFile)
	args = append(args, "run", "--rm")
	args = append(args, "--name", inv.ContainerName)
	args = append(args, inv.ExtraRunArgs...)

	for _, v := range inv.Volumes {
		args = append(args, "-v", v.String())
	}

	args = append(args, inv.ServiceName)

	args = append(args, "java")
	args = append(args, inv.ExtraJavaArgs...)
	args = append(args, "-cp", inv.Classpath.Join())
	args = append(args, inv.MainClass)

	return args, nil
}

// BuildRemoveArgs returns "rm --force <containerName>".
func BuildRemoveArgs(containerName string) []string {
	return []string{"rm", "--force", containerName}
}

// BuildStopArgs returns "compose [-f <file>] stop <serviceName>".
func BuildStopArgs(composeFile, serviceName string) []string {
	args := composeArgs(composeFile)
	return append(args, "stop", serviceName)
}
