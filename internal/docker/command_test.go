package docker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// sampleInvocation returns the invocation from the end-to-end scenario:
// service "app", no compose file override, --service-ports, two volumes.
func sampleInvocation() model.RunInvocation {
	return model.RunInvocation{
		ContainerName: "app",
		ServiceName:   "app",
		ExtraRunArgs:  []string{"--service-ports"},
		Volumes: []model.VolumeMapping{
			{HostRoot: "/home/u/proj/build", ContainerRoot: "/build"},
			{HostRoot: "/home/u/.gradle", ContainerRoot: "/gradle"},
		},
		Classpath: model.ClasspathResolution{
			OrderedContainerPaths: []string{"/build/classes/main", "/build/resources/main", "/gradle/lib/foo-1.0.jar"},
		},
		MainClass: "com.example.Main",
	}
}

// TestBuildRunArgs_EndToEnd verifies the exact argument vector, position
// by position.
func TestBuildRunArgs_EndToEnd(t *testing.T) {
	args, err := BuildRunArgs(sampleInvocation())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"compose", "run", "--rm",
		"--name", "app",
		"--service-ports",
		"-v", "/home/u/proj/build:/build",
		"-v", "/home/u/.gradle:/gradle",
		"app",
		"java",
		"-cp", "/build/classes/main:/build/resources/main:/gradle/lib/foo-1.0.jar",
		"com.example.Main",
	}, args)
}

// TestBuildRunArgs_ComposeFileAndJavaArgs verifies the optional -f pair and
// that extra java args sit between "java" and "-cp" in order.
func TestBuildRunArgs_ComposeFileAndJavaArgs(t *testing.T) {
	inv := sampleInvocation()
	inv.ComposeFile = "docker/compose.dev.yml"
	inv.ContainerName = "app-dev"
	inv.ExtraRunArgs = []string{"--service-ports", "-e", "SPRING_PROFILES_ACTIVE=dev"}
	inv.ExtraJavaArgs = []string{"-agentlib:jdwp=transport=dt_socket,server=y,suspend=n,address=*:5005", "-Xmx512m"}

	args, err := BuildRunArgs(inv)

	require.NoError(t, err)
	assert.Equal(t, []string{"compose", "-f", "docker/compose.dev.yml", "run", "--rm", "--name", "app-dev"}, args[:7])
	assert.Equal(t, []string{"--service-ports", "-e", "SPRING_PROFILES_ACTIVE=dev"}, args[7:10])
	assert.Equal(t, []string{
		"app", "java",
		"-agentlib:jdwp=transport=dt_socket,server=y,suspend=n,address=*:5005", "-Xmx512m",
		"-cp",
	}, args[14:19])
	assert.Equal(t, "com.example.Main", args[len(args)-1])
}

// TestBuildRunArgs_Idempotent verifies two builds of the same invocation
// are identical and do not alias each other.
func TestBuildRunArgs_Idempotent(t *testing.T) {
	inv := sampleInvocation()

	first, err := BuildRunArgs(inv)
	require.NoError(t, err)
	second, err := BuildRunArgs(inv)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	first[0] = "mutated"
	third, err := BuildRunArgs(inv)
	require.NoError(t, err)
	assert.Equal(t, second, third, "builder output must not share backing arrays")
	assert.Equal(t, []string{"--service-ports"}, inv.ExtraRunArgs)
}

// TestBuildRunArgs_MissingMainClass fails with a ConfigurationError rather
// than emitting an incomplete command.
func TestBuildRunArgs_MissingMainClass(t *testing.T) {
	inv := sampleInvocation()
	inv.MainClass = ""

	args, err := BuildRunArgs(inv)

	assert.Nil(t, args)
	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "mainClassName", cfgErr.Field)
}

// TestBuildRunArgs_EmptyClasspath still produces "-cp" with an empty value
// so the argument positions stay intact.
func TestBuildRunArgs_EmptyClasspath(t *testing.T) {
	inv := sampleInvocation()
	inv.Classpath = model.ClasspathResolution{}

	args, err := BuildRunArgs(inv)

	require.NoError(t, err)
	assert.Equal(t, []string{"-cp", "", "com.example.Main"}, args[len(args)-3:])
}

// TestBuildRemoveArgs verifies the remove-container vector.
func TestBuildRemoveArgs(t *testing.T) {
	assert.Equal(t, []string{"rm", "--force", "app"}, BuildRemoveArgs("app"))
}

// TestBuildStopArgs verifies the stop-service vector with and without a
// compose file.
func TestBuildStopArgs(t *testing.T) {
	assert.Equal(t, []string{"compose", "stop", "app"}, BuildStopArgs("", "app"))
	assert.Equal(t, []string{"compose", "-f", "docker-compose.yml", "stop", "app"}, BuildStopArgs("docker-compose.yml", "app"))
}

// TestNoSuchContainerMessage pins the daemon's exact diagnostic text.
func TestNoSuchContainerMessage(t *testing.T) {
	assert.Equal(t, "Error response from daemon: No such container: app\n", NoSuchContainerMessage("app"))
}
