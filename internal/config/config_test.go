package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// testFlags mirrors the subset of CLI flags the tests need and parses args.
func testFlags(t *testing.T, args ...string) (*pflag.FlagSet, map[string]string) {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("project-dir", "", "")
	fs.String("service", "", "")
	fs.String("container-name", "", "")
	fs.StringSlice("run-arg", nil, "")
	fs.Bool("strict", false, "")
	require.NoError(t, fs.Parse(args))

	return fs, map[string]string{
		"project-dir":    KeyProjectDir,
		"service":        KeyServiceName,
		"container-name": KeyContainerName,
		"run-arg":        KeyAdditionalDockerRunArgs,
		"strict":         KeyFailOnUnmapped,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// loadProject loads configuration for dir with the given extra flags.
func loadProject(t *testing.T, dir string, args ...string) *Config {
	t.Helper()

	fs, keys := testFlags(t, append([]string{"--project-dir", dir}, args...)...)
	cfg, err := Load(LoadOptions{Flags: fs, FlagKeys: keys})
	require.NoError(t, err)
	return cfg
}

// --- Load tests ---

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	gradleHome := filepath.Join(dir, "gradle-home")
	t.Setenv("GRADLE_USER_HOME", gradleHome)

	cfg := loadProject(t, dir, "--service", "app")

	assert.Equal(t, dir, cfg.ProjectDir)
	assert.Equal(t, "app", cfg.ServiceName)
	assert.Equal(t, "app", cfg.ContainerName, "container name defaults to the service name")
	assert.Empty(t, cfg.DockerComposeFile, "no compose file override by default")
	assert.Empty(t, cfg.ComposeFilePath())
	assert.Equal(t, []string{"--service-ports"}, cfg.AdditionalDockerRunArgs)
	assert.Empty(t, cfg.AdditionalJavaArgs)
	assert.Equal(t, DefaultContainerBuildDir, cfg.ContainerBuildDir)
	assert.Equal(t, DefaultContainerGradleUserHome, cfg.ContainerGradleUserHome)
	assert.Equal(t, filepath.Join(dir, "build"), cfg.BuildDir)
	assert.Equal(t, gradleHome, cfg.GradleUserHome)
	assert.Equal(t, []string{filepath.Join(dir, "build", "classes", "java", "main")}, cfg.ClassesDirs)
	assert.Empty(t, cfg.ResourcesDir, "resources dir is optional and absent here")
	assert.Equal(t, filepath.Join(dir, "build", "runtimeClasspath.txt"), cfg.ClasspathFile)
	assert.False(t, cfg.FailOnUnmapped)
	assert.False(t, cfg.SkipPreflight)
	assert.Empty(t, cfg.File)
}

func TestLoad_DetectsExistingOutputDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	for _, d := range []string{"classes/java/main", "classes/kotlin/main", "resources/main"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "build", filepath.FromSlash(d)), 0o755))
	}

	cfg := loadProject(t, dir, "--service", "app")

	assert.Equal(t, []string{
		filepath.Join(dir, "build", "classes", "java", "main"),
		filepath.Join(dir, "build", "classes", "kotlin", "main"),
	}, cfg.ClassesDirs)
	assert.Equal(t, filepath.Join(dir, "build", "resources", "main"), cfg.ResourcesDir)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	writeFile(t, filepath.Join(dir, "java-in-docker.yml"), `
service_name: web
container_name: web-app
docker_compose_file: compose/dev.yml
additional_java_args:
  - -Xmx1g
  - -Dspring.profiles.active=dev
build_dir: out
classpath:
  - libs/extra.jar
`)

	cfg := loadProject(t, dir)

	assert.Equal(t, filepath.Join(dir, "java-in-docker.yml"), cfg.File)
	assert.Equal(t, "web", cfg.ServiceName)
	assert.Equal(t, "web-app", cfg.ContainerName)
	assert.Equal(t, "compose/dev.yml", cfg.DockerComposeFile)
	assert.Equal(t, []string{"-Xmx1g", "-Dspring.profiles.active=dev"}, cfg.AdditionalJavaArgs)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.BuildDir)
	assert.Equal(t, filepath.Join(dir, "out", "runtimeClasspath.txt"), cfg.ClasspathFile)
	assert.Equal(t, []string{filepath.Join(dir, "libs", "extra.jar")}, cfg.Classpath)
	assert.Equal(t, filepath.Join(dir, "compose", "dev.yml"), cfg.ComposeFilePath())
}

func TestLoad_JSONCFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	writeFile(t, filepath.Join(dir, "java-in-docker.json"), `{
  // the service replaced by the local build
  "service_name": "api",
  /* keep compose's defaults, no port publishing */
  "additional_docker_run_args": [],
  "fail_on_unmapped": true,
}`)

	cfg := loadProject(t, dir)

	assert.Equal(t, "api", cfg.ServiceName)
	assert.Empty(t, cfg.AdditionalDockerRunArgs)
	assert.True(t, cfg.FailOnUnmapped)
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	writeFile(t, filepath.Join(dir, "java-in-docker.toml"), `
service_name = "worker"
main_class_name = "com.example.Worker"
additional_docker_run_args = ["--service-ports", "--no-deps"]
`)

	cfg := loadProject(t, dir)

	assert.Equal(t, "worker", cfg.ServiceName)
	assert.Equal(t, "com.example.Worker", cfg.MainClassName)
	assert.Equal(t, []string{"--service-ports", "--no-deps"}, cfg.AdditionalDockerRunArgs)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	writeFile(t, filepath.Join(dir, "java-in-docker.yaml"), "service_name: from-file\ncontainer_name: file-container\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg := loadProject(t, dir)
		assert.Equal(t, "from-file", cfg.ServiceName)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("JAVA_IN_DOCKER_SERVICE_NAME", "from-env")
		cfg := loadProject(t, dir)
		assert.Equal(t, "from-env", cfg.ServiceName)
		assert.Equal(t, "file-container", cfg.ContainerName)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("JAVA_IN_DOCKER_SERVICE_NAME", "from-env")
		cfg := loadProject(t, dir, "--service", "from-flag", "--strict")
		assert.Equal(t, "from-flag", cfg.ServiceName)
		assert.True(t, cfg.FailOnUnmapped)
	})

	t.Run("unchanged flags do not override", func(t *testing.T) {
		cfg := loadProject(t, dir)
		assert.Equal(t, []string{"--service-ports"}, cfg.AdditionalDockerRunArgs)
	})
}

func TestLoad_ListsFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	t.Setenv("JAVA_IN_DOCKER_ADDITIONAL_JAVA_ARGS", "-Dlist=a,b  -Xmx1g")
	t.Setenv("JAVA_IN_DOCKER_ADDITIONAL_DOCKER_RUN_ARGS", "--service-ports -e DEBUG=1,2")

	cfg := loadProject(t, dir, "--service", "app")

	assert.Equal(t, []string{"-Dlist=a,b", "-Xmx1g"}, cfg.AdditionalJavaArgs, "commas stay inside one argument")
	assert.Equal(t, []string{"--service-ports", "-e", "DEBUG=1,2"}, cfg.AdditionalDockerRunArgs)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
	writeFile(t, filepath.Join(dir, "conf", "local.yml"), "service_name: local\n")
	fs, keys := testFlags(t, "--project-dir", dir)

	cfg, err := Load(LoadOptions{ConfigFile: "conf/local.yml", Flags: fs, FlagKeys: keys})

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.ServiceName)
	assert.Equal(t, filepath.Join(dir, "conf", "local.yml"), cfg.File)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "missing file", file: "absent.yml"},
		{name: "unsupported extension", file: "conf.ini", content: "service_name = x"},
		{name: "invalid yaml", file: "bad.yml", content: "service_name: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("GRADLE_USER_HOME", filepath.Join(dir, "gh"))
			if tt.content != "" {
				writeFile(t, filepath.Join(dir, tt.file), tt.content)
			}
			fs, keys := testFlags(t, "--project-dir", dir)

			_, err := Load(LoadOptions{ConfigFile: tt.file, Flags: fs, FlagKeys: keys})

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr), "expected CLIError, got %v", err)
			assert.Equal(t, model.ExitConfigurationError, cliErr.Code)
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfigFile(dir))

	writeFile(t, filepath.Join(dir, "java-in-docker.json"), "{}")
	assert.Equal(t, filepath.Join(dir, "java-in-docker.json"), FindConfigFile(dir))

	writeFile(t, filepath.Join(dir, "java-in-docker.yml"), "")
	assert.Equal(t, filepath.Join(dir, "java-in-docker.yml"), FindConfigFile(dir), "yml wins over json")
}

func TestDefaultGradleUserHome(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		t.Setenv("GRADLE_USER_HOME", "/opt/gradle-home")
		home, err := DefaultGradleUserHome()
		require.NoError(t, err)
		assert.Equal(t, "/opt/gradle-home", home)
	})

	t.Run("user home", func(t *testing.T) {
		t.Setenv("GRADLE_USER_HOME", "")
		userHome, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no user home directory")
		}
		home, err := DefaultGradleUserHome()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userHome, ".gradle"), home)
	})
}

// --- Validate tests ---

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServiceName:             "app",
			ContainerName:           "app",
			ContainerBuildDir:       "/build",
			ContainerGradleUserHome: "/gradle",
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing service", mutate: func(c *Config) { c.ServiceName = "" }, wantField: "serviceName"},
		{name: "blank service", mutate: func(c *Config) { c.ServiceName = "  " }, wantField: "serviceName"},
		{name: "relative container build dir", mutate: func(c *Config) { c.ContainerBuildDir = "build" }, wantField: "containerBuildDir"},
		{name: "relative container gradle home", mutate: func(c *Config) { c.ContainerGradleUserHome = "gradle" }, wantField: "containerGradleUserHome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *model.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestValidateMounts(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	gradleHome := filepath.Join(root, "gh")
	require.NoError(t, os.Mkdir(buildDir, 0o755))
	require.NoError(t, os.Mkdir(gradleHome, 0o755))
	writeFile(t, filepath.Join(root, "plain-file"), "")

	tests := []struct {
		name      string
		buildDir  string
		gradle    string
		wantField string
	}{
		{name: "both exist", buildDir: buildDir, gradle: gradleHome},
		{name: "missing build dir", buildDir: filepath.Join(root, "absent"), gradle: gradleHome, wantField: "buildDir"},
		{name: "missing gradle home", buildDir: buildDir, gradle: filepath.Join(root, "no-such-gradle-home"), wantField: "gradleUserHome"},
		{name: "gradle home is a file", buildDir: buildDir, gradle: filepath.Join(root, "plain-file"), wantField: "gradleUserHome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BuildDir: tt.buildDir, GradleUserHome: tt.gradle}

			err := cfg.ValidateMounts()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *model.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

// --- Invocation tests ---

func TestDependencies(t *testing.T) {
	dir := t.TempDir()
	listFile := filepath.Join(dir, "runtimeClasspath.txt")
	extra := filepath.Join(dir, "extra.jar")

	t.Run("listing and explicit entries", func(t *testing.T) {
		writeFile(t, listFile, "/gh/a.jar\n/gh/b.jar\n")
		cfg := &Config{ClasspathFile: listFile, Classpath: []string{extra}}

		deps, found, err := cfg.Dependencies()

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"/gh/a.jar", "/gh/b.jar", extra}, deps)
	})

	t.Run("missing listing", func(t *testing.T) {
		cfg := &Config{ClasspathFile: filepath.Join(dir, "absent.txt"), Classpath: []string{extra}}

		deps, found, err := cfg.Dependencies()

		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, []string{extra}, deps)
	})

	t.Run("unreadable listing", func(t *testing.T) {
		cfg := &Config{ClasspathFile: dir}

		_, _, err := cfg.Dependencies()

		var ioErr *model.IOFailure
		require.True(t, errors.As(err, &ioErr), "expected IOFailure, got %v", err)
		assert.Equal(t, dir, ioErr.Path)
	})
}

func TestInvocation(t *testing.T) {
	cfg := &Config{
		ServiceName:             "app",
		ContainerName:           "app-dev",
		DockerComposeFile:       "docker-compose.dev.yml",
		AdditionalDockerRunArgs: []string{"--service-ports"},
		AdditionalJavaArgs:      []string{"-Xmx512m"},
		BuildDir:                "/p/build",
		GradleUserHome:          "/h/.gradle",
		ContainerBuildDir:       "/build",
		ContainerGradleUserHome: "/gradle",
		ClassesDirs:             []string{"/p/build/classes/java/main"},
	}
	cp := model.ClasspathResolution{OrderedContainerPaths: []string{"/build/classes/java/main"}}

	inv := cfg.Invocation(cp, "com.example.Main")

	assert.Equal(t, model.RunInvocation{
		ComposeFile:   "docker-compose.dev.yml",
		ContainerName: "app-dev",
		ServiceName:   "app",
		ExtraRunArgs:  []string{"--service-ports"},
		Volumes: []model.VolumeMapping{
			{HostRoot: "/p/build", ContainerRoot: "/build"},
			{HostRoot: "/h/.gradle", ContainerRoot: "/gradle"},
		},
		Classpath:     cp,
		MainClass:     "com.example.Main",
		ExtraJavaArgs: []string{"-Xmx512m"},
	}, inv)

	in := cfg.ClasspathInput([]string{"/h/.gradle/a.jar"})
	assert.Equal(t, inv.Volumes, in.Mappings(), "run volumes match the classpath mappings")
	assert.Equal(t, []string{"/h/.gradle/a.jar"}, in.Dependencies)
}
