package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shinji-kodama/java-in-docker/internal/config"
)

// configFlagKeys maps each configuration flag to its configuration key.
// Flags are declared with zero defaults: the real defaults live in the
// config package so that an unset flag never hides a config file value.
var configFlagKeys = map[string]string{
	"service":                    config.KeyServiceName,
	"compose-file":               config.KeyDockerComposeFile,
	"container-name":             config.KeyContainerName,
	"run-arg":                    config.KeyAdditionalDockerRunArgs,
	"java-arg":                   config.KeyAdditionalJavaArgs,
	"container-build-dir":        config.KeyContainerBuildDir,
	"container-gradle-user-home": config.KeyContainerGradleUserHome,
	"main-class":                 config.KeyMainClassName,
	"project-dir":                config.KeyProjectDir,
	"build-dir":                  config.KeyBuildDir,
	"gradle-user-home":           config.KeyGradleUserHome,
	"classes-dir":                config.KeyClassesDirs,
	"resources-dir":              config.KeyResourcesDir,
	"classpath-file":             config.KeyClasspathFile,
	"classpath":                  config.KeyClasspath,
	"strict":                     config.KeyFailOnUnmapped,
	"skip-preflight":             config.KeySkipPreflight,
}

// registerConfigFlags declares the configuration flags on fs.
func registerConfigFlags(fs *pflag.FlagSet) {
	fs.StringP("service", "s", "", "Compose service to run the application in (required)")
	fs.StringP("compose-file", "f", "", "Compose file, relative to the project directory")
	fs.String("container-name", "", "Name of the application container (default: the service name)")
	fs.StringArray("run-arg", nil, `Extra "docker compose run" argument, repeatable (default: --service-ports)`)
	fs.StringArray("java-arg", nil, "Extra JVM argument, repeatable")
	fs.String("container-build-dir", "", "Mount point of the build directory (default: /build)")
	fs.String("container-gradle-user-home", "", "Mount point of the Gradle user home (default: /gradle)")
	fs.String("main-class", "", "Main class (default: detected from the build)")
	fs.String("project-dir", "", "Project directory (default: current directory)")
	fs.String("build-dir", "", "Host build directory (default: <project>/build)")
	fs.String("gradle-user-home", "", "Host Gradle user home (default: $GRADLE_USER_HOME or ~/.gradle)")
	fs.StringArray("classes-dir", nil, "Compiled classes directory, repeatable (default: <build>/classes/<lang>/main)")
	fs.String("resources-dir", "", "Processed resources directory (default: <build>/resources/main if present)")
	fs.String("classpath-file", "", "Runtime classpath listing (default: <build>/runtimeClasspath.txt)")
	fs.StringArray("classpath", nil, "Additional dependency artifact, repeatable")
	fs.Bool("strict", false, "Fail when a classpath entry is outside the mounted directories")
	fs.Bool("skip-preflight", false, "Skip the Docker daemon and port checks")
}

// loadConfig loads the effective configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		FlagKeys:   configFlagKeys,
	})
}

// loadValidConfig loads and validates the effective configuration.
func loadValidConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
