// Package config loads and validates java-in-docker configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the
// project config file (java-in-docker.yml, .yaml, .toml or .json; JSON
// files may contain comments), JAVA_IN_DOCKER_* environment variables, and command
// line flags. Defaults are applied once at load time; there are no lazy
// fallback chains afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Configuration keys. Flags, environment variables and config files all
// address values by these names.
const (
	KeyProjectDir              = "project_dir"
	KeyServiceName             = "service_name"
	KeyDockerComposeFile       = "docker_compose_file"
	KeyContainerName           = "container_name"
	KeyAdditionalDockerRunArgs = "additional_docker_run_args"
	KeyAdditionalJavaArgs      = "additional_java_args"
	KeyContainerBuildDir       = "container_build_dir"
	KeyContainerGradleUserHome = "container_gradle_user_home"
	KeyMainClassName           = "main_class_name"
	KeyBuildDir                = "build_dir"
	KeyGradleUserHome          = "gradle_user_home"
	KeyClassesDirs             = "classes_dirs"
	KeyResourcesDir            = "resources_dir"
	KeyClasspathFile           = "classpath_file"
	KeyClasspath               = "classpath"
	KeyFailOnUnmapped          = "fail_on_unmapped"
	KeySkipPreflight           = "skip_preflight"
)

// keys lists every configuration key, for environment binding.
var keys = []string{
	KeyProjectDir, KeyServiceName, KeyDockerComposeFile, KeyContainerName,
	KeyAdditionalDockerRunArgs, KeyAdditionalJavaArgs, KeyContainerBuildDir,
	KeyContainerGradleUserHome, KeyMainClassName, KeyBuildDir, KeyGradleUserHome,
	KeyClassesDirs, KeyResourcesDir, KeyClasspathFile, KeyClasspath,
	KeyFailOnUnmapped, KeySkipPreflight,
}

// Defaults.
const (
	DefaultContainerBuildDir       = "/build"
	DefaultContainerGradleUserHome = "/gradle"
	DefaultBuildDirName            = "build"
	DefaultClasspathFileName       = "runtimeClasspath.txt"
	EnvPrefix                      = "JAVA_IN_DOCKER"
)

// DefaultAdditionalDockerRunArgs publishes the service's ports, which a
// plain "docker compose run" does not do.
var DefaultAdditionalDockerRunArgs = []string{"--service-ports"}

// ConfigFileNames are searched in the project directory, in order.
var ConfigFileNames = []string{
	"java-in-docker.yml",
	"java-in-docker.yaml",
	"java-in-docker.toml",
	"java-in-docker.json",
}

// Config is the effective configuration of one invocation.
type Config struct {
	// ProjectDir is the project root. Relative paths resolve against it and
	// docker commands run in it.
	ProjectDir string `json:"projectDir" mapstructure:"project_dir" yaml:"project_dir"`

	// ServiceName is the compose service the application replaces. Required.
	ServiceName string `json:"serviceName" mapstructure:"service_name" yaml:"service_name"`

	// DockerComposeFile is passed to docker compose with -f when set.
	DockerComposeFile string `json:"dockerComposeFile,omitempty" mapstructure:"docker_compose_file" yaml:"docker_compose_file,omitempty"`

	// ContainerName defaults to ServiceName.
	ContainerName string `json:"containerName" mapstructure:"container_name" yaml:"container_name"`

	AdditionalDockerRunArgs []string `json:"additionalDockerRunArgs" mapstructure:"additional_docker_run_args" yaml:"additional_docker_run_args"`
	AdditionalJavaArgs      []string `json:"additionalJavaArgs" mapstructure:"additional_java_args" yaml:"additional_java_args"`

	// ContainerBuildDir is where BuildDir is mounted inside the container.
	ContainerBuildDir string `json:"containerBuildDir" mapstructure:"container_build_dir" yaml:"container_build_dir"`

	// ContainerGradleUserHome is where GradleUserHome is mounted.
	ContainerGradleUserHome string `json:"containerGradleUserHome" mapstructure:"container_gradle_user_home" yaml:"container_gradle_user_home"`

	// MainClassName overrides main class detection.
	MainClassName string `json:"mainClassName,omitempty" mapstructure:"main_class_name" yaml:"main_class_name,omitempty"`

	BuildDir       string `json:"buildDir" mapstructure:"build_dir" yaml:"build_dir"`
	GradleUserHome string `json:"gradleUserHome" mapstructure:"gradle_user_home" yaml:"gradle_user_home"`

	ClassesDirs  []string `json:"classesDirs" mapstructure:"classes_dirs" yaml:"classes_dirs"`
	ResourcesDir string   `json:"resourcesDir,omitempty" mapstructure:"resources_dir" yaml:"resources_dir,omitempty"`

	// ClasspathFile lists the resolved runtime dependency artifacts.
	ClasspathFile string `json:"classpathFile" mapstructure:"classpath_file" yaml:"classpath_file"`

	// Classpath holds additional dependency artifacts given directly.
	Classpath []string `json:"classpath,omitempty" mapstructure:"classpath" yaml:"classpath,omitempty"`

	// FailOnUnmapped turns unmapped classpath entries into a hard failure.
	FailOnUnmapped bool `json:"failOnUnmapped" mapstructure:"fail_on_unmapped" yaml:"fail_on_unmapped"`

	// SkipPreflight disables the daemon ping and port checks.
	SkipPreflight bool `json:"skipPreflight" mapstructure:"skip_preflight" yaml:"skip_preflight"`

	// File is the config file that was loaded, if any.
	File string `json:"configFile,omitempty" mapstructure:"-" yaml:"-"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When empty, the project
	// directory is searched for ConfigFileNames.
	ConfigFile string

	// Flags are bound to configuration keys. FlagKeys maps flag names to
	// keys; flags that were not changed on the command line do not
	// override lower layers.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// Load builds the effective configuration and applies derived defaults.
// It does not validate; call Validate before using the result to run.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		for flagName, key := range opts.FlagKeys {
			flag := opts.Flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
			}
		}
	}

	projectDir, err := absDir(v.GetString(KeyProjectDir))
	if err != nil {
		return nil, err
	}

	file := opts.ConfigFile
	if file == "" {
		file = FindConfigFile(projectDir)
	} else if !filepath.IsAbs(file) {
		file = filepath.Join(projectDir, file)
	}
	if file != "" {
		if err := readConfigFile(v, file); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.DecodeHookFuncType(splitFieldsHook))); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigurationError, "failed to parse configuration", err)
	}
	cfg.ProjectDir = projectDir
	cfg.File = file

	if err := cfg.applyDerivedDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// splitFieldsHook decodes a string into a []string field by splitting on
// whitespace. Environment variables are the only source of such strings,
// so JAVA_IN_DOCKER_ADDITIONAL_JAVA_ARGS="-Dlist=a,b -Xmx1g" yields two
// arguments and commas stay inside them. Arguments containing spaces need
// a config file or repeated flags.
func splitFieldsHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	return strings.Fields(data.(string)), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyProjectDir, ".")
	v.SetDefault(KeyAdditionalDockerRunArgs, DefaultAdditionalDockerRunArgs)
	v.SetDefault(KeyAdditionalJavaArgs, []string{})
	v.SetDefault(KeyContainerBuildDir, DefaultContainerBuildDir)
	v.SetDefault(KeyContainerGradleUserHome, DefaultContainerGradleUserHome)
	v.SetDefault(KeyFailOnUnmapped, false)
	v.SetDefault(KeySkipPreflight, false)
}

// FindConfigFile returns the first of ConfigFileNames present in dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// readConfigFile merges the file into v. JSON files are passed through
// jsonc first so comments and trailing commas are accepted.
func readConfigFile(v *viper.Viper, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.WrapCLIError(model.ExitConfigurationError,
				fmt.Sprintf("config file not found: %s", file), err)
		}
		return model.WrapCLIError(model.ExitIOError, "failed to read config file",
			&model.IOFailure{Path: file, Err: err})
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		v.SetConfigType("json")
		data = jsonc.ToJSON(data)
	case ".yml", ".yaml":
		v.SetConfigType("yaml")
	case ".toml":
		v.SetConfigType("toml")
	default:
		return model.NewCLIError(model.ExitConfigurationError,
			fmt.Sprintf("unsupported config file type: %s", file))
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return model.WrapCLIError(model.ExitConfigurationError,
			fmt.Sprintf("failed to parse config file %s", file), err)
	}
	return nil
}

// applyDerivedDefaults fills values that depend on other values and makes
// host paths absolute.
func (c *Config) applyDerivedDefaults() error {
	if c.ContainerName == "" {
		c.ContainerName = c.ServiceName
	}

	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDirName
	}
	c.BuildDir = c.resolve(c.BuildDir)

	if c.GradleUserHome == "" {
		home, err := DefaultGradleUserHome()
		if err != nil {
			return err
		}
		c.GradleUserHome = home
	}
	c.GradleUserHome = c.resolve(c.GradleUserHome)

	if len(c.ClassesDirs) == 0 {
		c.ClassesDirs = DefaultClassesDirs(c.BuildDir)
	}
	for i, dir := range c.ClassesDirs {
		c.ClassesDirs[i] = c.resolve(dir)
	}

	if c.ResourcesDir == "" {
		c.ResourcesDir = DefaultResourcesDir(c.BuildDir)
	} else {
		c.ResourcesDir = c.resolve(c.ResourcesDir)
	}

	if c.ClasspathFile == "" {
		c.ClasspathFile = filepath.Join(c.BuildDir, DefaultClasspathFileName)
	}
	c.ClasspathFile = c.resolve(c.ClasspathFile)

	for i, p := range c.Classpath {
		c.Classpath[i] = c.resolve(p)
	}
	return nil
}

// resolve makes p absolute relative to the project directory.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectDir, p)
}

// Validate checks required values. Errors are *model.ConfigurationError.
// The main class is checked later, when the run command is built, because
// it may still be detected from build output.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return model.NewConfigurationError("serviceName", "service name is required (--service or service_name)")
	}
	if !path.IsAbs(c.ContainerBuildDir) {
		return model.NewConfigurationError("containerBuildDir",
			fmt.Sprintf("must be an absolute container path, got %q", c.ContainerBuildDir))
	}
	if !path.IsAbs(c.ContainerGradleUserHome) {
		return model.NewConfigurationError("containerGradleUserHome",
			fmt.Sprintf("must be an absolute container path, got %q", c.ContainerGradleUserHome))
	}
	return nil
}

// ValidateMounts checks that the host side of every volume is an existing
// directory. A missing bind source would be created empty (and owned by
// root) by the daemon, leaving the container without the classpath.
func (c *Config) ValidateMounts() error {
	mounts := []struct {
		field, dir, hint string
	}{
		{"buildDir", c.BuildDir, "build the project first or set build_dir"},
		{"gradleUserHome", c.GradleUserHome, "set gradle_user_home or GRADLE_USER_HOME"},
	}
	for _, m := range mounts {
		if !isDir(m.dir) {
			return model.NewConfigurationError(m.field,
				fmt.Sprintf("directory %s does not exist: %s", m.dir, m.hint))
		}
	}
	return nil
}

// ComposeFilePath returns the absolute path of the configured compose
// file, or "" when docker compose is left to find one itself.
func (c *Config) ComposeFilePath() string {
	if c.DockerComposeFile == "" {
		return ""
	}
	return c.resolve(c.DockerComposeFile)
}

// Volumes returns the bind mounts for the build directory and the Gradle
// user home, in that order.
func (c *Config) Volumes() []model.VolumeMapping {
	return []model.VolumeMapping{
		{HostRoot: c.BuildDir, ContainerRoot: c.ContainerBuildDir},
		{HostRoot: c.GradleUserHome, ContainerRoot: c.ContainerGradleUserHome},
	}
}

// DefaultGradleUserHome returns $GRADLE_USER_HOME, or ~/.gradle.
func DefaultGradleUserHome() (string, error) {
	if home := os.Getenv("GRADLE_USER_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigurationError,
			"cannot determine the Gradle user home; set gradle_user_home", err)
	}
	return filepath.Join(userHome, ".gradle"), nil
}

// classesLanguages are the JVM languages whose main output directories are
// picked up by default.
var classesLanguages = []string{"java", "kotlin", "groovy", "scala"}

// DefaultClassesDirs returns the existing build/classes/<lang>/main
// directories, or the Java one when none exists yet.
func DefaultClassesDirs(buildDir string) []string {
	var dirs []string
	for _, lang := range classesLanguages {
		dir := filepath.Join(buildDir, "classes", lang, "main")
		if isDir(dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{filepath.Join(buildDir, "classes", "java", "main")}
	}
	return dirs
}

// DefaultResourcesDir returns build/resources/main when it exists, or "".
func DefaultResourcesDir(buildDir string) string {
	dir := filepath.Join(buildDir, "resources", "main")
	if isDir(dir) {
		return dir
	}
	return ""
}

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigurationError,
			fmt.Sprintf("invalid project directory %q", dir), err)
	}
	return abs, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
