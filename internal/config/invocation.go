package config

import (
	"errors"
	"io/fs"

	"github.com/shinji-kodama/java-in-docker/internal/classpath"
	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Dependencies returns the runtime dependency artifacts: the entries of
// ClasspathFile followed by Classpath. A missing ClasspathFile is reported
// through found=false rather than an error so callers can decide whether
// that matters.
func (c *Config) Dependencies() (deps []string, found bool, err error) {
	listed, err := classpath.ReadListFile(c.ClasspathFile)
	switch {
	case err == nil:
		found = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, err
	}

	deps = make([]string, 0, len(listed)+len(c.Classpath))
	deps = append(deps, listed...)
	deps = append(deps, c.Classpath...)
	return deps, found, nil
}

// ClasspathInput assembles the classpath input from the configuration and
// the given dependency artifacts.
func (c *Config) ClasspathInput(deps []string) classpath.Input {
	return classpath.Input{
		ClassesDirs:                  c.ClassesDirs,
		ResourcesDir:                 c.ResourcesDir,
		Dependencies:                 deps,
		HostBuildRoot:                c.BuildDir,
		HostDependencyCacheRoot:      c.GradleUserHome,
		ContainerBuildRoot:           c.ContainerBuildDir,
		ContainerDependencyCacheRoot: c.ContainerGradleUserHome,
	}
}

// Invocation builds the run invocation for a resolved classpath and main
// class. The volumes match the mappings the classpath was assembled with.
func (c *Config) Invocation(cp model.ClasspathResolution, mainClass string) model.RunInvocation {
	return model.RunInvocation{
		ComposeFile:   c.DockerComposeFile,
		ContainerName: c.ContainerName,
		ServiceName:   c.ServiceName,
		ExtraRunArgs:  c.AdditionalDockerRunArgs,
		Volumes:       c.Volumes(),
		Classpath:     cp,
		MainClass:     mainClass,
		ExtraJavaArgs: c.AdditionalJavaArgs,
	}
}
