package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

const (
	// ResolvedMainClassFile is written into the build directory by the
	// build and holds the application's main class name.
	ResolvedMainClassFile = "resolvedMainClassName"

	// GradlePropertiesFile holds the legacy mainClassName project property.
	GradlePropertiesFile = "gradle.properties"

	// LegacyMainClassProperty is the project property consulted when the
	// build did not record a main class.
	LegacyMainClassProperty = "mainClassName"
)

// MainClass is a detected main class and where it came from.
type MainClass struct {
	Name   string
	Source string
}

// DetectMainClass looks for the main class in two places, in order:
//
//  1. <buildDir>/resolvedMainClassName, trimmed.
//  2. the mainClassName property in <projectDir>/gradle.properties, then in
//     <gradleUserHome>/gradle.properties.
//
// A missing source is skipped. Finding nothing is not an error: the zero
// MainClass is returned and the run command builder reports it. A
// resolvedMainClassName file that exists but cannot be read yields a
// *model.IOFailure.
func DetectMainClass(buildDir, projectDir, gradleUserHome string) (MainClass, error) {
	artifact := filepath.Join(buildDir, ResolvedMainClassFile)
	data, err := os.ReadFile(artifact)
	switch {
	case err == nil:
		if name := strings.TrimSpace(string(data)); name != "" {
			return MainClass{Name: name, Source: artifact}, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return MainClass{}, &model.IOFailure{Path: artifact, Err: err}
	}

	for _, dir := range []string{projectDir, gradleUserHome} {
		if dir == "" {
			continue
		}
		file := filepath.Join(dir, GradlePropertiesFile)
		name, err := readProperty(file, LegacyMainClassProperty)
		if err != nil {
			return MainClass{}, err
		}
		if name != "" {
			return MainClass{Name: name, Source: file}, nil
		}
	}
	return MainClass{}, nil
}

// readProperty reads one key from a Java properties file, which Gradle
// reads as ISO-8859-1 without ${} expansion. A missing file yields "".
func readProperty(file, key string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &model.IOFailure{Path: file, Err: err}
	}

	loader := properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return "", &model.IOFailure{Path: file, Err: fmt.Errorf("invalid properties file: %w", err)}
	}
	return strings.TrimSpace(props.GetString(key, "")), nil
}

// ResolveMainClass returns the configured main class, or detects one.
func (c *Config) ResolveMainClass() (MainClass, error) {
	if name := strings.TrimSpace(c.MainClassName); name != "" {
		return MainClass{Name: name, Source: "configuration"}, nil
	}
	return DetectMainClass(c.BuildDir, c.ProjectDir, c.GradleUserHome)
}
