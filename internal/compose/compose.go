// Package compose reads the parts of a Docker Compose file java-in-docker
// cares about: which services exist and which host ports a service
// publishes. It is used for preflight diagnostics only; docker compose
// itself stays the authority on the file's meaning.
package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFiles are the file names docker compose looks for in the working
// directory when no -f flag is given, in its order of preference.
var DefaultFiles = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// FindDefault returns the compose file docker compose would pick in dir,
// or "" when there is none.
func FindDefault(dir string) string {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// File is the subset of a compose file needed for diagnostics. Unknown
// fields are ignored by yaml.v3.
type File struct {
	// Name is the optional top-level project name.
	Name string `yaml:"name,omitempty"`

	// Services maps service names to their definitions.
	Services map[string]Service `yaml:"services"`
}

// Service is the subset of a compose service definition that is inspected.
type Service struct {
	Image         string      `yaml:"image,omitempty"`
	ContainerName string      `yaml:"container_name,omitempty"`
	Ports         []PortEntry `yaml:"ports,omitempty"`
}

// Load reads and parses the compose file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses compose YAML bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	if f.Services == nil {
		f.Services = make(map[string]Service)
	}
	return &f, nil
}

// ServiceNames returns the defined service names in sorted order.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasService reports whether the named service is defined.
func (f *File) HasService(name string) bool {
	_, ok := f.Services[name]
	return ok
}

// PublishedPorts returns the host ports the named service publishes. Port
// entries that cannot be interpreted statically (for example ones using
// ${VAR} interpolation) are returned as raw strings in skipped.
func (f *File) PublishedPorts(service string) (ports []PublishedPort, skipped []string) {
	svc, ok := f.Services[service]
	if !ok {
		return nil, nil
	}

	for _, entry := range svc.Ports {
		parsed, err := entry.Published()
		if err != nil {
			skipped = append(skipped, entry.Raw)
			continue
		}
		ports = append(ports, parsed...)
	}
	return ports, skipped
}
