package model

import (
	"fmt"
	"strings"
)

// ClasspathSeparator joins classpath entries for the JVM inside the
// container. The container is always a Linux environment, so this is ":"
// regardless of the host operating system.
const ClasspathSeparator = ":"

// VolumeMapping pairs a host directory with the path where its contents
// become visible inside the container (a bind mount).
//
// HostRoot must be an absolute host path. ContainerRoot is an absolute,
// forward-slash separated container path that need not exist on the host.
// Values are treated as immutable once constructed.
type VolumeMapping struct {
	// HostRoot is the absolute directory on the host machine.
	HostRoot string `json:"hostRoot"`

	// ContainerRoot is the absolute mount point inside the container.
	ContainerRoot string `json:"containerRoot"`
}

// String returns the "<hostRoot>:<containerRoot>" form expected by the
// docker -v flag.
func (m VolumeMapping) String() string {
	return m.HostRoot + ":" + m.ContainerRoot
}

// EntryOrigin tags a classpath entry with where it came from, so that
// the assembler can apply its ordering policy.
type EntryOrigin string

const (
	// OriginClasses marks a compiled-output directory.
	OriginClasses EntryOrigin = "classes"

	// OriginResources marks a processed-resources directory.
	OriginResources EntryOrigin = "resources"

	// OriginDependency marks a resolved dependency artifact (e.g., a jar).
	OriginDependency EntryOrigin = "dependency"
)

// String returns the string representation of EntryOrigin.
func (o EntryOrigin) String() string {
	return string(o)
}

// IsValid checks whether the EntryOrigin is one of the predefined origins.
func (o EntryOrigin) IsValid() bool {
	switch o {
	case OriginClasses, OriginResources, OriginDependency:
		return true
	default:
		return false
	}
}

// ClasspathEntry is a host-side path that must appear on the container
// classpath, tagged with its origin.
type ClasspathEntry struct {
	Path   string      `json:"path"`
	Origin EntryOrigin `json:"origin"`
}

// ClasspathResolution is the result of classpath assembly.
//
// OrderedContainerPaths lists every compiled-output entry first, then
// resource entries, then dependency artifacts in resolver order. Host paths
// that fell outside every volume mapping are excluded from it and recorded
// in Unmapped, in input order.
type ClasspathResolution struct {
	// OrderedContainerPaths are container-visible paths, de-duplicated.
	OrderedContainerPaths []string `json:"orderedContainerPaths"`

	// Unmapped holds the original host paths that matched no mapping.
	Unmapped []string `json:"unmapped"`
}

// Join returns the classpath string passed to "java -cp".
func (r ClasspathResolution) Join() string {
	return strings.Join(r.OrderedContainerPaths, ClasspathSeparator)
}

// HasUnmapped reports whether any entry could not be mapped into the container.
func (r ClasspathResolution) HasUnmapped() bool {
	return len(r.Unmapped) > 0
}

// RunInvocation holds everything needed to build the
// "docker compose run" argument vector for one execution.
// It is built fresh per execution and never persisted.
type RunInvocation struct {
	// ComposeFile is the compose file passed with -f. Empty means docker
	// compose resolves its default file itself.
	ComposeFile string `json:"composeFile,omitempty"`

	// ContainerName is given to the container via --name.
	ContainerName string `json:"containerName"`

	// ServiceName selects the compose service whose definition is used.
	ServiceName string `json:"serviceName"`

	// ExtraRunArgs are pass-through flags for "docker compose run"
	// (e.g., --service-ports), in the given order.
	ExtraRunArgs []string `json:"extraRunArgs,omitempty"`

	// Volumes are the bind mounts, emitted as -v flags in order.
	Volumes []VolumeMapping `json:"volumes"`

	// Classpath is the assembled container classpath.
	Classpath ClasspathResolution `json:"classpath"`

	// MainClass is the fully qualified entry-point class.
	MainClass string `json:"mainClass"`

	// ExtraJavaArgs are passed to the java executable before -cp.
	ExtraJavaArgs []string `json:"extraJavaArgs,omitempty"`
}

// Validate checks the fields required to build a complete command.
// It returns a *ConfigurationError naming the first missing field.
func (inv RunInvocation) Validate() error {
	if strings.TrimSpace(inv.ServiceName) == "" {
		return NewConfigurationError("serviceName", "service name must not be empty")
	}
	if strings.TrimSpace(inv.ContainerName) == "" {
		return NewConfigurationError("containerName", "container name must not be empty")
	}
	if strings.TrimSpace(inv.MainClass) == "" {
		return NewConfigurationError("mainClassName",
			"main class could not be resolved: set main_class_name or generate resolvedMainClassName in the build directory")
	}
	return nil
}

// String renders a short human-readable summary for logging.
func (inv RunInvocation) String() string {
	return fmt.Sprintf("service=%s container=%s main=%s classpath=%d entries",
		inv.ServiceName, inv.ContainerName, inv.MainClass, len(inv.Classpath.OrderedContainerPaths))
}
