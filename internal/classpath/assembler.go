package classpath

import (
	"github.com/shinji-kodama/java-in-docker/internal/model"
	"github.com/shinji-kodama/java-in-docker/internal/pathmap"
)

// Input holds the host facts and mount points needed for one assembly.
type Input struct {
	// ClassesDirs are compiled-output directories, in order.
	ClassesDirs []string

	// ResourcesDir is the processed resources directory. Optional.
	ResourcesDir string

	// Dependencies are resolved artifact files in resolver order.
	Dependencies []string

	HostBuildRoot           string
	HostDependencyCacheRoot string

	ContainerBuildRoot           string
	ContainerDependencyCacheRoot string
}

// Mappings returns the two volume mappings in matching order. The build
// root is checked first since classes and resources live under it.
func (in Input) Mappings() []model.VolumeMapping {
	return []model.VolumeMapping{
		{HostRoot: in.HostBuildRoot, ContainerRoot: in.ContainerBuildRoot},
		{HostRoot: in.HostDependencyCacheRoot, ContainerRoot: in.ContainerDependencyCacheRoot},
	}
}

// Entries returns the tagged host entries in classpath policy order:
// classes, then resources, then dependencies.
func Entries(in Input) []model.ClasspathEntry {
	entries := make([]model.ClasspathEntry, 0, len(in.ClassesDirs)+1+len(in.Dependencies))
	for _, dir := range in.ClassesDirs {
		entries = append(entries, model.ClasspathEntry{Path: dir, Origin: model.OriginClasses})
	}
	if in.ResourcesDir != "" {
		entries = append(entries, model.ClasspathEntry{Path: in.ResourcesDir, Origin: model.OriginResources})
	}
	for _, dep := range in.Dependencies {
		entries = append(entries, model.ClasspathEntry{Path: dep, Origin: model.OriginDependency})
	}
	return entries
}

// Assemble maps every entry into the container and returns the ordered,
// de-duplicated container classpath together with the host paths that
// could not be mapped.
//
// Unmapped entries are not an error here; see ResolutionError.
func Assemble(in Input) model.ClasspathResolution {
	mappings := in.Mappings()
	entries := Entries(in)

	res := model.ClasspathResolution{
		OrderedContainerPaths: make([]string, 0, len(entries)),
	}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		containerPath, ok := pathmap.Map(e.Path, mappings)
		if !ok {
			res.Unmapped = append(res.Unmapped, e.Path)
			continue
		}
		if _, dup := seen[containerPath]; dup {
			continue
		}
		seen[containerPath] = struct{}{}
		res.OrderedContainerPaths = append(res.OrderedContainerPaths, containerPath)
	}

	return res
}

// ResolutionError returns an *model.UnresolvedPathError describing the
// unmapped entries of res, or nil when every entry was mapped.
func ResolutionError(res model.ClasspathResolution) error {
	if !res.HasUnmapped() {
		return nil
	}
	paths := make([]string, len(res.Unmapped))
	copy(paths, res.Unmapped)
	return &model.UnresolvedPathError{Paths: paths}
}
