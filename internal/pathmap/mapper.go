package pathmap

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// Map translates hostPath into the container filesystem using the first
// mapping whose HostRoot is equal to, or an ancestor of, hostPath.
//
// The returned path is ContainerRoot joined with the remainder of hostPath
// relative to HostRoot, using forward slashes. The boolean is false when no
// mapping matches (the path is "not mapped"); the caller decides whether
// that is fatal.
func Map(hostPath string, mappings []model.VolumeMapping) (string, bool) {
	clean := filepath.Clean(hostPath)

	for _, m := range mappings {
		rel, ok := Relative(m.HostRoot, clean)
		if !ok {
			continue
		}
		return path.Join(filepath.ToSlash(m.ContainerRoot), filepath.ToSlash(rel)), true
	}

	return "", false
}

// Relative returns p relative to root when p is root itself or lies below
// it. The comparison works on path segments: "/build" is not a parent of
// "/buildX".
func Relative(root, p string) (string, bool) {
	root = filepath.Clean(root)
	p = filepath.Clean(p)

	if p == root {
		return "", true
	}

	// A cleaned root only ends with a separator when it is the filesystem
	// root itself ("/" or a volume root such as `C:\`).
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}
