package classpath

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// ParseList reads a runtime classpath listing as written by the build:
// one artifact path per line, or host-separator joined lines
// (os.PathListSeparator). Blank lines and lines starting with '#' are
// skipped. Relative entries are resolved against baseDir.
func ParseList(r io.Reader, baseDir string) ([]string, error) {
	var paths []string

	scanner := bufio.NewScanner(r)
	// Single-line classpath listings of large projects easily exceed the
	// default 64 KiB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, p := range filepath.SplitList(line) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !filepath.IsAbs(p) && baseDir != "" {
				p = filepath.Join(baseDir, p)
			}
			paths = append(paths, filepath.Clean(p))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}

// ReadListFile parses the classpath listing at path. Relative entries are
// resolved against the file's directory. Read failures are returned as
// *model.IOFailure; a missing file still satisfies errors.Is(err, fs.ErrNotExist).
func ReadListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.IOFailure{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	paths, err := ParseList(f, filepath.Dir(path))
	if err != nil {
		return nil, &model.IOFailure{Path: path, Err: err}
	}
	return paths, nil
}
