// Package discovery finds test executables in the build directory by glob.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bgricker/testreport/internal/config"
)

// ErrNoTests indicates that the discovery glob matched no executables.
var ErrNoTests = errors.New("no test executables discovered")

// testPrefix is stripped from file names to form test names.
const testPrefix = "test_"

// Tests returns a spec for every executable file under root matching pattern.
// Commands are relative to root and results are sorted lexicographically.
func Tests(root, pattern string) ([]config.TestSpec, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}
	glob := pattern
	if !filepath.IsAbs(glob) {
		glob = filepath.Join(root, glob)
	}
	found, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	paths := make([]string, 0, len(found))
	for _, p := range found {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", p, err)
		}
		if info.IsDir() || !executable(info) {
			continue
		}
		paths = append(paths, mustRelOrClean(root, p))
	}
	if len(paths) == 0 {
		return nil, ErrNoTests
	}
	sort.Strings(paths)

	specs := make([]config.TestSpec, 0, len(paths))
	for _, p := range paths {
		command := p
		if !filepath.IsAbs(command) {
			command = "./" + filepath.ToSlash(command)
		}
		specs = append(specs, config.TestSpec{Name: testName(p), Command: command})
	}
	return specs, nil
}

// Merge appends discovered specs whose names are not already in base.
func Merge(base, discovered []config.TestSpec) []config.TestSpec {
	seen := make(map[string]struct{}, len(base))
	out := make([]config.TestSpec, 0, len(base)+len(discovered))
	for _, spec := range base {
		seen[spec.Name] = struct{}{}
		out = append(out, spec)
	}
	for _, spec := range discovered {
		if _, ok := seen[spec.Name]; ok {
			continue
		}
		seen[spec.Name] = struct{}{}
		out = append(out, spec)
	}
	return out
}

func testName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if trimmed := strings.TrimPrefix(name, testPrefix); trimmed != "" {
		return trimmed
	}
	return name
}

func executable(info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
