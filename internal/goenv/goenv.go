// Package goenv resolves where installed Go package source lives: the module
// cache, GOROOT, GOPATH, or an explicitly supplied directory.
package goenv

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// SearchRoots returns the directories that installed package source is
// resolved against, in priority order: the module cache, GOROOT/src, and
// GOPATH/src. Only existing directories are returned.
func SearchRoots() []string {
	var roots []string
	for _, dir := range []string{modCache(), filepath.Join(build.Default.GOROOT, "src"), filepath.Join(build.Default.GOPATH, "src")} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}
	return roots
}

func modCache() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	if gopath := build.Default.GOPATH; gopath != "" {
		return filepath.Join(gopath, "pkg", "mod")
	}
	return ""
}

// ResolveDir resolves a package directory. Absolute paths are used as-is.
// Relative paths are tried against each search root in order; the first
// existing directory wins.
func ResolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
		return "", fmt.Errorf("dir does not exist or is not a directory: %s", dir)
	}
	roots := SearchRoots()
	for _, root := range roots {
		candidate := filepath.Join(root, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("dir %q not found under any search root (%s)", dir, strings.Join(roots, ", "))
}

// ModuleDir locates the source directory for an import path without invoking
// the go tool: GOROOT/src for standard-library-style paths, then GOPATH/src,
// then the newest matching module in the module cache.
func ModuleDir(importPath string) (string, bool) {
	if importPath == "" {
		return "", false
	}
	for _, root := range []string{filepath.Join(build.Default.GOROOT, "src"), filepath.Join(build.Default.GOPATH, "src")} {
		candidate := filepath.Join(root, filepath.FromSlash(importPath))
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return cacheDir(importPath)
}

// cacheDir searches the module cache for importPath. The module boundary is
// unknown, so every path prefix is tried, longest first, and the remainder is
// treated as a package subdirectory. Among multiple cached versions the
// semver-newest wins.
func cacheDir(importPath string) (string, bool) {
	cache := modCache()
	if cache == "" {
		return "", false
	}
	parts := strings.Split(importPath, "/")
	for n := len(parts); n > 0; n-- {
		modPath := strings.Join(parts[:n], "/")
		escaped, err := module.EscapePath(modPath)
		if err != nil {
			continue
		}
		parent := filepath.Join(cache, filepath.FromSlash(filepath.Dir(escaped)))
		base := filepath.Base(escaped)
		entries, err := os.ReadDir(parent)
		if err != nil {
			continue
		}
		var versions []string
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if rest, ok := strings.CutPrefix(name, base+"@"); ok && semver.IsValid(rest) {
				versions = append(versions, rest)
			}
		}
		if len(versions) == 0 {
			continue
		}
		sort.Slice(versions, func(i, j int) bool {
			return semver.Compare(versions[i], versions[j]) > 0
		})
		dir := filepath.Join(parent, base+"@"+versions[0])
		if n < len(parts) {
			dir = filepath.Join(dir, filepath.FromSlash(strings.Join(parts[n:], "/")))
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// ModulePathAt returns the module path declared by the nearest go.mod at or
// above dir, or "" when none is found. Used to map file paths back to import
// paths when the caller supplied a raw directory.
func ModulePathAt(dir string) string {
	for d := dir; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		if err == nil {
			if path := modfile.ModulePath(data); path != "" {
				return path
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}

// TopRepoOf returns the module-root portion of an import path: the first
// element for standard-library-style paths, else the conventional
// host/owner/repo prefix.
func TopRepoOf(importPath string) string {
	parts := strings.Split(importPath, "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	if !strings.Contains(parts[0], ".") {
		return parts[0]
	}
	if len(parts) >= 3 {
		return strings.Join(parts[:3], "/")
	}
	return importPath
}
