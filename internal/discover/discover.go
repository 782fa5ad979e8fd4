// Package discover finds Go source files under a package root, with a hard
// cap on the number of files so very large modules stay cheap to scan.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"vendor":       {},
	"testdata":     {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
}

// Files returns up to maxFiles root-relative .go file paths under root,
// sorted, along with the number of entries visited before the walk stopped.
// Test files, hidden and underscore-prefixed entries, symlinks, vendored
// trees, and .gitignored paths are skipped. A broken subtree never fails the
// walk.
func Files(root string, maxFiles int) ([]string, int, error) {
	gi := loadGitignore(root)

	var results []string
	visited := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		visited++

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}

		if maxFiles > 0 && len(results) >= maxFiles {
			return filepath.SkipAll
		}

		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, visited, err
	}

	sort.Strings(results)
	return results, visited, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
