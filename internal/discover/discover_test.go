package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFilesBasic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "sub/b.go", "package sub\n")
	writeFile(t, root, "sub/b_test.go", "package sub\n")
	writeFile(t, root, "vendor/v.go", "package v\n")
	writeFile(t, root, "testdata/t.go", "package t\n")
	writeFile(t, root, ".hidden/h.go", "package h\n")
	writeFile(t, root, "_skip/s.go", "package s\n")
	writeFile(t, root, "notes.txt", "hi\n")

	files, _, err := Files(root, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a.go", filepath.Join("sub", "b.go")}, files)
}

func TestFilesGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".gitignore", "gen/\n")
	writeFile(t, root, "keep.go", "package keep\n")
	writeFile(t, root, "gen/out.go", "package gen\n")

	files, _, err := Files(root, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"keep.go"}, files)
}

// TestFilesBounded verifies the hard cap: a tree with more files than the cap
// returns exactly cap files and stops walking instead of failing.
func TestFilesBounded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	total := 25
	for i := 0; i < total; i++ {
		writeFile(t, root, fmt.Sprintf("f%03d.go", i), "package f\n")
	}

	limit := 10
	files, visited, err := Files(root, limit)
	require.NoError(t, err)
	require.Len(t, files, limit)
	// The walk must stop early: visiting every entry would count the root dir
	// plus all files.
	require.Less(t, visited, total+1)
}

func TestFilesMissingRoot(t *testing.T) {
	t.Parallel()

	files, _, err := Files(filepath.Join(t.TempDir(), "absent"), 0)
	require.NoError(t, err)
	require.Empty(t, files)
}
