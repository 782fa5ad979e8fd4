package loader

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

func needsGoTool(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
}

func TestUnderRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	inside := &packages.Package{GoFiles: []string{filepath.Join(root, "sub", "a.go")}}
	outside := &packages.Package{GoFiles: []string{filepath.Join(t.TempDir(), "b.go")}}
	empty := &packages.Package{}

	assert.True(t, UnderRoot(inside, root))
	assert.False(t, UnderRoot(outside, root))
	assert.True(t, UnderRoot(empty, root), "a package with no files cannot be rejected")
	assert.True(t, UnderRoot(outside, ""), "an empty root pins nothing")
}

func TestResolveEmptyPath(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Resolve(context.Background(), ""))
}

func TestResolveStdlib(t *testing.T) {
	needsGoTool(t)

	p := Resolve(context.Background(), "fmt")
	require.NotNil(t, p)
	assert.Equal(t, "fmt", p.PkgPath)
	assert.NotNil(t, p.Types)
}

func TestResolveNonexistent(t *testing.T) {
	needsGoTool(t)

	assert.Nil(t, Resolve(context.Background(), "example.invalid/definitely/not/a/package"))
}

func TestLoadBadDirYieldsNil(t *testing.T) {
	t.Parallel()

	pkgs := Load(context.Background(), filepath.Join(t.TempDir(), "absent"), "./...")
	assert.Empty(t, pkgs)
}
