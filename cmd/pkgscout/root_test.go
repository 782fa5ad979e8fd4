package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIntrospectNoParamsPrintsGuidance(t *testing.T) {
	out, err := runCmd(t, "introspect")
	require.NoError(t, err)
	assert.Contains(t, out, "HOW TO USE")
}

func TestIntrospectRejectsCodeAndCodeFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "snippet.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	_, err := runCmd(t, "introspect", "--code", "package main", "--code-file", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of --code or --code-file")
}

func TestIntrospectRejectsMissingCodeFile(t *testing.T) {
	_, err := runCmd(t, "introspect", "--code-file", filepath.Join(t.TempDir(), "absent.go"))
	require.Error(t, err)
}

func TestIntrospectSurfacesValidationError(t *testing.T) {
	_, err := runCmd(t, "introspect", "--pkg", "qux")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pkg hint must be used together with a func hint")
}

func TestIntrospectReadsCodeFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "snippet.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n\nfunc main() {}\n"), 0o644))

	out, err := runCmd(t, "introspect", "--code-file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "No imports found")
}
