package imports

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgscout/internal/locate"
)

const fullSnippet = `package main

import (
	"fmt"
	q "foo/qux"
)

func main() {
	fmt.Println(q.NewBaz(), q.Baz{})
}
`

func TestExtractFullFile(t *testing.T) {
	t.Parallel()

	stmts, err := Extract(fullSnippet)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Equal(t, Statement{Path: "fmt", Names: []string{"Println"}}, stmts[0])
	assert.Equal(t, Statement{Path: "foo/qux", Names: []string{"Baz", "NewBaz"}}, stmts[1])
}

func TestExtractNoPackageClause(t *testing.T) {
	t.Parallel()

	stmts, err := Extract("import \"strings\"\n\nvar _ = strings.ToUpper(\"x\")\n")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, Statement{Path: "strings", Names: []string{"ToUpper"}}, stmts[0])
}

func TestExtractBlankAndDotImports(t *testing.T) {
	t.Parallel()

	code := `package main

import (
	_ "net/http/pprof"
	. "math"
)
`
	stmts, err := Extract(code)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "net/http/pprof", stmts[0].Path)
	assert.Empty(t, stmts[0].Names)
	assert.Equal(t, "math", stmts[1].Path)
	assert.Empty(t, stmts[1].Names)
}

func TestExtractUnparsable(t *testing.T) {
	t.Parallel()

	_, err := Extract("this is not go code @@@")
	require.ErrorIs(t, err, ErrParse)
}

func TestExtractNoImports(t *testing.T) {
	t.Parallel()

	stmts, err := Extract("package main\n\nfunc main() {}\n")
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func fixtureTarget(t *testing.T) locate.Target {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":     "module foo\n\ngo 1.24\n",
		"foo.go":     "package foo\n\ntype Client struct{}\n",
		"qux/qux.go": "package qux\n\nconst MaxLen = 64\n\nvar DefaultName = \"qux\"\n\ntype Baz struct{}\n\nfunc NewBaz() *Baz { return &Baz{} }\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return locate.Target{Repo: "foo", Root: root, RootPkg: "foo"}
}

func TestDiagnoseResolvableImport(t *testing.T) {
	t.Parallel()

	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/qux", Names: []string{"Baz"}}, pinned)

	assert.True(t, d.PathOK)
	assert.True(t, d.RepoOK)
	require.Len(t, d.Symbols, 1)
	assert.True(t, d.Symbols[0].OK)
	assert.Empty(t, d.Symbols[0].Suggestions)
}

func TestDiagnoseWrongSubpackage(t *testing.T) {
	t.Parallel()

	// The module root resolves but foo/bar does not; the symbol search must
	// point at foo/qux where Baz actually lives.
	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/bar", Names: []string{"Baz"}}, pinned)

	assert.False(t, d.PathOK)
	assert.True(t, d.RepoOK)
	require.Len(t, d.Symbols, 1)
	assert.False(t, d.Symbols[0].OK)
	assert.Contains(t, d.Symbols[0].Suggestions, `import "foo/qux"    // qux.Baz`)
}

func TestDiagnoseConstAndVarSymbols(t *testing.T) {
	t.Parallel()

	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/qux", Names: []string{"MaxLen", "DefaultName"}}, pinned)

	require.True(t, d.PathOK)
	require.Len(t, d.Symbols, 2)
	for _, sd := range d.Symbols {
		assert.True(t, sd.OK, "exported package-level value %s must verify", sd.Name)
		assert.Empty(t, sd.Suggestions)
	}
}

func TestDiagnoseMisspelledConst(t *testing.T) {
	t.Parallel()

	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/qux", Names: []string{"MaxLne"}}, pinned)

	require.Len(t, d.Symbols, 1)
	assert.False(t, d.Symbols[0].OK)
	require.NotEmpty(t, d.Symbols[0].Suggestions)
	assert.Equal(t, `import "foo/qux"    // qux.MaxLen`, d.Symbols[0].Suggestions[0])
}

func TestDiagnoseMisspelledSymbol(t *testing.T) {
	t.Parallel()

	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/qux", Names: []string{"Bazz"}}, pinned)

	assert.True(t, d.PathOK)
	require.Len(t, d.Symbols, 1)
	assert.False(t, d.Symbols[0].OK)
	require.NotEmpty(t, d.Symbols[0].Suggestions)
	assert.Equal(t, `import "foo/qux"    // qux.Baz`, d.Symbols[0].Suggestions[0])
}

func TestDiagnoseSuggestionCap(t *testing.T) {
	t.Parallel()

	pinned := fixtureTarget(t)
	d := Diagnose(context.Background(), Statement{Path: "foo/bar", Names: []string{"Baz"}}, pinned)

	require.Len(t, d.Symbols, 1)
	assert.LessOrEqual(t, len(d.Symbols[0].Suggestions), MaxSuggestionsPerSymbol)
}

func TestDedupeCap(t *testing.T) {
	t.Parallel()

	lines := []string{"a", "b", "a", "c", "b", "d"}
	assert.Equal(t, []string{"a", "b", "c"}, dedupeCap(lines, 3))
}
