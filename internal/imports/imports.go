// Package imports extracts import statements from a Go code snippet and
// diagnoses each one: is the import path resolvable, and does every symbol
// referenced through its qualifier actually exist there. Unresolved symbols
// get corrected import suggestions from the symbol search engine.
package imports

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pkgscout/internal/goenv"
	"pkgscout/internal/loader"
	"pkgscout/internal/locate"
	"pkgscout/internal/namedist"
	"pkgscout/internal/search"
)

// ErrParse marks an unparsable snippet. It is a reportable condition, not a
// crash: callers surface it in the report instead of letting a scanner
// error propagate.
var ErrParse = errors.New("could not parse code snippet")

// MaxSuggestionsPerSymbol caps the FIX list for one symbol.
var MaxSuggestionsPerSymbol = 10

// maxSimilarNames caps the similar-name suggestions drawn from the resolved
// package itself.
const maxSimilarNames = 5

// Statement is one import plus the exported identifiers the snippet
// references through its qualifier, the Go reading of
// "from X import Y, Z".
type Statement struct {
	Path  string
	Names []string
}

// SymbolDiag is the per-symbol verdict.
type SymbolDiag struct {
	Name        string
	OK          bool
	Suggestions []string // corrected import lines, ranked, capped
}

// Diagnosis is the per-import verdict.
type Diagnosis struct {
	Stmt    Statement
	PathOK  bool // the import path itself resolves
	RepoOK  bool // the module root of the path resolves
	Symbols []SymbolDiag
}

// Extract parses a snippet and returns its import statements. Snippets
// without a package clause are retried with one prepended; a partial AST
// that still carries imports is used as-is. Only a snippet yielding no AST
// at all produces ErrParse.
func Extract(code string) ([]Statement, error) {
	file, err := parseSnippet(code)
	if err != nil {
		return nil, err
	}

	type impInfo struct {
		path      string
		qualifier string
	}
	var imps []impInfo
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p == "" {
			continue
		}
		qual := path.Base(p)
		if imp.Name != nil {
			switch imp.Name.Name {
			case "_", ".":
				// blank and dot imports have no qualifier to track
				imps = append(imps, impInfo{path: p})
				continue
			default:
				qual = imp.Name.Name
			}
		}
		imps = append(imps, impInfo{path: p, qualifier: qual})
	}

	used := make(map[string]map[string]struct{}) // qualifier -> names
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if used[ident.Name] == nil {
			used[ident.Name] = make(map[string]struct{})
		}
		used[ident.Name][sel.Sel.Name] = struct{}{}
		return true
	})

	var out []Statement
	for _, imp := range imps {
		var names []string
		if imp.qualifier != "" {
			for n := range used[imp.qualifier] {
				names = append(names, n)
			}
			sort.Strings(names)
		}
		out = append(out, Statement{Path: imp.path, Names: names})
	}
	return out, nil
}

func parseSnippet(code string) (*ast.File, error) {
	var lastErr error
	for _, src := range []string{code, "package main\n\n" + code} {
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, "snippet.go", src, parser.SkipObjectResolution)
		if err == nil {
			return file, nil
		}
		lastErr = err
		if file != nil && len(file.Imports) > 0 {
			return file, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrParse, lastErr)
}

// Diagnose checks one import statement. pinned is the caller's explicitly
// resolved target, used when the import path falls inside it; other paths
// are resolved against the installed environment.
func Diagnose(ctx context.Context, stmt Statement, pinned locate.Target) Diagnosis {
	d := Diagnosis{Stmt: stmt}

	repo := goenv.TopRepoOf(stmt.Path)
	pkgDir, pathOK := resolvePath(ctx, stmt.Path, pinned)
	d.PathOK = pathOK
	if repo == stmt.Path {
		d.RepoOK = pathOK
	} else {
		_, d.RepoOK = resolvePath(ctx, repo, pinned)
	}

	var pkgNames []string
	if pathOK && pkgDir != "" {
		pkgNames = locate.PackageSymbols(pkgDir)
	}

	env := envFor(repo, pinned)
	for _, name := range stmt.Names {
		sd := SymbolDiag{Name: name}
		if pathOK && contains(pkgNames, name) {
			sd.OK = true
			d.Symbols = append(d.Symbols, sd)
			continue
		}

		var lines []string
		if env != nil {
			for _, c := range env.Symbols(ctx, name) {
				lines = append(lines, suggestionLine(c.Pkg, c.Symbol))
			}
		}
		if pathOK && len(pkgNames) > 0 {
			for _, n := range namedist.RankNames(pkgNames, name)[:min(maxSimilarNames, len(pkgNames))] {
				lines = append(lines, suggestionLine(stmt.Path, n))
			}
		}
		sd.Suggestions = dedupeCap(lines, MaxSuggestionsPerSymbol)
		d.Symbols = append(d.Symbols, sd)
	}
	return d
}

// resolvePath maps an import path to a source directory: inside the pinned
// target first, then the installed environment, then a safe load (which
// confirms resolvability without yielding a directory to scan).
func resolvePath(ctx context.Context, importPath string, pinned locate.Target) (string, bool) {
	if importPath == "" {
		return "", false
	}
	if pinned.Root != "" && pinned.RootPkg != "" {
		if importPath == pinned.RootPkg {
			return pinned.Root, true
		}
		if rest, ok := strings.CutPrefix(importPath, pinned.RootPkg+"/"); ok {
			dir := filepath.Join(pinned.Root, filepath.FromSlash(rest))
			if hasGoFiles(dir) {
				return dir, true
			}
			return "", false
		}
	}
	if dir, ok := goenv.ModuleDir(importPath); ok && hasGoFiles(dir) {
		return dir, true
	}
	if p := loader.Resolve(ctx, importPath); p != nil {
		if len(p.GoFiles) > 0 {
			return filepath.Dir(p.GoFiles[0]), true
		}
		return "", true
	}
	return "", false
}

// envFor builds the search context used for FIX suggestions: the pinned
// target when one was supplied, else the import's own module root.
func envFor(repo string, pinned locate.Target) *search.Env {
	if pinned.Root != "" {
		return search.NewEnv(pinned)
	}
	root, ok := goenv.ModuleDir(repo)
	if !ok {
		return search.NewEnv(locate.Target{Repo: repo})
	}
	return search.NewEnv(locate.Target{Repo: repo, Root: root, RootPkg: repo})
}

func suggestionLine(pkgPath, symbol string) string {
	return fmt.Sprintf("import %q    // %s.%s", pkgPath, path.Base(pkgPath), symbol)
}

func hasGoFiles(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	return err == nil && len(matches) > 0
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func dedupeCap(lines []string, limit int) []string {
	seen := make(map[string]struct{}, len(lines))
	var out []string
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
		if len(out) >= limit {
			break
		}
	}
	return out
}
