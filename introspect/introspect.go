// Package introspect is the quick-introspection entry point: given a
// fragment of failing Go code and fuzzy symbol hints, it locates likely
// import paths, types, methods, and functions inside an installed package
// and assembles one plain-text report. The report is deliberately prose,
// not structured data; the consumer is typically a language model.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pkgscout/internal/goenv"
	"pkgscout/internal/imports"
	"pkgscout/internal/loader"
	"pkgscout/internal/locate"
	"pkgscout/internal/search"
)

// Options are the introspection parameters. All hints are fuzzy; see Run
// for the relationships enforced between them.
type Options struct {
	// Code is an optional snippet to run import diagnostics on.
	Code string

	// TypeHint is a fuzzy exported type name (the "class" of other
	// ecosystems).
	TypeHint string

	// MethodHint is a fuzzy method name. Without TypeHint it triggers a
	// noisy module-wide search.
	MethodHint string

	// FuncHint is a fuzzy package-level function name.
	FuncHint string

	// PkgHint narrows a function search to a subpackage. Requires FuncHint.
	PkgHint string

	// Repo is the import path of the target package or module. Mutually
	// exclusive with Dir.
	Repo string

	// Dir is a filesystem path to the package source root. Relative paths
	// are resolved against the module cache, GOROOT/src, and GOPATH/src.
	Dir string

	// MaxSuggestions truncates every candidate list after ranking. Zero
	// means no limit.
	MaxSuggestions int

	// NoImports disables import diagnostics even when Code is set.
	NoImports bool
}

// ValidationError reports a violated parameter relationship. It is raised
// before any file I/O or package loading.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a parameter-validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const usageGuidance = `No sufficient parameters provided for quick introspection.

HOW TO USE (provide parameters based on your error message):
- Import errors: pass code to enable import diagnostics.
- Type issues: provide a type hint and repo (or dir).
- Method issues: provide a method hint and repo (or dir); preferably also a type hint to narrow.
- Function issues: provide a func hint and repo (or dir); optionally a pkg hint to narrow.
Notes: repo must be the package's import path, and is preferred over dir.
`

// Run validates the options, resolves the package context, and assembles
// the introspection report. The only error outcomes are validation errors;
// failed lookups degrade into a well-formed report with explicit not-found
// notes.
func Run(ctx context.Context, opts Options) (string, error) {
	if opts.Repo != "" && opts.Dir != "" {
		return "", validationErrorf("provide only one of repo or dir")
	}
	if opts.PkgHint != "" && opts.FuncHint == "" {
		return "", validationErrorf("pkg hint must be used together with a func hint")
	}

	target, err := resolveTarget(ctx, opts)
	if err != nil {
		return "", err
	}

	anyHint := opts.TypeHint != "" || opts.MethodHint != "" || opts.FuncHint != ""
	hasContext := opts.Repo != "" || target.Root != ""

	if anyHint && opts.Repo != "" && !repoResolves(ctx, opts.Repo) {
		return "", validationErrorf(
			"repo %q could not be resolved to an installed package. Provide dir instead (absolute path, or a path relative to %s)",
			opts.Repo, primaryRoot())
	}
	if (opts.TypeHint != "" || opts.MethodHint != "") && !hasContext {
		return "", validationErrorf("for type/method search, provide repo (import path) or dir (path to the package source)")
	}
	if opts.FuncHint != "" && !hasContext {
		return "", validationErrorf("for function search, provide repo (import path) or dir (path to the package source)")
	}

	code := strings.TrimSpace(opts.Code)
	if code == "" && !anyHint {
		return usageGuidance, nil
	}

	var b strings.Builder
	writeln := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	var stmts []imports.Statement
	if code != "" && !opts.NoImports {
		stmts, err = imports.Extract(code)
		if err != nil {
			writeln("PARSE_ERROR: %v", err)
			writeln("Import diagnostics skipped: the code snippet could not be parsed as Go.")
		}
	}

	env := search.NewEnv(target)
	limit := func(n int) int {
		if opts.MaxSuggestions > 0 && opts.MaxSuggestions < n {
			return opts.MaxSuggestions
		}
		return n
	}

	switch {
	case len(stmts) > 0:
		writeImportSection(ctx, &b, stmts, target, limit)
	case code != "" && !opts.NoImports && err == nil:
		writeln(`No imports found in the provided code. Add a line like: import "pkg/sub"`)
	case code == "" && !opts.NoImports:
		writeln("Import diagnostics skipped: no code provided. Provide code to analyze imports if you want import diagnostics.")
	}

	repoLabel := target.RootPkg
	if repoLabel == "" {
		repoLabel = opts.Repo
	}

	if opts.TypeHint != "" {
		writeln("")
		writeln("=== Method Suggestions (repo=%s, type≈%s, method≈%s) ===", repoLabel, opts.TypeHint, opts.MethodHint)
		methods := env.Methods(ctx, opts.TypeHint, opts.MethodHint)
		if len(methods) == 0 {
			writeln("  (no matching types found)")
		}
		for _, m := range methods[:limit(len(methods))] {
			writeln("  import %q    // method: %s.%s", m.Pkg, m.Owner, m.Signature)
		}
	}

	if opts.MethodHint != "" && opts.TypeHint == "" && hasContext {
		writeln("")
		writeln("=== Method Suggestions (repo=%s, method≈%s, module-wide) ===", repoLabel, opts.MethodHint)
		writeln("NOTE: a method hint was provided without a type hint. Searching across every exported type in the module (may be noisy). Consider adding a fuzzy or exact type hint to narrow the scope and rerun.")
		methods := env.MethodsAcross(ctx, opts.MethodHint)
		if len(methods) == 0 {
			writeln("  (no matching methods found)")
		}
		for _, m := range methods[:limit(len(methods))] {
			writeln("  import %q    // method: %s.%s", m.Pkg, m.Owner, m.Signature)
		}
	}

	if opts.FuncHint != "" {
		writeln("")
		writeln("=== Function Suggestions (repo=%s, pkg≈%s, func≈%s) ===", repoLabel, opts.PkgHint, opts.FuncHint)
		funcs := env.Functions(ctx, opts.FuncHint, opts.PkgHint)
		if len(funcs) == 0 {
			writeln("  (no matching functions found)")
			if opts.PkgHint != "" {
				writeln("NOTE: the pkg hint may not identify a subpackage. Consider removing it and rerunning with only the func hint to broaden the search.")
			}
		}
		for _, c := range funcs[:limit(len(funcs))] {
			writeln("  import %q    // func: %s", c.Pkg, c.Signature)
		}
	}

	return b.String(), nil
}

// resolveTarget pins the search root. An explicit dir wins; a repo is
// located through the installed environment when possible, leaving the
// type-info tier to resolve it otherwise.
func resolveTarget(ctx context.Context, opts Options) (locate.Target, error) {
	if opts.Dir != "" {
		dir, err := goenv.ResolveDir(opts.Dir)
		if err != nil {
			return locate.Target{}, &ValidationError{msg: err.Error()}
		}
		rootPkg := goenv.ModulePathAt(dir)
		if rootPkg == "" {
			rootPkg = filepath.Base(dir)
		}
		return locate.Target{Repo: rootPkg, Root: dir, RootPkg: rootPkg}, nil
	}
	if opts.Repo != "" {
		target := locate.Target{Repo: opts.Repo, RootPkg: opts.Repo}
		if root, ok := goenv.ModuleDir(opts.Repo); ok {
			target.Root = root
		}
		return target, nil
	}
	return locate.Target{}, nil
}

func repoResolves(ctx context.Context, repo string) bool {
	if _, ok := goenv.ModuleDir(repo); ok {
		return true
	}
	return loader.Resolve(ctx, repo) != nil
}

func primaryRoot() string {
	roots := goenv.SearchRoots()
	if len(roots) == 0 {
		return "<module cache>"
	}
	return roots[0]
}

func writeImportSection(ctx context.Context, b *strings.Builder, stmts []imports.Statement, target locate.Target, limit func(int) int) {
	writeln := func(format string, args ...any) {
		fmt.Fprintf(b, format+"\n", args...)
	}

	writeln("=== Import Check & Suggestions ===")
	for _, stmt := range stmts {
		d := imports.Diagnose(ctx, stmt, target)

		status := "OK"
		if !d.PathOK {
			status = "ImportError"
		}
		writeln("")
		writeln("[Import] %q  (module=%s)  -> %s", stmt.Path, goenv.TopRepoOf(stmt.Path), status)

		for _, sd := range d.Symbols {
			if sd.OK {
				writeln("  - Symbol: %s  [OK]", sd.Name)
				continue
			}
			writeln("  - Symbol: %s  [FIX]", sd.Name)
			sugg := sd.Suggestions
			for i, line := range sugg[:limit(len(sugg))] {
				writeln("      %d. %s", i+1, line)
			}
			if len(sugg) == 0 {
				writeln("      (no candidates found)")
			}
		}

		if !d.PathOK {
			if !d.RepoOK {
				writeln("  TIP: The module root of this import may be incorrect.")
				writeln("       Try another import path, or rerun with dir pointing at the package source.")
			} else {
				writeln("  NOTE: The module root resolves; the subpackage path is likely incorrect. Use the suggestions above to fix it.")
			}
		}
	}
}
