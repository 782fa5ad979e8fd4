// Package loader wraps go/packages behind a safe-load contract: loading a
// package never returns an error to the caller. Load failures, including a
// missing go toolchain, collapse into an absent result, and the go tool's
// diagnostics are captured into a buffer that is discarded unless debug
// logging is on. This is the substrate of the runtime fallback tier; the
// static tier never touches it.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"pkgscout/internal/debuglog"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedTypes |
	packages.NeedModule

// Load loads patterns from dir with full type information. Any failure
// yields nil; per-package errors drop the affected package only.
func Load(ctx context.Context, dir string, patterns ...string) []*packages.Package {
	var capture bytes.Buffer
	var mu sync.Mutex

	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
		Logf: func(format string, args ...any) {
			mu.Lock()
			fmt.Fprintf(&capture, format+"\n", args...)
			mu.Unlock()
		},
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		debuglog.L.Debug("package load failed",
			zap.Strings("patterns", patterns),
			zap.Error(err),
			zap.String("tool_output", capture.String()))
		return nil
	}

	var usable []*packages.Package
	for _, p := range pkgs {
		if p.Types == nil || p.PkgPath == "" {
			continue
		}
		usable = append(usable, p)
	}
	if len(usable) == 0 && capture.Len() > 0 {
		debuglog.L.Debug("package load produced nothing usable",
			zap.Strings("patterns", patterns),
			zap.String("tool_output", capture.String()))
	}
	return usable
}

// Resolve loads a single package by import path. It returns nil when the
// path does not resolve cleanly; a package that loads with errors is treated
// as unresolved, because resolvability is exactly what callers are checking.
func Resolve(ctx context.Context, importPath string) *packages.Package {
	if importPath == "" {
		return nil
	}
	for _, p := range Load(ctx, "", importPath) {
		if p.PkgPath == importPath && len(p.Errors) == 0 {
			return p
		}
	}
	return nil
}

// Subpackages enumerates packages under dir (the ./... pattern), bounded to
// limit. Broken packages are skipped, not fatal.
func Subpackages(ctx context.Context, dir string, limit int) []*packages.Package {
	pkgs := Load(ctx, dir, "./...")
	var out []*packages.Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// UnderRoot reports whether a package's source files fall under root. Used
// to reject a same-named package installed elsewhere when the caller pinned
// an explicit package root.
func UnderRoot(p *packages.Package, root string) bool {
	if root == "" {
		return true
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return true
	}
	files := p.GoFiles
	if len(files) == 0 {
		files = p.CompiledGoFiles
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) || abs == rootAbs {
			return true
		}
	}
	return len(files) == 0
}
