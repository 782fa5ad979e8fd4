// Package search exposes the public search operations. Each operation walks
// the locator chain in priority order (static analysis first, type-checked
// load second) and takes the first tier that produces candidates, then
// deduplicates, ranks, and caps the result.
package search

import (
	"context"

	"go.uber.org/zap"

	"pkgscout/internal/debuglog"
	"pkgscout/internal/locate"
	"pkgscout/internal/namedist"
)

// Env is one resolved search context: the pinned target plus the locator
// chain to try.
type Env struct {
	Target   locate.Target
	Locators []locate.Locator
}

// NewEnv builds the default static-then-typeinfo chain for a target.
func NewEnv(target locate.Target) *Env {
	return &Env{
		Target:   target,
		Locators: []locate.Locator{locate.Static{}, locate.TypeInfo{}},
	}
}

// Symbols finds exported types and package-level functions matching symbol.
func (e *Env) Symbols(ctx context.Context, symbol string) []locate.Candidate {
	q := locate.Query{Target: e.Target, Symbol: symbol}
	for _, loc := range e.Locators {
		if cands := loc.Symbols(ctx, q); len(cands) > 0 {
			debuglog.L.Debug("symbol search", zap.String("tier", loc.Name()), zap.Int("candidates", len(cands)))
			return finishCandidates(cands, symbol)
		}
	}
	return nil
}

// Functions finds package-level functions matching funcFragment, narrowed by
// pkgHint when non-empty.
func (e *Env) Functions(ctx context.Context, funcFragment, pkgHint string) []locate.Candidate {
	q := locate.Query{Target: e.Target, FuncHint: funcFragment, PkgHint: pkgHint}
	for _, loc := range e.Locators {
		if cands := loc.Functions(ctx, q); len(cands) > 0 {
			debuglog.L.Debug("function search", zap.String("tier", loc.Name()), zap.Int("candidates", len(cands)))
			return finishCandidates(cands, funcFragment)
		}
	}
	return nil
}

// Methods finds methods of types matching typeHint, narrowed by methodHint
// when non-empty. The per-type ordering produced by the locator is
// preserved; only deduplication and the overall cap apply here.
func (e *Env) Methods(ctx context.Context, typeHint, methodHint string) []locate.Method {
	q := locate.Query{Target: e.Target, TypeHint: typeHint, MethodHint: methodHint}
	for _, loc := range e.Locators {
		if methods := loc.Methods(ctx, q); len(methods) > 0 {
			debuglog.L.Debug("method search", zap.String("tier", loc.Name()), zap.Int("candidates", len(methods)))
			return capMethods(dedupeMethods(methods), locate.MaxMethodsUnhinted)
		}
	}
	return nil
}

// MethodsAcross finds methods matching methodHint on every exported type in
// the target. Unscoped; the caller is expected to warn about the noise.
func (e *Env) MethodsAcross(ctx context.Context, methodHint string) []locate.Method {
	q := locate.Query{Target: e.Target, MethodHint: methodHint}
	for _, loc := range e.Locators {
		if methods := loc.MethodsAcross(ctx, q); len(methods) > 0 {
			debuglog.L.Debug("repo-wide method search", zap.String("tier", loc.Name()), zap.Int("candidates", len(methods)))
			methods = dedupeMethods(methods)
			namedist.Rank(methods, methodHint,
				func(m locate.Method) string { return m.Name },
				func(m locate.Method) string { return m.Pkg })
			return capMethods(methods, locate.MaxResults)
		}
	}
	return nil
}

// finishCandidates deduplicates by (symbol, pkg), ranks by the four-key
// contract with the import-path length as tiebreak, and caps the list.
func finishCandidates(cands []locate.Candidate, target string) []locate.Candidate {
	type key struct{ sym, pkg string }
	seen := make(map[key]struct{}, len(cands))
	var out []locate.Candidate
	for _, c := range cands {
		k := key{c.Symbol, c.Pkg}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	namedist.Rank(out, target,
		func(c locate.Candidate) string { return c.Symbol },
		func(c locate.Candidate) string { return c.Pkg })
	if len(out) > locate.MaxResults {
		out = out[:locate.MaxResults]
	}
	return out
}

func dedupeMethods(methods []locate.Method) []locate.Method {
	type key struct{ pkg, owner, name string }
	seen := make(map[key]struct{}, len(methods))
	var out []locate.Method
	for _, m := range methods {
		k := key{m.Pkg, m.Owner, m.Name}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}

func capMethods(methods []locate.Method, limit int) []locate.Method {
	if len(methods) > limit {
		return methods[:limit]
	}
	return methods
}
