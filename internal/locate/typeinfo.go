package locate

import (
	"context"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"pkgscout/internal/loader"
	"pkgscout/internal/namedist"
)

// TypeInfo locates symbols through a type-checked load of the target. It is
// the fallback tier: slower than Static and it runs the go tool, but it sees
// through type checking, including methods promoted from embedded types,
// which no per-file scan can attribute to the embedding type.
type TypeInfo struct{}

func (TypeInfo) Name() string { return "typeinfo" }

// load resolves the packages to inspect: everything under the pinned root,
// or the resolved import path plus its module's subpackages. Packages whose
// files fall outside an explicit root are rejected so a same-named package
// installed elsewhere cannot leak in.
func (TypeInfo) load(ctx context.Context, q Query) []*packages.Package {
	if q.Root != "" {
		var out []*packages.Package
		for _, p := range loader.Subpackages(ctx, q.Root, MaxSubpackages) {
			if loader.UnderRoot(p, q.Root) {
				out = append(out, p)
			}
		}
		return out
	}
	if q.Repo == "" {
		return nil
	}
	p := loader.Resolve(ctx, q.Repo)
	if p == nil {
		return nil
	}
	if p.Module != nil && p.Module.Dir != "" {
		if pkgs := loader.Subpackages(ctx, p.Module.Dir, MaxSubpackages); len(pkgs) > 0 {
			return pkgs
		}
	}
	return []*packages.Package{p}
}

func (t TypeInfo) Symbols(ctx context.Context, q Query) []Candidate {
	var out []Candidate
	for _, p := range t.load(ctx, q) {
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if !exported(name) || !namedist.Matches(name, q.Symbol) {
				continue
			}
			switch obj := scope.Lookup(name).(type) {
			case *types.TypeName:
				out = append(out, Candidate{Pkg: p.PkgPath, Symbol: name, Signature: name})
			case *types.Func:
				out = append(out, Candidate{Pkg: p.PkgPath, Symbol: name, Signature: funcSignature(name, obj, p.Types)})
			}
		}
	}
	return out
}

func (t TypeInfo) Functions(ctx context.Context, q Query) []Candidate {
	pkgs := t.load(ctx, q)
	if q.PkgHint != "" {
		pkgs = narrowPackages(pkgs, q)
	}
	var out []Candidate
	for _, p := range pkgs {
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if !exported(name) || !namedist.Matches(name, q.FuncHint) {
				continue
			}
			if fn, ok := scope.Lookup(name).(*types.Func); ok {
				out = append(out, Candidate{Pkg: p.PkgPath, Symbol: name, Signature: funcSignature(name, fn, p.Types)})
			}
		}
	}
	return out
}

// narrowPackages applies the subpackage hint: an exact path-element match
// first, then normalized containment, then similarity against the final
// element, and finally the unnarrowed set: a wrong hint widens rather than
// empties the search, since the caller is guessing.
func narrowPackages(pkgs []*packages.Package, q Query) []*packages.Package {
	hint := q.PkgHint
	var exact, contained, similar []*packages.Package
	norm := namedist.Normalize(hint)
	for _, p := range pkgs {
		switch {
		case p.PkgPath == hint || strings.HasSuffix(p.PkgPath, "/"+hint):
			exact = append(exact, p)
		case pkgPathContains(p.PkgPath, norm):
			contained = append(contained, p)
		case namedist.Similarity(lastPathElem(p.PkgPath), hint) >= namedist.MatchThreshold:
			similar = append(similar, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	if len(contained) > 0 {
		return contained
	}
	if len(similar) > 0 {
		return similar
	}
	return pkgs
}

func lastPathElem(pkgPath string) string {
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		return pkgPath[i+1:]
	}
	return pkgPath
}

func (t TypeInfo) Methods(ctx context.Context, q Query) []Method {
	var out []Method
	for _, p := range t.load(ctx, q) {
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if !exported(name) || !namedist.Matches(name, q.TypeHint) {
				continue
			}
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			out = append(out, methodsOf(p, tn, q.MethodHint)...)
		}
	}
	return out
}

func (t TypeInfo) MethodsAcross(ctx context.Context, q Query) []Method {
	var out []Method
	for _, p := range t.load(ctx, q) {
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if !exported(name) {
				continue
			}
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			for _, m := range allMethods(p, tn) {
				if namedist.Matches(m.Name, q.MethodHint) {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

// methodsOf applies the per-type policy to one matched type: with a hint,
// the top-ranked matches; without one, the alphabetical listing.
func methodsOf(p *packages.Package, tn *types.TypeName, hint string) []Method {
	methods := allMethods(p, tn)
	if hint == "" {
		sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
		if len(methods) > MaxMethodsUnhinted {
			methods = methods[:MaxMethodsUnhinted]
		}
		return methods
	}
	var matched []Method
	for _, m := range methods {
		if namedist.Matches(m.Name, hint) {
			matched = append(matched, m)
		}
	}
	namedist.Rank(matched, hint,
		func(m Method) string { return m.Name },
		func(m Method) string { return m.Name })
	if len(matched) > MaxMethodsPerType {
		matched = matched[:MaxMethodsPerType]
	}
	return matched
}

// allMethods lists the exported method set of *T, which includes methods
// promoted from embedded types.
func allMethods(p *packages.Package, tn *types.TypeName) []Method {
	mset := types.NewMethodSet(types.NewPointer(tn.Type()))
	var out []Method
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok || !exported(fn.Name()) {
			continue
		}
		out = append(out, Method{
			Pkg:       p.PkgPath,
			Owner:     tn.Name(),
			Name:      fn.Name(),
			Signature: funcSignature(fn.Name(), fn, p.Types),
		})
	}
	return out
}

// funcSignature renders "Name(params) results" from type information.
func funcSignature(name string, fn *types.Func, in *types.Package) string {
	sig := types.TypeString(fn.Type(), types.RelativeTo(in))
	return name + strings.TrimPrefix(sig, "func")
}
