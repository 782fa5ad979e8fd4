package locate

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"pkgscout/internal/debuglog"
	"pkgscout/internal/discover"
	"pkgscout/internal/lang"
	"pkgscout/internal/namedist"
)

// Static locates symbols by parsing source files with tree-sitter. It never
// loads or builds the target package, so side-effect-heavy dependencies cost
// nothing. A file that fails to read or parse contributes no candidates and
// never aborts the walk.
type Static struct{}

func (Static) Name() string { return "static" }

type symDef struct {
	pkg  string // import path
	name string
	sig  string
}

type methodDef struct {
	pkg   string
	owner string
	name  string
	sig   string
}

type fileScan struct {
	types   []symDef
	funcs   []symDef
	methods []methodDef
	values  []symDef // package-level consts and vars
}

// scan parses up to MaxScanFiles files under the target root and collects
// every exported definition. Returns nil when the target has no usable root.
func (Static) scan(q Query) *fileScan {
	root, rootPkg := q.Root, q.RootPkg
	if root == "" {
		return nil
	}
	if rootPkg == "" {
		rootPkg = filepath.Base(root)
	}

	files, _, err := discover.Files(root, MaxScanFiles)
	if err != nil || len(files) == 0 {
		return nil
	}

	query, err := lang.TagQuery()
	if err != nil {
		debuglog.L.Debug("static tier unavailable", zap.Error(err))
		return nil
	}
	parser := lang.NewParser()

	out := &fileScan{}
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		pkgPath := pkgPathFor(rootPkg, filepath.ToSlash(filepath.Dir(rel)))
		scanSource(parser, query, source, pkgPath, out)
	}
	return out
}

func scanSource(parser *sitter.Parser, query *sitter.Query, source []byte, pkgPath string, out *fileScan) {
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode, defNode *sitter.Node
		var capture string
		for _, c := range match.Captures {
			cname := query.CaptureNameForId(c.Index)
			switch cname {
			case "name":
				nameNode = c.Node
			case "definition.type", "definition.function", "definition.method",
				"definition.constant", "definition.variable":
				capture = cname
				defNode = c.Node
			}
		}
		if nameNode == nil || defNode == nil || capture == "" {
			continue
		}

		name := lang.NodeText(nameNode, source)
		if !exported(name) {
			continue
		}

		switch capture {
		case "definition.type":
			out.types = append(out.types, symDef{
				pkg:  pkgPath,
				name: name,
				sig:  lang.ExtractSignature(defNode, true, false, source),
			})
		case "definition.function":
			out.funcs = append(out.funcs, symDef{
				pkg:  pkgPath,
				name: name,
				sig:  lang.ExtractSignature(defNode, false, false, source),
			})
		case "definition.method":
			owner := lang.FindReceiverType(defNode, source)
			if owner == "" || !exported(owner) {
				continue
			}
			out.methods = append(out.methods, methodDef{
				pkg:   pkgPath,
				owner: owner,
				name:  name,
				sig:   lang.ExtractSignature(defNode, false, true, source),
			})
		case "definition.constant", "definition.variable":
			// const and var declarations also occur inside function bodies;
			// only the package-level ones are symbols of the package.
			if p := defNode.Parent(); p == nil || p.Type() != "source_file" {
				continue
			}
			out.values = append(out.values, symDef{pkg: pkgPath, name: name, sig: name})
		}
	}
}

func (s Static) Symbols(_ context.Context, q Query) []Candidate {
	scan := s.scan(q)
	if scan == nil {
		return nil
	}
	var out []Candidate
	for _, d := range append(scan.types, scan.funcs...) {
		if namedist.Matches(d.name, q.Symbol) {
			out = append(out, Candidate{Pkg: d.pkg, Symbol: d.name, Signature: d.sig})
		}
	}
	return out
}

func (s Static) Functions(_ context.Context, q Query) []Candidate {
	scan := s.scan(q)
	if scan == nil {
		return nil
	}
	var matched []symDef
	for _, d := range scan.funcs {
		if namedist.Matches(d.name, q.FuncHint) {
			matched = append(matched, d)
		}
	}
	if q.PkgHint != "" {
		matched = narrowByPkg(matched, q.PkgHint)
	}
	var out []Candidate
	for _, d := range matched {
		out = append(out, Candidate{Pkg: d.pkg, Symbol: d.name, Signature: d.sig})
	}
	return out
}

// narrowByPkg keeps functions whose import path matches the subpackage hint:
// normalized containment first, then similarity against the final path
// element.
func narrowByPkg(defs []symDef, hint string) []symDef {
	norm := namedist.Normalize(hint)
	var contained []symDef
	for _, d := range defs {
		if pkgPathContains(d.pkg, norm) {
			contained = append(contained, d)
		}
	}
	if len(contained) > 0 {
		return contained
	}
	var similar []symDef
	for _, d := range defs {
		if namedist.Similarity(path.Base(d.pkg), hint) >= namedist.MatchThreshold {
			similar = append(similar, d)
		}
	}
	return similar
}

func pkgPathContains(pkgPath, normHint string) bool {
	if normHint == "" {
		return false
	}
	flat := namedist.Normalize(strings.ReplaceAll(pkgPath, "/", ""))
	return strings.Contains(flat, normHint)
}

func (s Static) Methods(_ context.Context, q Query) []Method {
	scan := s.scan(q)
	if scan == nil {
		return nil
	}

	type typeKey struct{ pkg, name string }
	matchedTypes := make(map[typeKey]struct{})
	for _, d := range scan.types {
		if namedist.Matches(d.name, q.TypeHint) {
			matchedTypes[typeKey{d.pkg, d.name}] = struct{}{}
		}
	}
	if len(matchedTypes) == 0 {
		return nil
	}

	byOwner := make(map[typeKey][]methodDef)
	for _, m := range scan.methods {
		key := typeKey{m.pkg, m.owner}
		if _, ok := matchedTypes[key]; ok {
			byOwner[key] = append(byOwner[key], m)
		}
	}

	// Deterministic owner order; the per-type method order is the ranked
	// order from selectMethods and must be preserved.
	keys := make([]typeKey, 0, len(byOwner))
	for key := range byOwner {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pkg != keys[j].pkg {
			return keys[i].pkg < keys[j].pkg
		}
		return keys[i].name < keys[j].name
	})

	var out []Method
	for _, key := range keys {
		out = append(out, selectMethods(byOwner[key], q.MethodHint)...)
	}
	return out
}

func (s Static) MethodsAcross(_ context.Context, q Query) []Method {
	scan := s.scan(q)
	if scan == nil {
		return nil
	}
	var out []Method
	for _, m := range scan.methods {
		if namedist.Matches(m.name, q.MethodHint) {
			out = append(out, Method{Pkg: m.pkg, Owner: m.owner, Name: m.name, Signature: m.sig})
		}
	}
	sortMethods(out)
	return out
}

// selectMethods applies the per-type method policy: with a hint, the top
// MaxMethodsPerType ranked matches; without one, every exported method
// alphabetically up to MaxMethodsUnhinted.
func selectMethods(methods []methodDef, hint string) []Method {
	if hint != "" {
		var matched []methodDef
		for _, m := range methods {
			if namedist.Matches(m.name, hint) {
				matched = append(matched, m)
			}
		}
		namedist.Rank(matched, hint,
			func(m methodDef) string { return m.name },
			func(m methodDef) string { return m.name })
		if len(matched) > MaxMethodsPerType {
			matched = matched[:MaxMethodsPerType]
		}
		return toMethods(matched)
	}

	sorted := make([]methodDef, len(methods))
	copy(sorted, methods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	if len(sorted) > MaxMethodsUnhinted {
		sorted = sorted[:MaxMethodsUnhinted]
	}
	return toMethods(sorted)
}

// PackageSymbols returns the exported top-level type, function, constant,
// and variable names defined by the .go files directly in dir
// (non-recursive). Used by import diagnostics to check whether a referenced
// symbol exists in the imported package without loading it.
func PackageSymbols(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	query, err := lang.TagQuery()
	if err != nil {
		return nil
	}
	parser := lang.NewParser()

	out := &fileScan{}
	seen := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		scanSource(parser, query, source, "", out)
		seen++
		if seen >= MaxScanFiles {
			break
		}
	}

	set := make(map[string]struct{})
	for _, d := range out.types {
		set[d.name] = struct{}{}
	}
	for _, d := range out.funcs {
		set[d.name] = struct{}{}
	}
	for _, d := range out.values {
		set[d.name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func toMethods(defs []methodDef) []Method {
	out := make([]Method, 0, len(defs))
	for _, m := range defs {
		out = append(out, Method{Pkg: m.pkg, Owner: m.owner, Name: m.name, Signature: m.sig})
	}
	return out
}

func sortMethods(ms []Method) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Pkg != ms[j].Pkg {
			return ms[i].Pkg < ms[j].Pkg
		}
		if ms[i].Owner != ms[j].Owner {
			return ms[i].Owner < ms[j].Owner
		}
		return ms[i].Name < ms[j].Name
	})
}
