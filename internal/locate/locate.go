// Package locate defines the symbol-locator capability and its two
// implementations: a static tier that scans source with tree-sitter and
// never builds the target, and a type-info tier that runs a safe
// type-checked load. Locators are best-effort by contract: a failed lookup
// is an empty result, never an error.
package locate

import (
	"context"
	"go/token"
)

// Traversal bounds. Fixed rather than adaptive; exported so callers can tune
// them for ecosystems with unusually large packages.
var (
	// MaxScanFiles caps how many source files the static tier parses per
	// search.
	MaxScanFiles = 400

	// MaxSubpackages caps how many packages the type-info tier enumerates.
	MaxSubpackages = 300

	// MaxResults caps a deduplicated candidate list.
	MaxResults = 30

	// MaxMethodsPerType caps ranked methods per matched type when a method
	// hint is present.
	MaxMethodsPerType = 8

	// MaxMethodsUnhinted caps the alphabetical method listing per matched
	// type when no method hint is present.
	MaxMethodsUnhinted = 20
)

// Candidate is a located exported type or package-level function.
type Candidate struct {
	Pkg       string // import path
	Symbol    string
	Signature string
}

// Method is a located method of an exported type.
type Method struct {
	Pkg       string // import path of the owning package
	Owner     string // receiver type name
	Name      string
	Signature string
}

// Target pins the package being searched.
type Target struct {
	Repo    string // import path hint; may be empty when only Root is known
	Root    string // filesystem root of the package source; may be empty
	RootPkg string // import path the Root directory maps to
}

// Query carries the target plus the fuzzy hints for one search.
type Query struct {
	Target

	Symbol     string
	TypeHint   string
	MethodHint string
	FuncHint   string
	PkgHint    string // narrows function search to a subpackage
}

// Locator finds symbols inside a target package. Implementations are tried
// in a fixed priority order; the first non-empty result wins.
type Locator interface {
	// Name identifies the tier in diagnostics.
	Name() string

	// Symbols returns exported types and package-level functions matching
	// q.Symbol.
	Symbols(ctx context.Context, q Query) []Candidate

	// Functions returns package-level functions matching q.FuncHint,
	// narrowed by q.PkgHint when set.
	Functions(ctx context.Context, q Query) []Candidate

	// Methods returns methods of types matching q.TypeHint, narrowed by
	// q.MethodHint when set.
	Methods(ctx context.Context, q Query) []Method

	// MethodsAcross returns methods matching q.MethodHint from every
	// exported type in the target.
	MethodsAcross(ctx context.Context, q Query) []Method
}

func exported(name string) bool {
	return token.IsExported(name)
}

// pkgPathFor maps a root-relative file path to an import path.
func pkgPathFor(rootPkg, relDir string) string {
	if relDir == "" || relDir == "." {
		return rootPkg
	}
	return rootPkg + "/" + relDir
}
