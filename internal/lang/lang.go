// Package lang holds the tree-sitter configuration used by the static
// analysis tier: the Go grammar and its embedded tag query.
package lang

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

//go:embed queries/go.scm
var queryFS embed.FS

var whitespaceRe = regexp.MustCompile(`\s+`)

var (
	queryOnce sync.Once
	tagQuery  *sitter.Query
	queryErr  error
)

// Grammar returns the tree-sitter Go language.
func Grammar() *sitter.Language {
	return golang.GetLanguage()
}

// NewParser creates a fresh parser for Go source. Parsers are not safe for
// concurrent use; each caller gets its own.
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(Grammar())
	return p
}

// TagQuery returns the compiled tag query (safe to share across callers).
func TagQuery() (*sitter.Query, error) {
	queryOnce.Do(func() {
		data, err := queryFS.ReadFile("queries/go.scm")
		if err != nil {
			queryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, Grammar())
		if err != nil {
			queryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		tagQuery = q
	})
	return tagQuery, queryErr
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// FindReceiverType extracts the receiver type name from a method_declaration
// node, unwrapping pointer and generic receivers. Returns "" if the node has
// no receiver.
func FindReceiverType(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "parameter_list" {
			continue
		}
		if !isReceiverList(node, child) {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			param := child.Child(j)
			if param.Type() == "parameter_declaration" {
				return extractTypeName(param, source)
			}
		}
	}
	return ""
}

// extractTypeName pulls the bare type name out of a receiver declaration,
// unwrapping pointer_type and generic_type wrappers.
func extractTypeName(param *sitter.Node, source []byte) string {
	for i := 0; i < int(param.ChildCount()); i++ {
		child := param.Child(i)
		switch child.Type() {
		case "type_identifier":
			return NodeText(child, source)
		case "pointer_type", "generic_type":
			for k := 0; k < int(child.ChildCount()); k++ {
				inner := child.Child(k)
				if inner.Type() == "type_identifier" {
					return NodeText(inner, source)
				}
				if inner.Type() == "generic_type" {
					for m := 0; m < int(inner.ChildCount()); m++ {
						if inner.Child(m).Type() == "type_identifier" {
							return NodeText(inner.Child(m), source)
						}
					}
				}
			}
		}
	}
	return ""
}

// ExtractSignature renders a compact signature for a definition node: the
// bare name for type declarations, name+params+result for functions and
// methods (receiver list omitted).
func ExtractSignature(defNode *sitter.Node, isType, isMethod bool, source []byte) string {
	if isType {
		for i := 0; i < int(defNode.ChildCount()); i++ {
			child := defNode.Child(i)
			if child.Type() == "type_spec" {
				for j := 0; j < int(child.ChildCount()); j++ {
					if child.Child(j).Type() == "type_identifier" {
						return NodeText(child.Child(j), source)
					}
				}
			}
			if child.Type() == "type_identifier" {
				return NodeText(child, source)
			}
		}
		return ""
	}

	var name, params, result string
	for i := 0; i < int(defNode.ChildCount()); i++ {
		child := defNode.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier":
			name = NodeText(child, source)
		case "parameter_list":
			// A parenthesized result is also a parameter_list: the first
			// non-receiver list is the params, the second the result.
			if isMethod && params == "" && isReceiverList(defNode, child) {
				continue
			}
			if params == "" {
				params = CollapseWhitespace(NodeText(child, source))
			} else {
				result = CollapseWhitespace(NodeText(child, source))
			}
		case "simple_type", "pointer_type", "qualified_type",
			"slice_type", "map_type", "channel_type",
			"interface_type", "struct_type", "function_type",
			"type_identifier", "generic_type":
			result = CollapseWhitespace(NodeText(child, source))
		}
	}

	sig := name + params
	if result != "" {
		sig += " " + result
	}
	return sig
}

// isReceiverList checks whether a parameter_list is the receiver. In a
// method_declaration the receiver is always the first parameter_list child.
// Node pointers from repeated Child calls are distinct, so positions are
// compared instead.
func isReceiverList(parent, paramList *sitter.Node) bool {
	if parent.Type() != "method_declaration" {
		return false
	}
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child.Type() == "parameter_list" {
			return child.StartByte() == paramList.StartByte()
		}
	}
	return false
}
