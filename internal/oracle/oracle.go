// Package oracle provides symbol identity and nominal type resolution for
// parsed compilation units. The engine consumes only the TypeOracle
// interface; the Resolver in this package is a heuristic, binder-backed
// implementation built directly on the tree-sitter tree, so the tool works
// without an external type-checking service.
package oracle

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// SymbolID is the stable identity of one declared binding. Two identifier
// occurrences refer to the same binding iff their SymbolIDs are equal;
// shadowing produces distinct symbols. IDs are valid for the duration of
// one compilation unit's analysis.
type SymbolID int

// Declaration describes the declaration site of a symbol.
type Declaration struct {
	Name     string
	NameNode *sitter.Node
	// Hoisted marks bindings usable before their textual declaration
	// (var, function declarations, parameters). Block-scoped let/const
	// bindings are not hoisted; a use before the declaration would be
	// rejected by the compiler.
	Hoisted bool
	// IsParam marks function parameters and catch bindings, whose values
	// arrive from outside the analyzed body.
	IsParam bool
}

// TypeOracle resolves nominal types and symbol identities for AST nodes.
// All queries are read-only.
type TypeOracle interface {
	// TypeName returns the nominal type of an expression node, or "" when
	// the type cannot be determined.
	TypeName(n *sitter.Node) string
	// SymbolOf returns the stable identity of an identifier's binding.
	SymbolOf(n *sitter.Node) (SymbolID, bool)
	// DeclarationOf returns the declaration record for a symbol.
	DeclarationOf(id SymbolID) (Declaration, bool)
}
