package oracle

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/wflint-dev/wflint/internal/source"
)

// Resolver is the binder-backed TypeOracle implementation. Bind builds the
// full symbol table for a unit up front; afterwards every method is a pure
// lookup, safe for the engine to call at any node.
type Resolver struct {
	file   *source.File
	logger *zap.Logger

	symbols map[source.NodeKey]SymbolID
	decls   []Declaration

	// propertyTypeHints maps "ReceiverType.property" to the property's
	// nominal type for the known workflow SDK surface.
	propertyTypeHints map[string]string
}

// DefaultPropertyTypeHints models the workflow SDK context objects whose
// property types the heuristic resolver cannot derive from the unit alone.
var DefaultPropertyTypeHints = map[string]string{
	"TransactionContext.client": "Knex",
}

// Bind constructs a Resolver for one parsed unit.
func Bind(file *source.File, logger *zap.Logger) *Resolver {
	r := &Resolver{
		file:              file,
		logger:            logger.Named("binder"),
		symbols:           make(map[source.NodeKey]SymbolID),
		propertyTypeHints: DefaultPropertyTypeHints,
	}
	b := &binder{r: r, scopes: make(map[source.NodeKey]*bindScope)}
	root := &bindScope{fn: true, names: make(map[string]SymbolID)}
	b.scopes[source.KeyOf(file.Root)] = root
	b.collect(file.Root, root)
	b.resolve(file.Root, root)
	return r
}

// SymbolOf implements TypeOracle.
func (r *Resolver) SymbolOf(n *sitter.Node) (SymbolID, bool) {
	if n == nil {
		return 0, false
	}
	id, ok := r.symbols[source.KeyOf(n)]
	return id, ok
}

// DeclarationOf implements TypeOracle.
func (r *Resolver) DeclarationOf(id SymbolID) (Declaration, bool) {
	if int(id) < 0 || int(id) >= len(r.decls) {
		return Declaration{}, false
	}
	return r.decls[int(id)], true
}

// binder performs the two binding passes: collect walks the unit creating
// scopes and registering declarations (so hoisted bindings are visible to
// earlier uses), resolve then maps every identifier reference to a symbol.
type binder struct {
	r      *Resolver
	scopes map[source.NodeKey]*bindScope
}

type bindScope struct {
	parent *bindScope
	// fn marks function and module scopes, the hoist target for var
	// declarations.
	fn    bool
	names map[string]SymbolID
}

func (s *bindScope) functionScope() *bindScope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.fn {
			return sc
		}
	}
	return s
}

func (s *bindScope) lookup(name string) (SymbolID, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if id, ok := sc.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (b *binder) newScope(n *sitter.Node, parent *bindScope, fn bool) *bindScope {
	sc := &bindScope{parent: parent, fn: fn, names: make(map[string]SymbolID)}
	b.scopes[source.KeyOf(n)] = sc
	return sc
}

func (b *binder) declare(sc *bindScope, name *sitter.Node, hoisted, isParam bool) {
	text := source.Text(name, b.r.file.Source)
	if text == "" {
		return
	}
	id := SymbolID(len(b.r.decls))
	b.r.decls = append(b.r.decls, Declaration{
		Name:     text,
		NameNode: name,
		Hoisted:  hoisted,
		IsParam:  isParam,
	})
	sc.names[text] = id
	b.r.symbols[source.KeyOf(name)] = id
}

// declarePattern registers every binding introduced by a declaration
// pattern: a plain identifier or any nesting of object, array, default and
// rest patterns.
func (b *binder) declarePattern(sc *bindScope, pattern *sitter.Node, hoisted, isParam bool) {
	if pattern == nil {
		return
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		b.declare(sc, pattern, hoisted, isParam)
	case "object_pattern":
		for i := 0; i < int(pattern.NamedChildCount()); i++ {
			child := pattern.NamedChild(i)
			switch child.Type() {
			case "pair_pattern":
				b.declarePattern(sc, child.ChildByFieldName("value"), hoisted, isParam)
			case "shorthand_property_identifier_pattern", "rest_pattern",
				"object_assignment_pattern", "assignment_pattern":
				b.declarePattern(sc, child, hoisted, isParam)
			}
		}
	case "array_pattern":
		for i := 0; i < int(pattern.NamedChildCount()); i++ {
			b.declarePattern(sc, pattern.NamedChild(i), hoisted, isParam)
		}
	case "assignment_pattern", "object_assignment_pattern":
		b.declarePattern(sc, pattern.ChildByFieldName("left"), hoisted, isParam)
	case "rest_pattern", "rest_parameter":
		if arg := pattern.NamedChild(0); arg != nil {
			b.declarePattern(sc, arg, hoisted, isParam)
		}
	case "required_parameter", "optional_parameter":
		b.declarePattern(sc, pattern.ChildByFieldName("pattern"), hoisted, isParam)
	}
}

func (b *binder) declareParams(fn *sitter.Node, sc *bindScope) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		// Arrow function with a single bare parameter.
		if p := fn.ChildByFieldName("parameter"); p != nil {
			b.declarePattern(sc, p, true, true)
		}
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		b.declarePattern(sc, params.NamedChild(i), true, true)
	}
}

func (b *binder) collect(n *sitter.Node, sc *bindScope) {
	if n == nil {
		return
	}

	next := sc
	switch {
	case source.IsFunctionLike(n):
		// A named function expression or declaration binds its name in
		// the enclosing scope.
		if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			b.declare(sc, name, true, false)
		}
		next = b.newScope(n, sc, true)
		b.declareParams(n, next)

	case n.Type() == "statement_block" || n.Type() == "class_body" ||
		n.Type() == "for_statement" || n.Type() == "for_in_statement":
		next = b.newScope(n, sc, false)

	case n.Type() == "catch_clause":
		next = b.newScope(n, sc, false)
		if p := n.ChildByFieldName("parameter"); p != nil {
			b.declarePattern(next, p, true, true)
		}

	case n.Type() == "class_declaration" || n.Type() == "enum_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			b.declare(sc, name, false, false)
		}

	case n.Type() == "variable_declarator":
		hoisted := n.Parent() != nil && n.Parent().Type() == "variable_declaration"
		target := sc
		if hoisted {
			target = sc.functionScope()
		}
		b.declarePattern(target, n.ChildByFieldName("name"), hoisted, false)

	case n.Type() == "import_statement":
		b.collectImports(n, sc.functionScope())
		return // no references inside an import statement
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		b.collect(n.Child(i), next)
	}
}

// collectImports declares the local bindings of an import statement:
// default imports, namespace imports and named import specifiers.
func (b *binder) collectImports(n *sitter.Node, sc *bindScope) {
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		if c == nil {
			return
		}
		switch c.Type() {
		case "import_specifier":
			// `import { a as b }` binds b; `import { a }` binds a.
			name := c.ChildByFieldName("alias")
			if name == nil {
				name = c.ChildByFieldName("name")
			}
			if name != nil {
				b.declare(sc, name, true, false)
			}
			return
		case "identifier":
			b.declare(sc, c, true, false)
			return
		case "string":
			return // module path
		}
		for i := 0; i < int(c.ChildCount()); i++ {
			walk(c.Child(i))
		}
	}
	walk(n)
}

func (b *binder) resolve(n *sitter.Node, sc *bindScope) {
	if n == nil {
		return
	}
	if child, ok := b.scopes[source.KeyOf(n)]; ok {
		sc = child
	}

	switch n.Type() {
	// The pattern variant shows up as a reference in destructuring
	// assignments (`({ a } = o)`), not only in declarations.
	case "identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern":
		key := source.KeyOf(n)
		if _, declared := b.r.symbols[key]; !declared {
			if id, ok := sc.lookup(source.Text(n, b.r.file.Source)); ok {
				b.r.symbols[key] = id
			}
		}
	case "import_statement":
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		b.resolve(n.Child(i), sc)
	}
}
