package engine

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/oracle"
	"github.com/wflint-dev/wflint/internal/source"
)

// rawQueryClients maps a client nominal type to the method names that
// execute raw SQL. A call site is recognized when the last identifier of
// the callee chain names such a method and the second-to-last resolves
// to the client type.
var rawQueryClients = map[string]map[string]bool{
	"Knex":         {"raw": true},
	"PrismaClient": {"$queryRawUnsafe": true, "$executeRawUnsafe": true},
	"Pool":         {"query": true},
}

// checkRawQuery recognizes raw-query call sites and verifies the query
// argument is literal-reducible. When it is not, exactly one root problem
// node is reported: the first non-reducible leaf found while tracing the
// value back through every reachable assignment.
func (w *walker) checkRawQuery(n *sitter.Node) error {
	chain := source.AccessChain(n.ChildByFieldName("function"))
	if len(chain) < 2 {
		return nil
	}

	method := source.Text(chain[len(chain)-1], w.ctx.File.Source)
	receiver := chain[len(chain)-2]
	methods, ok := rawQueryClients[w.ctx.Oracle.TypeName(receiver)]
	if !ok || !methods[method] {
		return nil
	}

	args := source.CallArguments(n)
	if len(args) == 0 {
		return nil
	}

	q := &lrQuery{w: w, memo: make(map[source.NodeKey]lrState)}
	if q.reducible(args[0]) {
		return nil
	}

	root := q.root
	if root == nil {
		root = args[0]
	}
	rootLoc := source.LocationOf(w.ctx.File, root)
	w.ctx.Sink.Report(Diagnostic{
		Node:           n,
		Classification: ClassSQLInjection,
		Location:       source.LocationOf(w.ctx.File, n),
		Root:           &rootLoc,
		Format: map[string]string{
			"lineNumber":    strconv.Itoa(rootLoc.Line),
			"theExpression": source.Text(root, w.ctx.File.Source),
		},
	})
	return nil
}

// lrState is the tri-state memo value of the literal-reducibility
// analysis. The visiting marker exists to break reference cycles: when
// recursion re-enters a node currently being computed, the cycle is
// treated as reducible, a deliberate false-negative-tolerant policy that
// guarantees termination.
type lrState int

const (
	lrVisiting lrState = iota + 1
	lrTrue
	lrFalse
)

// lrQuery is the state of one literal-reducibility check. It lives for a
// single call-site query and is then discarded.
type lrQuery struct {
	w    *walker
	memo map[source.NodeKey]lrState
	// root is the first non-reducible leaf discovered.
	root *sitter.Node
}

func (q *lrQuery) markRoot(n *sitter.Node) {
	if q.root == nil {
		q.root = n
	}
}

// reducible reports whether an expression is provably built only from
// string/number literals and concatenation or template composition
// thereof, after tracing all reachable assignments of in-scope
// identifiers.
func (q *lrQuery) reducible(n *sitter.Node) bool {
	if n == nil {
		return true
	}

	key := source.KeyOf(n)
	switch q.memo[key] {
	case lrVisiting, lrTrue:
		return true
	case lrFalse:
		return false
	}
	q.memo[key] = lrVisiting

	ok := q.eval(n)
	if ok {
		q.memo[key] = lrTrue
	} else {
		q.memo[key] = lrFalse
	}
	return ok
}

func (q *lrQuery) eval(n *sitter.Node) bool {
	switch n.Type() {
	case "string", "number":
		return true

	case "template_string":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "template_substitution" {
				continue
			}
			expr := child.ChildByFieldName("expression")
			if expr == nil {
				expr = child.NamedChild(0)
			}
			if !q.reducible(expr) {
				return false
			}
		}
		return true

	case "binary_expression":
		op := n.ChildByFieldName("operator")
		if source.Text(op, q.w.ctx.File.Source) != "+" {
			q.markRoot(n)
			return false
		}
		return q.reducible(n.ChildByFieldName("left")) &&
			q.reducible(n.ChildByFieldName("right"))

	case "parenthesized_expression":
		inner := n.ChildByFieldName("expression")
		if inner == nil {
			inner = n.NamedChild(0)
		}
		return q.reducible(inner)

	case "identifier", "shorthand_property_identifier":
		return q.identifierReducible(n)

	default:
		// Calls, tagged templates, member accesses and anything else
		// outside the literal grammar.
		q.markRoot(n)
		return false
	}
}

// identifierReducible traces an identifier through every reachable
// assignment sharing its symbol identity. The identifier is reducible iff
// every assigned value is reducible and the binding is never a bare
// parameter; with zero reachable assignments it is vacuously reducible
// (the undeclared use is an error caught elsewhere).
func (q *lrQuery) identifierReducible(id *sitter.Node) bool {
	sym, ok := q.w.ctx.Oracle.SymbolOf(id)
	if !ok {
		return true
	}
	decl, ok := q.w.ctx.Oracle.DeclarationOf(sym)
	if !ok {
		return true
	}
	if decl.IsParam {
		q.markRoot(id)
		return false
	}

	idKey := source.KeyOf(id)
	for _, occ := range q.occurrences(sym, decl) {
		if source.KeyOf(occ) == idKey {
			continue
		}
		// Block-scoped bindings cannot be touched textually before
		// their own declaration; the compiler rejects that
		// independently. Relaxed-hoisting (var) bindings can.
		if !decl.Hoisted && occ.StartByte() < decl.NameNode.StartByte() {
			continue
		}

		parent := occ.Parent()
		if parent == nil {
			continue
		}
		switch parent.Type() {
		case "variable_declarator":
			if !sameNode(parent.ChildByFieldName("name"), occ) {
				continue
			}
			if value := parent.ChildByFieldName("value"); value != nil {
				if !q.reducible(value) {
					return false
				}
			}
		case "assignment_expression", "augmented_assignment_expression":
			if !sameNode(source.Unparen(parent.ChildByFieldName("left")), occ) {
				continue
			}
			if !q.reducible(parent.ChildByFieldName("right")) {
				return false
			}
		}
	}
	return true
}

// occurrences enumerates every identifier node sharing the symbol within
// the declaring function's body, or the whole compilation unit for
// module-level bindings.
func (q *lrQuery) occurrences(sym oracle.SymbolID, decl oracle.Declaration) []*sitter.Node {
	scope := q.w.ctx.File.Root
	for p := decl.NameNode.Parent(); p != nil; p = p.Parent() {
		if source.IsFunctionLike(p) {
			scope = p
			break
		}
	}

	var out []*sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier":
			if id, ok := q.w.ctx.Oracle.SymbolOf(n); ok && id == sym {
				out = append(out, n)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(scope)
	return out
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return source.KeyOf(a) == source.KeyOf(b)
}
