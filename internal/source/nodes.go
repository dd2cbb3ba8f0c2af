package source

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeKey identifies a node within one compilation unit. Tree-sitter does
// not expose a stable node ID, but the (span, kind) triple is unique: two
// distinct nodes can share a span only when one wraps the other, and then
// their kinds differ.
type NodeKey struct {
	Start uint32
	End   uint32
	Kind  string
}

// KeyOf returns the map key for a node.
func KeyOf(n *sitter.Node) NodeKey {
	return NodeKey{Start: n.StartByte(), End: n.EndByte(), Kind: n.Type()}
}

// Text extracts the source text of a node.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// CompactText extracts the source text of a node with all whitespace
// removed, so `Math . random` and `Math.random` compare equal. The
// comparison stays lexical: it does not prove what the tokens resolve to.
func CompactText(n *sitter.Node, src []byte) string {
	return strings.Join(strings.Fields(Text(n, src)), "")
}

// Unparen strips any number of enclosing parenthesized expressions.
func Unparen(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		inner := n.ChildByFieldName("expression")
		if inner == nil && int(n.NamedChildCount()) > 0 {
			inner = n.NamedChild(0)
		}
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// Children returns all children of a node in source order.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// CallArguments returns the expression nodes of a call's argument list,
// skipping punctuation.
func CallArguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if c := args.NamedChild(i); c != nil && c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// AccessChain reduces a callee expression to its chain of bare identifier
// tokens, outermost receiver first. For `ctxt.client.raw` it returns the
// nodes for ctxt, client and raw. When the receiver bottoms out in
// something that is not a plain identifier (a call result, a literal),
// only the trailing identifier suffix is returned.
func AccessChain(n *sitter.Node) []*sitter.Node {
	var chain []*sitter.Node
	current := Unparen(n)
	for current != nil {
		switch current.Type() {
		case "identifier", "this":
			chain = append([]*sitter.Node{current}, chain...)
			return chain
		case "member_expression":
			prop := current.ChildByFieldName("property")
			obj := current.ChildByFieldName("object")
			if prop == nil || obj == nil {
				return chain
			}
			chain = append([]*sitter.Node{prop}, chain...)
			current = Unparen(obj)
		default:
			return chain
		}
	}
	return chain
}

// LeftmostBase reduces an expression to its leftmost base node,
// unwrapping parentheses and walking member, subscript and call
// receivers. `a.b.c`, `a[x].b` and `a.b(x).c` all reduce to `a`; the
// result may be an identifier, `this`, a literal or any other
// leaf-position expression.
func LeftmostBase(n *sitter.Node) *sitter.Node {
	current := Unparen(n)
	for current != nil {
		switch current.Type() {
		case "member_expression", "subscript_expression":
			obj := current.ChildByFieldName("object")
			if obj == nil {
				return current
			}
			current = Unparen(obj)
		case "call_expression":
			callee := current.ChildByFieldName("function")
			if callee == nil {
				return current
			}
			current = Unparen(callee)
		case "non_null_expression":
			inner := current.NamedChild(0)
			if inner == nil {
				return current
			}
			current = Unparen(inner)
		default:
			return current
		}
	}
	return nil
}

// IsFunctionLike reports whether a node introduces a new function body
// (and therefore a new scope stack during analysis).
func IsFunctionLike(n *sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "function", "function_expression",
		"generator_function", "generator_function_declaration",
		"arrow_function", "method_definition":
		return true
	}
	return false
}
