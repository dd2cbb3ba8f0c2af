package oracle

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// maxTypeChaseDepth bounds how far TypeName follows identifier
// initializers (`const a = b; const c = a;`).
const maxTypeChaseDepth = 4

// TypeName implements TypeOracle. The symbol-backed declared type is
// preferred; structural guesses (constructor names, literals) are the
// fallback. An empty string means the type could not be determined.
func (r *Resolver) TypeName(n *sitter.Node) string {
	return r.typeName(n, maxTypeChaseDepth)
}

func (r *Resolver) typeName(n *sitter.Node, depth int) string {
	if n == nil || depth <= 0 {
		return ""
	}

	switch n.Type() {
	case "this":
		return r.enclosingClassName(n)

	case "identifier", "shorthand_property_identifier":
		id, ok := r.SymbolOf(n)
		if !ok {
			return ""
		}
		return r.declaredType(id, depth)

	case "property_identifier":
		// The type of x.prop, asked at the prop token.
		if p := n.Parent(); p != nil && p.Type() == "member_expression" {
			return r.memberType(p, depth)
		}
		return ""

	case "member_expression":
		return r.memberType(n, depth)

	case "new_expression":
		return lastSegment(source.CompactText(n.ChildByFieldName("constructor"), r.file.Source))

	case "parenthesized_expression", "non_null_expression":
		return r.typeName(source.Unparen(n.NamedChild(0)), depth)

	case "as_expression", "satisfies_expression":
		if t := n.NamedChild(int(n.NamedChildCount()) - 1); t != nil {
			return normalizeTypeText(source.Text(t, r.file.Source))
		}
		return ""

	case "string", "template_string":
		return "string"
	case "number":
		return "number"
	case "true", "false":
		return "boolean"
	}
	return ""
}

// declaredType resolves the nominal type of a binding from its
// declaration site: an explicit annotation when present, otherwise the
// shape of the initializer.
func (r *Resolver) declaredType(id SymbolID, depth int) string {
	decl, ok := r.DeclarationOf(id)
	if !ok || decl.NameNode == nil {
		return ""
	}

	parent := decl.NameNode.Parent()
	for parent != nil {
		switch parent.Type() {
		case "required_parameter", "optional_parameter":
			if t := parent.ChildByFieldName("type"); t != nil {
				return annotationType(t, r.file.Source)
			}
			return ""
		case "variable_declarator":
			if t := parent.ChildByFieldName("type"); t != nil {
				return annotationType(t, r.file.Source)
			}
			if v := parent.ChildByFieldName("value"); v != nil {
				return r.typeName(source.Unparen(v), depth-1)
			}
			return ""
		case "object_pattern", "array_pattern", "pair_pattern",
			"assignment_pattern", "rest_pattern":
			// Walk out of the destructuring pattern to the declaration.
			parent = parent.Parent()
		default:
			return ""
		}
	}
	return ""
}

func (r *Resolver) memberType(m *sitter.Node, depth int) string {
	obj := m.ChildByFieldName("object")
	prop := m.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return ""
	}
	objType := r.typeName(source.Unparen(obj), depth-1)
	if objType == "" {
		return ""
	}
	return r.propertyTypeHints[objType+"."+source.Text(prop, r.file.Source)]
}

func (r *Resolver) enclosingClassName(n *sitter.Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_declaration" || p.Type() == "class" {
			if name := p.ChildByFieldName("name"); name != nil {
				return source.Text(name, r.file.Source)
			}
			return ""
		}
	}
	return ""
}

// annotationType extracts the nominal name from a type_annotation node
// (": Knex" -> "Knex", ": TransactionContext<Knex>" -> "TransactionContext").
func annotationType(t *sitter.Node, src []byte) string {
	inner := t
	if t.Type() == "type_annotation" {
		if c := t.NamedChild(0); c != nil {
			inner = c
		}
	}
	return normalizeTypeText(source.Text(inner, src))
}

// normalizeTypeText reduces a textual type to its nominal name: generic
// arguments are dropped and only the last segment of a qualified name is
// kept.
func normalizeTypeText(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
	if i := strings.IndexByte(text, '<'); i >= 0 {
		text = text[:i]
	}
	return lastSegment(strings.TrimSpace(text))
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
