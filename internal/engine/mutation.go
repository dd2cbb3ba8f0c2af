package engine

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// checkMutation flags assignments whose target resolves to a binding
// outside the current function's scope stack. The left-hand side is
// reduced to its leftmost base identifier (`a.b.c = x` mutates `a`);
// assignments rooted at `this` are instance-local and pass. Destructuring
// patterns are flattened first, so a swap like `[a, b] = [b, a]` checks
// each element target independently. Chained and comma assignments
// arrive as separate nodes, so each is evaluated on its own.
func (w *walker) checkMutation(n *sitter.Node) error {
	left := n.ChildByFieldName("left")
	if left == nil {
		return fmt.Errorf("assignment node without a left-hand side")
	}
	for _, target := range patternTargets(source.Unparen(left)) {
		if err := w.checkMutationTarget(n, target); err != nil {
			return err
		}
	}
	return nil
}

// patternTargets flattens an assignment target into its individual
// assignable expressions: a plain target yields itself; array and object
// patterns yield every element target, skipping default values.
func patternTargets(left *sitter.Node) []*sitter.Node {
	if left == nil {
		return nil
	}
	switch left.Type() {
	case "array_pattern", "object_pattern":
		var out []*sitter.Node
		for i := 0; i < int(left.NamedChildCount()); i++ {
			child := left.NamedChild(i)
			switch child.Type() {
			case "pair_pattern":
				out = append(out, patternTargets(source.Unparen(child.ChildByFieldName("value")))...)
			case "assignment_pattern", "object_assignment_pattern":
				out = append(out, patternTargets(source.Unparen(child.ChildByFieldName("left")))...)
			case "rest_pattern":
				out = append(out, patternTargets(source.Unparen(child.NamedChild(0)))...)
			default:
				out = append(out, patternTargets(source.Unparen(child))...)
			}
		}
		return out
	default:
		return []*sitter.Node{left}
	}
}

func (w *walker) checkMutationTarget(n, target *sitter.Node) error {
	base := source.LeftmostBase(target)
	if base == nil {
		return fmt.Errorf("assignment target has no resolvable base")
	}

	switch base.Type() {
	case "this":
		return nil
	case "identifier", "shorthand_property_identifier_pattern":
		// fall through to the scope check
	default:
		// Computed or otherwise exotic target; malformed code is caught
		// by the compiler, not here.
		return nil
	}

	if id, ok := w.ctx.Oracle.SymbolOf(base); ok && w.scopes.contains(id) {
		return nil
	}

	w.report(n, ClassGlobalMutation, map[string]string{
		"theExpression": source.Text(target, w.ctx.File.Source),
	})
	return nil
}
