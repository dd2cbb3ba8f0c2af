package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// awaitAllowedTypes lists receiver nominal types whose operations are
// safe to await inside a deterministic function.
var awaitAllowedTypes = map[string]bool{
	"WorkflowContext": true,
}

// checkAwait validates that an awaited call targets the workflow context
// or a helper that plausibly forwards it. A helper receiving a sanctioned
// context object as an argument is presumed to perform only sanctioned
// operations internally; this is unsound but keeps well-factored
// workflows lint-clean.
func (w *walker) checkAwait(n *sitter.Node) error {
	awaited := source.Unparen(n.NamedChild(0))
	if awaited == nil || awaited.Type() != "call_expression" {
		return nil
	}

	callee := awaited.ChildByFieldName("function")
	base := source.LeftmostBase(callee)
	if base == nil {
		return nil
	}
	switch base.Type() {
	case "string", "number", "template_string", "true", "false", "null":
		// An await on a literal's method is malformed code, caught
		// elsewhere.
		return nil
	}

	if awaitAllowedTypes[w.ctx.Oracle.TypeName(base)] {
		return nil
	}

	for _, arg := range source.CallArguments(awaited) {
		if awaitAllowedTypes[w.ctx.Oracle.TypeName(source.Unparen(arg))] {
			return nil
		}
	}

	w.report(n, ClassAwaitNotAllowed, map[string]string{
		"theExpression": source.Text(awaited, w.ctx.File.Source),
	})
	return nil
}
