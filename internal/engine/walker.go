package engine

import (
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/wflint-dev/wflint/internal/source"
)

// walker performs the depth-first, source-order traversal of one scope
// stack's worth of code. Entering a nested function starts a fresh walker
// with a fresh stack: outer bindings stop being "local" inside the nested
// function even though they remain visible, so any mutation of them is
// treated as global regardless of nesting depth.
type walker struct {
	ctx    *Context
	scopes *scopeStack
	ann    Annotation
}

func newWalker(ctx *Context, ann Annotation) *walker {
	return &walker{ctx: ctx, scopes: newScopeStack(), ann: ann}
}

func (w *walker) walk(n *sitter.Node) {
	if n == nil || n.IsNull() {
		return
	}

	if source.IsFunctionLike(n) {
		// The declaration's own name is a binding in the current frame.
		if name := n.ChildByFieldName("name"); name != nil {
			if id, ok := w.ctx.Oracle.SymbolOf(name); ok {
				w.scopes.declare(id)
			}
		}
		w.enterFunction(n)
		return
	}

	switch n.Type() {
	case "statement_block", "for_statement", "for_in_statement":
		w.scopes.push()
		w.walkChildren(n)
		w.scopes.pop()
		return

	case "catch_clause":
		w.scopes.push()
		w.declarePattern(n.ChildByFieldName("parameter"))
		w.walkChildren(n)
		w.scopes.pop()
		return

	case "variable_declarator":
		w.declarePattern(n.ChildByFieldName("name"))

	case "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			if id, ok := w.ctx.Oracle.SymbolOf(name); ok {
				w.scopes.declare(id)
			}
		}
	}

	w.check(n)
	// Descend regardless of whether a check fired: a node and its
	// subexpressions are independently checkable.
	w.walkChildren(n)
}

func (w *walker) walkChildren(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		w.walk(n.Child(i))
	}
}

// enterFunction recurses into a function-like declaration with a new
// scope stack. Methods of a class arrive here one by one, each getting
// its own stack. A missing body (overload signature, declare stub) is a
// silent no-op.
func (w *walker) enterFunction(fn *sitter.Node) {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}

	ann := annotationOf(fn, w.ctx.File.Source)
	if ann == AnnotationNone {
		// Closures nested in an annotated function stay subject to the
		// enclosing function's checks.
		ann = w.ann
	}

	nested := newWalker(w.ctx, ann)
	nested.scopes.push()
	nested.declareParams(fn)
	nested.walk(body)
	nested.scopes.pop()
}

func (w *walker) declareParams(fn *sitter.Node) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		w.declarePattern(fn.ChildByFieldName("parameter"))
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		w.declarePattern(params.NamedChild(i))
	}
}

// declarePattern registers every binding of a declaration pattern into
// the innermost frame. Default values inside assignment patterns are
// expressions, not bindings, and are skipped.
func (w *walker) declarePattern(pattern *sitter.Node) {
	if pattern == nil {
		return
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		if id, ok := w.ctx.Oracle.SymbolOf(pattern); ok {
			w.scopes.declare(id)
		}
	case "object_pattern", "array_pattern":
		for i := 0; i < int(pattern.NamedChildCount()); i++ {
			w.declarePattern(pattern.NamedChild(i))
		}
	case "pair_pattern":
		w.declarePattern(pattern.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		w.declarePattern(pattern.ChildByFieldName("left"))
	case "rest_pattern", "rest_parameter":
		w.declarePattern(pattern.NamedChild(0))
	case "required_parameter", "optional_parameter":
		w.declarePattern(pattern.ChildByFieldName("pattern"))
	}
}

// check dispatches the detectors applicable to the enclosing function's
// annotation. Raw-query call sites are checked for injection regardless
// of annotation: transactional calls routinely appear in unannotated
// helpers and module-level code.
func (w *walker) check(n *sitter.Node) {
	switch n.Type() {
	case "call_expression":
		w.safely("taint", n, w.checkRawQuery)
		if w.ann == AnnotationDeterministic {
			w.safely("banned-call", n, w.checkBannedCall)
		}
	case "new_expression":
		if w.ann == AnnotationDeterministic {
			w.safely("banned-call", n, w.checkBannedCall)
		}
	case "assignment_expression", "augmented_assignment_expression":
		if w.ann != AnnotationNone {
			w.safely("mutation", n, w.checkMutation)
		}
	case "await_expression":
		if w.ann == AnnotationDeterministic {
			w.safely("await", n, w.checkAwait)
		}
	}
}

// safely runs one detector on one node. A detector error or panic is
// converted into an internal-analysis-error diagnostic for that node and
// must never suppress analysis of sibling subtrees.
func (w *walker) safely(check string, n *sitter.Node, fn func(*sitter.Node) error) {
	defer func() {
		if r := recover(); r != nil {
			w.ctx.Logger.Error("detector panicked",
				zap.String("check", check),
				zap.Any("panic", r),
			)
			w.reportInternal(n, fmt.Sprintf("detector %s panicked: %v", check, r))
		}
	}()

	if err := fn(n); err != nil {
		w.ctx.Logger.Warn("detector aborted on node",
			zap.String("check", check),
			zap.Error(err),
		)
		w.reportInternal(n, err.Error())
	}
}

func (w *walker) report(n *sitter.Node, class Classification, format map[string]string) {
	loc := source.LocationOf(w.ctx.File, n)
	if format == nil {
		format = map[string]string{}
	}
	if _, ok := format["theExpression"]; !ok {
		format["theExpression"] = source.Text(n, w.ctx.File.Source)
	}
	if _, ok := format["lineNumber"]; !ok {
		format["lineNumber"] = strconv.Itoa(loc.Line)
	}
	w.ctx.Sink.Report(Diagnostic{
		Node:           n,
		Classification: class,
		Location:       loc,
		Format:         format,
	})
}

func (w *walker) reportInternal(n *sitter.Node, reason string) {
	w.report(n, ClassInternalError, map[string]string{
		"theExpression": source.Text(n, w.ctx.File.Source),
		"reason":        reason,
	})
}
