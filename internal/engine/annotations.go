package engine

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// Annotation is the marker attached to a function declaration. A function
// carries at most one relevant annotation.
type Annotation int

const (
	// AnnotationNone: unannotated code. Raw-query call sites are still
	// checked for injection; the determinism detectors are not run.
	AnnotationNone Annotation = iota
	// AnnotationDeterministic marks functions that must be safely
	// replayable (@Workflow).
	AnnotationDeterministic
	// AnnotationDatabase marks functions performing direct database
	// access (@Transaction).
	AnnotationDatabase
)

func (a Annotation) String() string {
	switch a {
	case AnnotationDeterministic:
		return "deterministic-required"
	case AnnotationDatabase:
		return "transactional-database-access"
	default:
		return "none"
	}
}

// annotationFromDecorator maps a decorator name to the annotation
// vocabulary. Only the final segment is considered, so `@Workflow()`,
// `@DBOS.workflow()` and `@Transaction` all resolve.
func annotationFromDecorator(name string) Annotation {
	switch strings.ToLower(lastDot(name)) {
	case "workflow":
		return AnnotationDeterministic
	case "transaction":
		return AnnotationDatabase
	default:
		return AnnotationNone
	}
}

func lastDot(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// annotationOf inspects the decorators attached to a function-like
// declaration. The typescript grammar attaches method decorators either
// as children of the definition or as preceding siblings inside the
// class body; decorated function declarations carry them on the
// enclosing export statement.
func annotationOf(fn *sitter.Node, src []byte) Annotation {
	for i := 0; i < int(fn.ChildCount()); i++ {
		if c := fn.Child(i); c.Type() == "decorator" {
			if a := annotationFromDecorator(decoratorName(c, src)); a != AnnotationNone {
				return a
			}
		}
	}

	for sib := fn.PrevSibling(); sib != nil && sib.Type() == "decorator"; sib = sib.PrevSibling() {
		if a := annotationFromDecorator(decoratorName(sib, src)); a != AnnotationNone {
			return a
		}
	}

	if p := fn.Parent(); p != nil && p.Type() == "export_statement" {
		for i := 0; i < int(p.ChildCount()); i++ {
			if c := p.Child(i); c.Type() == "decorator" {
				if a := annotationFromDecorator(decoratorName(c, src)); a != AnnotationNone {
					return a
				}
			}
		}
	}
	return AnnotationNone
}

// decoratorName extracts the dotted name of a decorator: `@Workflow()`
// and `@Workflow` both yield "Workflow".
func decoratorName(dec *sitter.Node, src []byte) string {
	for i := 0; i < int(dec.NamedChildCount()); i++ {
		child := dec.NamedChild(i)
		switch child.Type() {
		case "identifier", "member_expression":
			return source.CompactText(child, src)
		case "call_expression":
			return source.CompactText(child.ChildByFieldName("function"), src)
		}
	}
	return ""
}
