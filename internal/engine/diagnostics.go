// Package engine implements the determinism and SQL-injection analysis
// over parsed workflow source: a scope-tracking AST walker, per-annotation
// detectors and the literal-reducibility taint analyzer.
package engine

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// Classification is a key into the fixed diagnostic taxonomy.
type Classification string

const (
	ClassGlobalMutation  Classification = "globalMutation"
	ClassAwaitNotAllowed Classification = "awaitNotAllowed"
	ClassSQLInjection    Classification = "sqlInjection"
	ClassInternalError   Classification = "internal-analysis-error"
)

// bannedCallClass builds the classification for one banned-call table
// entry, e.g. "bannedCall:Math.random".
func bannedCallClass(name string) Classification {
	return Classification("bannedCall:" + name)
}

// Diagnostic is one flagged defect. It is created by a detector and
// handed to the Sink immediately; nothing is persisted by the engine.
type Diagnostic struct {
	// Node is the AST node the check fired on. It is only valid while
	// the unit's tree is open: sinks that outlive the tree must read
	// Location instead. AnalyzeSource clears it for that reason.
	Node           *sitter.Node
	Classification Classification
	Location       source.Location
	// Root points at the traced-back root cause when it differs from the
	// check site (sqlInjection only).
	Root *source.Location
	// Format carries the named values for the message template.
	Format map[string]string
}

// Sink receives diagnostics at the host boundary.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// MessageCatalog returns the fixed mapping from classification key to
// human-readable message template. Published once at registration time;
// templates use {{name}} placeholders filled from Diagnostic.Format.
func MessageCatalog() map[Classification]string {
	catalog := map[Classification]string{
		ClassGlobalMutation:  "Assignment to '{{theExpression}}' modifies state outside the function's own scope, which breaks deterministic replay",
		ClassAwaitNotAllowed: "Awaiting '{{theExpression}}' is not allowed in a workflow function; await only operations on the workflow context, or helpers that receive it",
		ClassSQLInjection:    "Raw query argument cannot be reduced to a literal: the value from line {{lineNumber}} ('{{theExpression}}') may permit SQL injection; use parameterized queries instead",
		ClassInternalError:   "Internal analysis error at '{{theExpression}}': {{reason}}",
	}
	for name := range bannedCalls {
		catalog[bannedCallClass(name)] = "Calling '" + name + "' is non-deterministic and not permitted in a workflow function ({{theExpression}})"
	}
	return catalog
}

// RenderMessage fills a catalog template with a diagnostic's format data.
func RenderMessage(catalog map[Classification]string, d Diagnostic) string {
	template, ok := catalog[d.Classification]
	if !ok {
		return string(d.Classification)
	}
	out := template
	for name, value := range d.Format {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}
