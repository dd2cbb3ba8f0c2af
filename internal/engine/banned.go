package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wflint-dev/wflint/internal/source"
)

// arityRange is an inclusive argument-count range; max < 0 means
// unbounded.
type arityRange struct {
	min, max int
}

func (r arityRange) contains(n int) bool {
	return n >= r.min && (r.max < 0 || n <= r.max)
}

// bannedCalls maps a canonical callee name to the argument-count range
// that makes the call non-deterministic. The name match is lexical: it
// tolerates whitespace inside a dotted access but does not verify what
// the tokens resolve to.
var bannedCalls = map[string]arityRange{
	"Date":           {0, 0},
	"Date.now":       {0, 0},
	"Math.random":    {0, 0},
	"console.log":    {0, -1},
	"setTimeout":     {1, -1},
	"bcrypt.hash":    {3, 3},
	"bcrypt.compare": {3, 3},
}

// checkBannedCall flags calls and constructions matching the banned
// table by canonical name and arity.
func (w *walker) checkBannedCall(n *sitter.Node) error {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		callee = n.ChildByFieldName("constructor")
	}
	if callee == nil {
		return nil
	}

	name := source.CompactText(callee, w.ctx.File.Source)
	r, ok := bannedCalls[name]
	if !ok {
		return nil
	}
	if !r.contains(len(source.CallArguments(n))) {
		return nil
	}

	w.report(n, bannedCallClass(name), map[string]string{
		"theExpression": source.Text(n, w.ctx.File.Source),
	})
	return nil
}
