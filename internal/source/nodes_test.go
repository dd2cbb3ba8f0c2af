package source

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, path, src string) *File {
	t.Helper()
	f, err := Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func firstOfType(f *File, nodeType string) *sitter.Node {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil || found != nil {
			return
		}
		if n.Type() == nodeType {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(f.Root)
	return found
}

func TestParseSelectsGrammarByExtension(t *testing.T) {
	t.Parallel()
	// A type annotation only parses under the typescript grammar.
	src := `const x: number = 1;`

	ts := parseSource(t, "a.ts", src)
	assert.False(t, ts.Root.HasError())

	tsx := parseSource(t, "a.tsx", src)
	assert.False(t, tsx.Root.HasError())

	js := parseSource(t, "a.js", src)
	assert.True(t, js.Root.HasError())
}

func TestParseRecoversFromSyntaxErrors(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "broken.ts", `function f( {`)
	require.NotNil(t, f.Root)
	assert.True(t, f.Root.HasError())
}

func TestAccessChain(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "chain.ts", `ctxt.client.raw("SELECT 1");`)

	call := firstOfType(f, "call_expression")
	require.NotNil(t, call)
	chain := AccessChain(call.ChildByFieldName("function"))
	require.Len(t, chain, 3)
	assert.Equal(t, "ctxt", Text(chain[0], f.Source))
	assert.Equal(t, "client", Text(chain[1], f.Source))
	assert.Equal(t, "raw", Text(chain[2], f.Source))
}

func TestAccessChainStopsAtCallResult(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "chain.ts", `connect().query("SELECT 1");`)

	call := firstOfType(f, "call_expression")
	require.NotNil(t, call)
	chain := AccessChain(call.ChildByFieldName("function"))
	require.Len(t, chain, 1, "a call receiver keeps only the trailing identifier suffix")
	assert.Equal(t, "query", Text(chain[0], f.Source))
}

func TestLeftmostBase(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "base.ts", `(a.b(x).c[i]).d = 1;`)

	assign := firstOfType(f, "assignment_expression")
	require.NotNil(t, assign)
	base := LeftmostBase(assign.ChildByFieldName("left"))
	require.NotNil(t, base)
	assert.Equal(t, "identifier", base.Type())
	assert.Equal(t, "a", Text(base, f.Source))
}

func TestLeftmostBaseOfThis(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "this.ts", `class C { m() { this.x.y = 1; } }`)

	assign := firstOfType(f, "assignment_expression")
	require.NotNil(t, assign)
	base := LeftmostBase(assign.ChildByFieldName("left"))
	require.NotNil(t, base)
	assert.Equal(t, "this", base.Type())
}

func TestUnparen(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "paren.ts", `use(((x)));`)

	call := firstOfType(f, "call_expression")
	require.NotNil(t, call)
	args := CallArguments(call)
	require.Len(t, args, 1)
	inner := Unparen(args[0])
	assert.Equal(t, "identifier", inner.Type())
	assert.Equal(t, "x", Text(inner, f.Source))
}

func TestCallArguments(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "args.ts", "first(a, b, c);\nsecond();")

	calls := []*sitter.Node{}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
			calls = append(calls, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(f.Root)
	require.Len(t, calls, 2)
	assert.Len(t, CallArguments(calls[0]), 3)
	assert.Empty(t, CallArguments(calls[1]))
}

func TestCompactTextStripsWhitespace(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "compact.ts", "Math\n  .random();")

	call := firstOfType(f, "call_expression")
	require.NotNil(t, call)
	assert.Equal(t, "Math.random", CompactText(call.ChildByFieldName("function"), f.Source))
}

func TestKeyOfDistinguishesWrapperFromWrapped(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "key.ts", `use(x);`)

	id := firstOfType(f, "identifier")
	require.NotNil(t, id)
	parent := id.Parent()
	require.NotNil(t, parent)
	assert.NotEqual(t, KeyOf(id), KeyOf(parent))
	assert.Equal(t, KeyOf(id), KeyOf(id))
}

func TestLocationOf(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "loc.ts", "const a = 1;\n  const b = evil();\n")

	call := firstOfType(f, "call_expression")
	require.NotNil(t, call)
	loc := LocationOf(f, call)
	assert.Equal(t, "loc.ts", loc.File)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 13, loc.Column)
	assert.Equal(t, "const b = evil();", loc.Snippet)
	assert.Equal(t, "loc.ts:2:13", loc.String())
}

func TestIsFunctionLike(t *testing.T) {
	t.Parallel()
	f := parseSource(t, "fn.ts", `
function decl() {}
const arrow = () => {};
class C { method() {} }
const expr = function () {};
`)
	for _, nodeType := range []string{
		"function_declaration", "arrow_function", "method_definition",
	} {
		n := firstOfType(f, nodeType)
		require.NotNil(t, n, nodeType)
		assert.True(t, IsFunctionLike(n), nodeType)
	}

	assert.False(t, IsFunctionLike(firstOfType(f, "class_declaration")))
	assert.False(t, IsFunctionLike(firstOfType(f, "statement_block")))
}
