package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromParameterAnnotation(t *testing.T) {
	t.Parallel()
	src := `
function f(ctxt: TransactionContext, generic: WorkflowContext<Store>) {
  use(ctxt, generic);
}
`
	f, r := bindSource(t, "params.ts", src)

	ctxts := identifiers(f, "ctxt")
	require.Len(t, ctxts, 2)
	assert.Equal(t, "TransactionContext", r.TypeName(ctxts[1]))

	generics := identifiers(f, "generic")
	require.Len(t, generics, 2)
	assert.Equal(t, "WorkflowContext", r.TypeName(generics[1]), "generic arguments are dropped")
}

func TestTypeFromConstructorInitializer(t *testing.T) {
	t.Parallel()
	src := `
const pool = new Pool();
const k = new knexpkg.Knex({});
use(pool, k);
`
	f, r := bindSource(t, "ctor.ts", src)

	pools := identifiers(f, "pool")
	assert.Equal(t, "Pool", r.TypeName(pools[len(pools)-1]))

	ks := identifiers(f, "k")
	assert.Equal(t, "Knex", r.TypeName(ks[len(ks)-1]), "qualified constructor names reduce to the last segment")
}

func TestTypeChasesAliasInitializers(t *testing.T) {
	t.Parallel()
	src := `
const a = new Pool();
const b = a;
use(b);
`
	f, r := bindSource(t, "alias.ts", src)
	bs := identifiers(f, "b")
	assert.Equal(t, "Pool", r.TypeName(bs[len(bs)-1]))
}

func TestTypeChaseDepthIsBounded(t *testing.T) {
	t.Parallel()
	src := `
const a = new Pool();
const b = a;
const c = b;
const d = c;
const e = d;
const g = e;
use(g);
`
	f, r := bindSource(t, "deep.ts", src)
	gs := identifiers(f, "g")
	assert.Equal(t, "", r.TypeName(gs[len(gs)-1]), "alias chains beyond the chase depth resolve to unknown")
}

func TestThisResolvesToEnclosingClass(t *testing.T) {
	t.Parallel()
	src := `
class Store {
  snapshot() {
    return this;
  }
}
`
	f, r := bindSource(t, "this.ts", src)
	thisNodes := nodesOfType(f, "this")
	require.NotEmpty(t, thisNodes)
	assert.Equal(t, "Store", r.TypeName(thisNodes[0]))
}

func TestPropertyHintResolvesMemberType(t *testing.T) {
	t.Parallel()
	src := `
function f(ctxt: TransactionContext) {
  return ctxt.client;
}
`
	f, r := bindSource(t, "hint.ts", src)
	members := nodesOfType(f, "member_expression")
	require.NotEmpty(t, members)
	assert.Equal(t, "Knex", r.TypeName(members[0]))
}

func TestDeclaratorTypeAnnotationWins(t *testing.T) {
	t.Parallel()
	src := `
const client: Knex = connect();
use(client);
`
	f, r := bindSource(t, "annot.ts", src)
	clients := identifiers(f, "client")
	assert.Equal(t, "Knex", r.TypeName(clients[len(clients)-1]))
}

func TestAsExpressionType(t *testing.T) {
	t.Parallel()
	src := `
const v = load() as Knex;
use(v);
`
	f, r := bindSource(t, "as.ts", src)
	vs := identifiers(f, "v")
	assert.Equal(t, "Knex", r.TypeName(vs[len(vs)-1]))
}

func TestLiteralTypes(t *testing.T) {
	t.Parallel()
	src := `use("s", 42, true);`
	f, r := bindSource(t, "lit.ts", src)

	strs := nodesOfType(f, "string")
	require.NotEmpty(t, strs)
	assert.Equal(t, "string", r.TypeName(strs[0]))

	nums := nodesOfType(f, "number")
	require.NotEmpty(t, nums)
	assert.Equal(t, "number", r.TypeName(nums[0]))

	trues := nodesOfType(f, "true")
	require.NotEmpty(t, trues)
	assert.Equal(t, "boolean", r.TypeName(trues[0]))
}

func TestUnknownTypeIsEmpty(t *testing.T) {
	t.Parallel()
	src := `
const opaque = compute();
use(opaque);
`
	f, r := bindSource(t, "unknown.ts", src)
	ids := identifiers(f, "opaque")
	assert.Equal(t, "", r.TypeName(ids[len(ids)-1]))
}
