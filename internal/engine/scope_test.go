package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wflint-dev/wflint/internal/oracle"
)

func TestScopeStackNesting(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	assert.Zero(t, s.depth())

	outer := oracle.SymbolID(1)
	inner := oracle.SymbolID(2)

	s.push()
	s.declare(outer)
	s.push()
	s.declare(inner)
	assert.Equal(t, 2, s.depth())
	assert.True(t, s.contains(outer), "outer frames stay visible")
	assert.True(t, s.contains(inner))

	s.pop()
	assert.Equal(t, 1, s.depth())
	assert.True(t, s.contains(outer))
	assert.False(t, s.contains(inner), "popped frame bindings disappear")

	s.pop()
	assert.Zero(t, s.depth())
	assert.False(t, s.contains(outer))
}

func TestScopeStackEmptyOperations(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	// pop and declare on an empty stack are no-ops, not panics.
	s.pop()
	s.declare(oracle.SymbolID(7))
	assert.Zero(t, s.depth())
	assert.False(t, s.contains(oracle.SymbolID(7)))
}
