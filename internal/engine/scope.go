package engine

import "github.com/wflint-dev/wflint/internal/oracle"

// scopeStack tracks the symbols declared in the lexical blocks of the
// function currently being walked. Frames are strictly nested: pushed on
// block entry, popped on exit, never shared across sibling blocks. A
// symbol is local to the function iff it appears in any frame currently
// on the stack.
type scopeStack struct {
	frames []map[oracle.SymbolID]struct{}
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[oracle.SymbolID]struct{}))
}

func (s *scopeStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// declare registers a symbol in the innermost frame.
func (s *scopeStack) declare(id oracle.SymbolID) {
	if len(s.frames) > 0 {
		s.frames[len(s.frames)-1][id] = struct{}{}
	}
}

func (s *scopeStack) contains(id oracle.SymbolID) bool {
	for _, frame := range s.frames {
		if _, ok := frame[id]; ok {
			return true
		}
	}
	return false
}

func (s *scopeStack) depth() int { return len(s.frames) }
