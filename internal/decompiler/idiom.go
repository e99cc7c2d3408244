package decompiler

import (
	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/bytecode"
)

// idiom is the closed set of pending multi-opcode patterns the decompiler
// can have open at any point. Kept as a small sealed interface rather than
// a single struct with optional fields so the LIFO completion rule in
// stepCall, stepCallN and stepSetField stays a type assertion, not a chain
// of nil checks.
type idiom interface{ isIdiom() }

// ctorCtx records a New on an object/struct register; the next direct
// Call* whose first argument is reg completes construction.
type ctorCtx struct {
	reg bytecode.Reg
	pos int
}

func (ctorCtx) isIdiom() {}

// anonCtx records a New(Virtual); subsequent SetFields populate fields
// until remaining reaches zero. The allocated register is not recorded, so
// any SetField that finds an anonCtx on top of the stack is taken as part
// of it, whatever object it writes to.
type anonCtx struct {
	pos       int
	fields    map[bytecode.RefField]ast.Expr
	order     []bytecode.RefField
	remaining int
}

func (anonCtx) isIdiom() {}

// idiomStack is a LIFO of pending idioms: they complete in LIFO order, and
// an uncompleted ctorCtx at function end is simply discarded, never
// emitted.
type idiomStack struct {
	items []idiom
}

func (s *idiomStack) push(i idiom) { s.items = append(s.items, i) }

func (s *idiomStack) pop() (idiom, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	i := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return i, true
}

func (s *idiomStack) peek() (idiom, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}
