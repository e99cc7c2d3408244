// Package scope implements the nestable region stack that the function
// decompiler uses to reconstruct if/else, while, switch and try shapes
// from end-offset-keyed regions, without ever building a control-flow
// graph. Regions close themselves as the instruction cursor advances past
// their recorded absolute end offset.
package scope

import (
	"fmt"
	"math"

	"github.com/hlbc-go/hlbc/internal/ast"
)

type kind int

const (
	kindFunction kind = iota
	kindLoop
	kindIf
	kindElse
	kindSwitch
	kindTry
)

// region is one open scope. Only the fields relevant to its kind are used;
// this mirrors a LoopContext struct (pkg/compiler/compiler.go) which
// likewise carries loop-only bookkeeping in a stack entry even though the
// stack holds more than just loops.
type region struct {
	kind kind
	end  int // absolute opcode index at which this scope closes
	body []ast.Stmt

	// loop
	loopStart int
	loopCond  ast.Expr

	// if
	ifCond ast.Expr

	// switch
	scrutinee   ast.Expr
	caseOffsets []int
	cases       []ast.SwitchCase
	currentCase int // index into cases of the case currently being filled

	// try: no extra state beyond body/end
}

// Stack is the open-scope stack. The function body scope is pushed at
// construction and is never popped.
type Stack struct {
	regions []*region
	cursor  int
}

// New creates a scope stack with only the function body open.
func New() *Stack {
	return &Stack{
		regions: []*region{{kind: kindFunction, end: math.MaxInt, currentCase: -1}},
	}
}

func (s *Stack) top() *region { return s.regions[len(s.regions)-1] }

// PushStmt appends stmt to the innermost open scope's body (or, inside an
// open switch with no case started yet, to its implicit default body).
func (s *Stack) PushStmt(stmt ast.Stmt) {
	top := s.top()
	if top.kind == kindSwitch {
		if top.currentCase >= 0 {
			top.cases[top.currentCase].Body = append(top.cases[top.currentCase].Body, stmt)
		} else {
			top.body = append(top.body, stmt) // default case accumulator
		}
		return
	}
	top.body = append(top.body, stmt)
}

// PushLoop opens a loop scope. Its condition starts Unknown and is
// back-patched once the decompiler identifies the loop-exit jump.
func (s *Stack) PushLoop(start int) {
	s.regions = append(s.regions, &region{
		kind:      kindLoop,
		end:       math.MaxInt, // closed explicitly via EndLastLoop, not by offset
		loopStart: start,
		loopCond:  &ast.Unknown{Reason: "loop condition"},
		currentCase: -1,
	})
}

// PushIf opens an if scope closing at absolute offset end.
func (s *Stack) PushIf(end int, cond ast.Expr) {
	s.regions = append(s.regions, &region{kind: kindIf, end: end, ifCond: cond, currentCase: -1})
}

// PushElse converts the preceding if (the innermost completed scope, i.e.
// the last statement pushed into the now-enclosing scope) into an
// if/else, opening an else scope closing at end.
func (s *Stack) PushElse(end int) {
	s.regions = append(s.regions, &region{kind: kindElse, end: end, currentCase: -1})
}

// PushSwitch opens a switch scope closing at end, with the absolute entry
// offset of each case.
func (s *Stack) PushSwitch(end int, scrutinee ast.Expr, caseOffsets []int) {
	cases := make([]ast.SwitchCase, len(caseOffsets))
	for i, o := range caseOffsets {
		cases[i] = ast.SwitchCase{EntryOffset: o}
	}
	s.regions = append(s.regions, &region{
		kind: kindSwitch, end: end, scrutinee: scrutinee,
		caseOffsets: caseOffsets, cases: cases, currentCase: -1,
	})
}

// PushSwitchCase closes the current case body (or the default
// accumulator) and begins the case at index.
func (s *Stack) PushSwitchCase(index int) {
	top := s.top()
	if top.kind != kindSwitch {
		panic("PushSwitchCase: innermost scope is not a switch")
	}
	top.currentCase = index
}

// PushTry opens a try scope closing at end.
func (s *Stack) PushTry(end int) {
	s.regions = append(s.regions, &region{kind: kindTry, end: end, currentCase: -1})
}

// LastLoopStart returns the innermost enclosing loop's start offset.
func (s *Stack) LastLoopStart() (int, bool) {
	for i := len(s.regions) - 1; i >= 0; i-- {
		if s.regions[i].kind == kindLoop {
			return s.regions[i].loopStart, true
		}
		// A loop only encloses scopes nested inside it; stop at the
		// function boundary but keep scanning through if/else/switch/try,
		// which may themselves be nested inside a loop.
	}
	return 0, false
}

// LastIsIf reports whether the innermost open scope is an if.
func (s *Stack) LastIsIf() bool { return s.top().kind == kindIf }

// LastIsSwitchCtx returns the absolute entry offsets of the innermost
// open switch, if the innermost open scope is one waiting for its cases.
func (s *Stack) LastIsSwitchCtx() ([]int, bool) {
	top := s.top()
	if top.kind == kindSwitch {
		return top.caseOffsets, true
	}
	return nil, false
}

// UpdateLastLoopCond returns a mutable handle to the innermost enclosing
// loop's condition for back-patching: a narrow accessor, not a general
// mutable handle to the whole statement.
func (s *Stack) UpdateLastLoopCond() *ast.Expr {
	for i := len(s.regions) - 1; i >= 0; i-- {
		if s.regions[i].kind == kindLoop {
			return &s.regions[i].loopCond
		}
	}
	return nil
}

// EndLastLoop closes the innermost loop and returns its finished While
// statement without auto-emitting it into the enclosing scope — the
// caller decides where it goes.
func (s *Stack) EndLastLoop() (*ast.While, bool) {
	top := s.top()
	if top.kind != kindLoop {
		return nil, false
	}
	s.regions = s.regions[:len(s.regions)-1]
	return &ast.While{Cond: top.loopCond, Body: top.body}, true
}

// HasScopes reports whether anything beyond the function body is open.
func (s *Stack) HasScopes() bool { return len(s.regions) > 1 }

// Statements returns the function body's statements. It neither clears
// the body nor checks that inner scopes have been closed.
func (s *Stack) Statements() []ast.Stmt {
	return s.regions[0].body
}

// Advance increments the cursor and closes every scope whose end offset
// now equals the cursor, emitting each closed scope as a statement into
// its enclosing scope. Scopes close outermost-last: a region nested
// inside another that closes at the same offset is finished first so it
// can be folded into its parent before the parent itself closes.
func (s *Stack) Advance() {
	s.cursor++
	for len(s.regions) > 1 && s.top().end == s.cursor {
		closed := s.regions[len(s.regions)-1]
		s.regions = s.regions[:len(s.regions)-1]
		s.emitClosed(closed)
	}
}

func (s *Stack) emitClosed(r *region) {
	switch r.kind {
	case kindLoop:
		panic("scope: loop must be closed via EndLastLoop, not offset advance")
	case kindIf:
		s.PushStmt(&ast.If{EndOffset: r.end, Cond: r.ifCond, Body: r.body})
	case kindElse:
		s.attachElse(r)
	case kindSwitch:
		s.PushStmt(&ast.Switch{
			EndOffset: r.end,
			Scrutinee: r.scrutinee,
			Cases:     r.cases,
			Default:   r.body,
		})
	case kindTry:
		s.PushStmt(&ast.Try{EndOffset: r.end, Body: r.body})
	default:
		panic(fmt.Sprintf("scope: cannot close region kind %d", r.kind))
	}
}

// attachElse folds an else region into the If statement that must be the
// last statement pushed into the (now current) enclosing scope.
func (s *Stack) attachElse(r *region) {
	top := s.top()
	var body *[]ast.Stmt
	if top.kind == kindSwitch && top.currentCase >= 0 {
		body = &top.cases[top.currentCase].Body
	} else {
		body = &top.body
	}
	if len(*body) == 0 {
		panic("scope: push_else with no preceding if in the enclosing scope")
	}
	last := (*body)[len(*body)-1]
	ifStmt, ok := last.(*ast.If)
	if !ok {
		panic("scope: push_else: innermost completed scope is not an if")
	}
	*body = append(*body, &ast.Else{EndOffset: r.end, Body: r.body})
	_ = ifStmt // kept as-is; If/Else remain sibling statements rather than
	// being merged into a combined node, matching the source AST's
	// separate If/Else statement variants.
}
