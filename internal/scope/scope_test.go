package scope

import (
	"testing"

	"github.com/hlbc-go/hlbc/internal/ast"
)

func TestIfClosesAtEndOffset(t *testing.T) {
	s := New()
	s.PushIf(3, ast.Bool(true))
	s.PushStmt(&ast.ExprStmt{X: ast.Int(1)})
	s.Advance() // cursor 1, body opcode processed
	s.Advance() // cursor 2
	s.Advance() // cursor 3: if scope (end=3) closes here

	stmts := s.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", stmts[0])
	}
	if len(ifStmt.Body) != 1 {
		t.Fatalf("expected if body to contain 1 statement, got %d", len(ifStmt.Body))
	}
}

func TestElseAttachesToPrecedingIf(t *testing.T) {
	s := New()
	s.PushIf(2, ast.Bool(true))
	s.Advance() // cursor 1
	s.Advance() // cursor 2: if closes, emitted into function body

	s.PushElse(4)
	s.Advance() // cursor 3
	s.Advance() // cursor 4: else closes, attaches to preceding if

	stmts := s.Statements()
	if len(stmts) != 2 {
		t.Fatalf("expected [If, Else], got %d statements", len(stmts))
	}
	if _, ok := stmts[0].(*ast.If); !ok {
		t.Fatalf("expected first statement to be *ast.If, got %T", stmts[0])
	}
	if _, ok := stmts[1].(*ast.Else); !ok {
		t.Fatalf("expected second statement to be *ast.Else, got %T", stmts[1])
	}
}

func TestElseWithoutPrecedingIfPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when no preceding if exists")
		}
	}()
	s := New()
	s.PushElse(1)
	s.Advance()
}

func TestSwitchCaseRouting(t *testing.T) {
	s := New()
	s.PushSwitch(10, ast.Int(0), []int{3, 6})
	s.PushStmt(&ast.ExprStmt{X: ast.Int(0)}) // lands in default accumulator
	s.PushSwitchCase(0)
	s.PushStmt(&ast.ExprStmt{X: ast.Int(1)})
	s.PushSwitchCase(1)
	s.PushStmt(&ast.ExprStmt{X: ast.Int(2)})
	for i := 0; i < 10; i++ {
		s.Advance()
	}

	stmts := s.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement (the switch), got %d", len(stmts))
	}
	sw, ok := stmts[0].(*ast.Switch)
	if !ok {
		t.Fatalf("expected *ast.Switch, got %T", stmts[0])
	}
	if len(sw.Default) != 1 {
		t.Fatalf("expected 1 default statement, got %d", len(sw.Default))
	}
	if len(sw.Cases) != 2 || len(sw.Cases[0].Body) != 1 || len(sw.Cases[1].Body) != 1 {
		t.Fatalf("expected each case to hold exactly 1 statement: %+v", sw.Cases)
	}
}

func TestLoopBackPatchAndEnd(t *testing.T) {
	s := New()
	s.PushLoop(0)
	if _, ok := s.LastLoopStart(); !ok {
		t.Fatalf("expected an open loop")
	}
	cond := s.UpdateLastLoopCond()
	if cond == nil {
		t.Fatalf("expected a loop condition handle")
	}
	if _, isUnknown := (*cond).(*ast.Unknown); !isUnknown {
		t.Fatalf("expected loop condition to start Unknown")
	}
	*cond = ast.Bool(true)

	s.PushStmt(&ast.ExprStmt{X: ast.Int(1)})

	while, ok := s.EndLastLoop()
	if !ok {
		t.Fatalf("expected innermost scope to be a loop")
	}
	if !ast.Equal(while.Cond, ast.Bool(true)) {
		t.Fatalf("expected back-patched condition to survive, got %v", while.Cond)
	}
	if len(while.Body) != 1 {
		t.Fatalf("expected 1 statement in loop body, got %d", len(while.Body))
	}
	if s.HasScopes() {
		t.Fatalf("expected no open scopes after EndLastLoop")
	}
}

func TestNestedScopesCloseInnerBeforeOuter(t *testing.T) {
	s := New()
	s.PushIf(5, ast.Bool(true))
	s.PushIf(5, ast.Bool(false))
	for i := 0; i < 5; i++ {
		s.Advance()
	}
	stmts := s.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected the outer if to fold the inner if into its body, got %d top-level statements", len(stmts))
	}
	outer, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If at top level, got %T", stmts[0])
	}
	if len(outer.Body) != 1 {
		t.Fatalf("expected outer if body to contain the inner if, got %d statements", len(outer.Body))
	}
	if _, ok := outer.Body[0].(*ast.If); !ok {
		t.Fatalf("expected inner statement to be *ast.If, got %T", outer.Body[0])
	}
}

func TestTryClosesAtEndOffset(t *testing.T) {
	s := New()
	s.PushTry(2)
	s.PushStmt(&ast.ExprStmt{X: ast.Int(1)})
	s.Advance()
	s.Advance()
	stmts := s.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ast.Try); !ok {
		t.Fatalf("expected *ast.Try, got %T", stmts[0])
	}
}
