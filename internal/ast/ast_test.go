package ast

import "testing"

func TestEqualVariable(t *testing.T) {
	a := &Variable{Reg: 1, Name: "x"}
	b := &Variable{Reg: 1, Name: "x"}
	c := &Variable{Reg: 2, Name: "x"}
	if !Equal(a, b) {
		t.Fatalf("expected equal variables to compare equal")
	}
	if Equal(a, c) {
		t.Fatalf("expected variables with different registers to compare unequal")
	}
}

func TestEqualConstant(t *testing.T) {
	if !Equal(Int(3), Int(3)) {
		t.Fatalf("expected equal int constants to compare equal")
	}
	if Equal(Int(3), Int(4)) {
		t.Fatalf("expected different int constants to compare unequal")
	}
	if Equal(Bool(true), Bool(false)) {
		t.Fatalf("expected different bool constants to compare unequal")
	}
}

func TestEqualNilHandling(t *testing.T) {
	if !Equal(nil, nil) {
		t.Fatalf("two nils should be equal")
	}
	if Equal(Int(1), nil) || Equal(nil, Int(1)) {
		t.Fatalf("nil should never equal a non-nil expression")
	}
}

func TestEqualField(t *testing.T) {
	a := &Field{Receiver: This(), Name: "x"}
	b := &Field{Receiver: This(), Name: "x"}
	c := &Field{Receiver: This(), Name: "y"}
	if !Equal(a, b) {
		t.Fatalf("expected fields with matching receiver and name to compare equal")
	}
	if Equal(a, c) {
		t.Fatalf("expected fields with different names to compare unequal")
	}
}

func TestConstantString(t *testing.T) {
	cases := []struct {
		expr Expr
		want string
	}{
		{Int(42), "42"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Null(), "null"},
		{Str("hi"), `"hi"`},
		{This(), "this"},
	}
	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestOpString(t *testing.T) {
	if got, want := Add(Int(1), Int(2)).String(), "1 + 2"; got != want {
		t.Errorf("Add.String() = %q, want %q", got, want)
	}
	if got, want := Neg(Int(1)).String(), "-1"; got != want {
		t.Errorf("Neg.String() = %q, want %q", got, want)
	}
	if got, want := Not(Bool(true)).String(), "!true"; got != want {
		t.Errorf("Not.String() = %q, want %q", got, want)
	}
}

func TestCallFunAndCallExpr(t *testing.T) {
	call := CallFun(7, []Expr{Int(1)})
	if call.Callee.Fun == nil || *call.Callee.Fun != 7 {
		t.Fatalf("CallFun should record the direct function reference")
	}
	closureCall := CallExpr(&Variable{Reg: 0, Name: "f"}, nil)
	if closureCall.Callee.Fun != nil {
		t.Fatalf("CallExpr must not set a direct function reference")
	}
}

func TestAssignString(t *testing.T) {
	decl := &Assign{Declaration: true, Variable: &Variable{Name: "x"}, Value: Int(1)}
	if got, want := decl.String(), "var x = 1;"; got != want {
		t.Errorf("Assign.String() = %q, want %q", got, want)
	}
	rebind := &Assign{Declaration: false, Variable: &Variable{Name: "x"}, Value: Int(2)}
	if got, want := rebind.String(), "x = 2;"; got != want {
		t.Errorf("Assign.String() = %q, want %q", got, want)
	}
}

func TestReturnVoid(t *testing.T) {
	if got, want := (&Return{}).String(), "return;"; got != want {
		t.Errorf("Return{}.String() = %q, want %q", got, want)
	}
	if got, want := (&Return{Value: Int(5)}).String(), "return 5;"; got != want {
		t.Errorf("Return.String() = %q, want %q", got, want)
	}
}
