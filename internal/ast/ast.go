// Package ast is the closed expression/statement model the function
// decompiler emits into. It mirrors the shape of a hand-written recursive
// descent parser's AST (see pkg/parser/ast.go): a Node base interface,
// Expr/Stmt marker interfaces, and concrete struct types per variant. Here
// the tree flows the opposite direction — built up from bytecode instead
// of tokens — but the representation technique is the same: tagged
// structs behind a small sealed interface, not a single
// discriminated-union struct.
package ast

import (
	"fmt"
	"strings"

	"github.com/hlbc-go/hlbc/internal/bytecode"
)

// Node is the base of every AST node.
type Node interface {
	String() string
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// --- Expressions ---

// Unknown is a placeholder for a value the decompiler could not resolve.
// Never fatal.
type Unknown struct {
	Reason string
}

func (*Unknown) exprNode()        {}
func (u *Unknown) String() string { return fmt.Sprintf("/* %s */", u.Reason) }

// Variable is a local register reference. Name is non-empty only when the
// register carries a debug-table name at the point the reference was
// built — this is exactly what distinguishes an inlined pure expression
// from a declared/rebound local under the dual assignment policy. The one
// exception is GetGlobal on an object/struct type, which names the
// Variable after that type so later static accesses read as `Type.field`.
type Variable struct {
	Reg  bytecode.Reg
	Name string
}

func (*Variable) exprNode() {}
func (v *Variable) String() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("r%d", v.Reg)
}

// ConstKind distinguishes the literal payload carried by a Constant node.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstNull
	ConstString
	ConstThis
)

// Constant is a literal value: int, float, bool, null, string, or `this`.
type Constant struct {
	Kind ConstKind
	I    int64
	F    float64
	B    bool
	S    string
}

func (*Constant) exprNode() {}
func (c *Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.I)
	case ConstFloat:
		return fmt.Sprintf("%g", c.F)
	case ConstBool:
		if c.B {
			return "true"
		}
		return "false"
	case ConstNull:
		return "null"
	case ConstString:
		return fmt.Sprintf("%q", c.S)
	case ConstThis:
		return "this"
	}
	return "?"
}

// OpKind enumerates every unary/binary operator the decompiler can
// reconstruct from an arithmetic/bitwise/comparison/logical opcode, plus
// the pre-increment/pre-decrement forms; these are emitted wrapped in
// ExprStmt rather than bound to a register.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpNeg
	OpNot
	OpIncr
	OpDecr
	OpEq
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
)

var opSymbols = map[OpKind]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpShl: "<<", OpShr: ">>", OpAnd: "&", OpOr: "|", OpXor: "^",
	OpEq: "==", OpNotEq: "!=", OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
}

// Op is a unary or binary operator expression. Unary operators (Neg, Not,
// Incr, Decr) populate only A.
type Op struct {
	Kind OpKind
	A, B Expr // B is nil for unary operators
}

func (*Op) exprNode() {}
func (o *Op) String() string {
	switch o.Kind {
	case OpNeg:
		return "-" + o.A.String()
	case OpNot:
		return "!" + o.A.String()
	case OpIncr:
		return "++" + o.A.String()
	case OpDecr:
		return "--" + o.A.String()
	default:
		return fmt.Sprintf("%s %s %s", o.A.String(), opSymbols[o.Kind], o.B.String())
	}
}

// Callee is either a direct reference to a bytecode function/native, or an
// arbitrary expression evaluated to a callable (closure call).
type Callee struct {
	Fun  *bytecode.RefFun // non-nil for a direct call
	Expr Expr             // non-nil for a computed/closure call
}

func (c Callee) String() string {
	if c.Fun != nil {
		return fmt.Sprintf("fn#%d", *c.Fun)
	}
	return c.Expr.String()
}

// Call is a function/method/closure invocation.
type Call struct {
	Callee Callee
	Args   []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// Field is a dotted field access.
type Field struct {
	Receiver Expr
	Name     string
}

func (*Field) exprNode() {}
func (f *Field) String() string { return f.Receiver.String() + "." + f.Name }

// Array is an indexed access. Also used for dynamic named-field get/set
// (DynGet/DynSet), where Index is a string constant.
type Array struct {
	Receiver Expr
	Index    Expr
}

func (*Array) exprNode() {}
func (a *Array) String() string { return fmt.Sprintf("%s[%s]", a.Receiver.String(), a.Index.String()) }

// Constructor is a `new T(args)` expression.
type Constructor struct {
	Type bytecode.RefType
	Args []Expr
}

func (*Constructor) exprNode() {}
func (c *Constructor) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("new #%d(%s)", c.Type, strings.Join(parts, ", "))
}

// Anonymous is an anonymous structural record literal: `{ a: 1, b: 2 }`.
type Anonymous struct {
	Type   bytecode.RefType
	Fields map[bytecode.RefField]Expr
	// Order preserves SetField emission order, since Go map iteration
	// would otherwise make printed output nondeterministic.
	Order []bytecode.RefField
}

func (*Anonymous) exprNode() {}
func (a *Anonymous) String() string {
	parts := make([]string, 0, len(a.Order))
	for _, k := range a.Order {
		parts = append(parts, fmt.Sprintf("f%d: %s", k, a.Fields[k].String()))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// EnumConstr is an enum case construction.
type EnumConstr struct {
	Type      bytecode.RefType
	Construct int
	Args      []Expr
}

func (*EnumConstr) exprNode() {}
func (e *EnumConstr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("#%d.case%d(%s)", e.Type, e.Construct, strings.Join(parts, ", "))
}

// Closure is a function value; Body is produced by recursively
// decompiling the target function.
type Closure struct {
	Fun  bytecode.RefFun
	Body []Stmt
}

func (*Closure) exprNode() {}
func (c *Closure) String() string { return fmt.Sprintf("function#%d { ... }", c.Fun) }

// Equal reports whether a and b are the same expression. Required only to
// compare two Variable references by identity. Constant, Unknown and Field
// compare by their fields; every other variant compares by its String()
// form and is not expected to be compared in practice.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Variable:
		bv, ok := b.(*Variable)
		return ok && av.Reg == bv.Reg && av.Name == bv.Name
	case *Constant:
		bv, ok := b.(*Constant)
		return ok && *av == *bv
	case *Unknown:
		bv, ok := b.(*Unknown)
		return ok && av.Reason == bv.Reason
	case *Field:
		bv, ok := b.(*Field)
		return ok && av.Name == bv.Name && Equal(av.Receiver, bv.Receiver)
	default:
		return a.String() == b.String()
	}
}

// --- Expression constructors ---

func Int(v int64) *Constant     { return &Constant{Kind: ConstInt, I: v} }
func Float(v float64) *Constant { return &Constant{Kind: ConstFloat, F: v} }
func Bool(v bool) *Constant     { return &Constant{Kind: ConstBool, B: v} }
func Null() *Constant           { return &Constant{Kind: ConstNull} }
func Str(v string) *Constant    { return &Constant{Kind: ConstString, S: v} }
func This() *Constant           { return &Constant{Kind: ConstThis} }

func Add(a, b Expr) *Op    { return &Op{Kind: OpAdd, A: a, B: b} }
func Sub(a, b Expr) *Op    { return &Op{Kind: OpSub, A: a, B: b} }
func Mul(a, b Expr) *Op    { return &Op{Kind: OpMul, A: a, B: b} }
func Div(a, b Expr) *Op    { return &Op{Kind: OpDiv, A: a, B: b} }
func Modulo(a, b Expr) *Op { return &Op{Kind: OpMod, A: a, B: b} }
func Shl(a, b Expr) *Op    { return &Op{Kind: OpShl, A: a, B: b} }
func Shr(a, b Expr) *Op    { return &Op{Kind: OpShr, A: a, B: b} }
func And(a, b Expr) *Op    { return &Op{Kind: OpAnd, A: a, B: b} }
func Or(a, b Expr) *Op     { return &Op{Kind: OpOr, A: a, B: b} }
func Xor(a, b Expr) *Op    { return &Op{Kind: OpXor, A: a, B: b} }
func Neg(a Expr) *Op       { return &Op{Kind: OpNeg, A: a} }
func Not(a Expr) *Op       { return &Op{Kind: OpNot, A: a} }
func Incr(a Expr) *Op      { return &Op{Kind: OpIncr, A: a} }
func Decr(a Expr) *Op      { return &Op{Kind: OpDecr, A: a} }
func EqOp(a, b Expr) *Op   { return &Op{Kind: OpEq, A: a, B: b} }
func NotEq(a, b Expr) *Op  { return &Op{Kind: OpNotEq, A: a, B: b} }
func Lt(a, b Expr) *Op     { return &Op{Kind: OpLt, A: a, B: b} }
func Lte(a, b Expr) *Op    { return &Op{Kind: OpLte, A: a, B: b} }
func Gt(a, b Expr) *Op     { return &Op{Kind: OpGt, A: a, B: b} }
func Gte(a, b Expr) *Op    { return &Op{Kind: OpGte, A: a, B: b} }

// CallFun builds a direct call to a known function/native reference.
func CallFun(fun bytecode.RefFun, args []Expr) *Call {
	f := fun
	return &Call{Callee: Callee{Fun: &f}, Args: args}
}

// CallExpr builds a call whose callee is an arbitrary expression (a
// closure invocation, or `recv.method(...)` surfaced as a Field callee).
func CallExpr(callee Expr, args []Expr) *Call {
	return &Call{Callee: Callee{Expr: callee}, Args: args}
}

// FieldOf resolves receiverType's field at idx against code and builds a
// Field expression naming it.
func FieldOf(receiver Expr, receiverType bytecode.RefType, idx bytecode.RefField, code *bytecode.Bytecode) *Field {
	return &Field{Receiver: receiver, Name: receiverType.FieldName(idx, code)}
}

// --- Statements ---

// Assign represents both a declaration (declaration=true, first binding
// of Variable's name) and a rebinding/plain field-or-index write
// (declaration=false).
type Assign struct {
	Declaration bool
	Variable    Expr
	Value       Expr
}

func (*Assign) stmtNode() {}
func (a *Assign) String() string {
	kw := ""
	if a.Declaration {
		kw = "var "
	}
	return fmt.Sprintf("%s%s = %s;", kw, a.Variable.String(), a.Value.String())
}

// ExprStmt wraps a pure expression evaluated for its side effect only
// (increments, decrements, void-returning calls).
type ExprStmt struct{ X Expr }

func (*ExprStmt) stmtNode()      {}
func (e *ExprStmt) String() string { return e.X.String() + ";" }

// Return optionally carries a value; nil means `return;`.
type Return struct{ Value Expr }

func (*Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// If is a reconstructed if-block. EndOffset is the absolute opcode index
// at which this scope closes (used only during reconstruction; harmless
// to keep in the final tree for debugging).
type If struct {
	EndOffset int
	Cond      Expr
	Body      []Stmt
}

func (*If) stmtNode() {}
func (i *If) String() string { return fmt.Sprintf("if (%s) { %d stmts }", i.Cond.String(), len(i.Body)) }

// Else is the alternate branch of the preceding If.
type Else struct {
	EndOffset int
	Body      []Stmt
}

func (*Else) stmtNode()      {}
func (e *Else) String() string { return fmt.Sprintf("else { %d stmts }", len(e.Body)) }

// While is a reconstructed loop. Cond starts as Unknown and is
// back-patched once the loop-exit jump is identified.
type While struct {
	Cond Expr
	Body []Stmt
}

func (*While) stmtNode() {}
func (w *While) String() string { return fmt.Sprintf("while (%s) { %d stmts }", w.Cond.String(), len(w.Body)) }

// SwitchCase is one non-default case body of a Switch.
type SwitchCase struct {
	EntryOffset int
	Body        []Stmt
}

// Switch is a reconstructed switch statement. The default case is
// implicit: it receives whatever statements arrive before the first case
// entry offset is reached.
type Switch struct {
	EndOffset int
	Scrutinee Expr
	Cases     []SwitchCase
	Default   []Stmt
}

func (*Switch) stmtNode() {}
func (s *Switch) String() string {
	return fmt.Sprintf("switch (%s) { %d cases }", s.Scrutinee.String(), len(s.Cases))
}

// Try is a reconstructed try region. Catch-clause reconstruction is not
// implemented (the paired EndTrap opcode is a no-op); Body holds the
// protected region only.
type Try struct {
	EndOffset int
	Body      []Stmt
}

func (*Try) stmtNode() {}
func (t *Try) String() string { return fmt.Sprintf("try { %d stmts }", len(t.Body)) }

// Throw raises an exception value.
type Throw struct{ Value Expr }

func (*Throw) stmtNode()      {}
func (t *Throw) String() string { return "throw " + t.Value.String() + ";" }

// Break exits the innermost loop or switch.
type Break struct{}

func (*Break) stmtNode()      {}
func (*Break) String() string { return "break;" }

// Continue jumps to the innermost loop's back-edge.
type Continue struct{}

func (*Continue) stmtNode()      {}
func (*Continue) String() string { return "continue;" }
