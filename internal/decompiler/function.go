// Package decompiler implements the per-function opcode-to-AST
// reconstruction pass. It performs a single forward, register-level
// abstract interpretation over a function's opcode stream, feeding the
// statements it produces into a scope.Stack that reconstructs high-level
// control flow without ever building a control-flow graph.
package decompiler

import (
	"fmt"

	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/bytecode"
	"github.com/hlbc-go/hlbc/internal/decomperrors"
	"github.com/hlbc-go/hlbc/internal/scope"
)

// structuralAbort is panicked by the decompiler's fatal conditions and
// recovered at the top of Function, converting a would-be crash into an
// error scoped to the current function only — the decompiler never takes
// down a whole-module pass over one malformed function.
type structuralAbort struct{ err *decomperrors.StructuralError }

// state is the mutable working set for one in-progress function
// decompilation. Everything here is owned exclusively by the current
// invocation; nothing is shared across concurrent calls to Function.
type state struct {
	code   *bytecode.Bytecode
	fn     *bytecode.Function
	opts   Options
	depth  int

	regState map[bytecode.Reg]ast.Expr
	seen     map[string]bool
	idioms   idiomStack
	scopes   *scope.Stack

	diagnostics []decomperrors.Diagnostic
}

func (s *state) diagnose(i int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	debugPrintf("decompiler: %s\n", msg)
	if s.opts.CollectDiagnostics {
		s.diagnostics = append(s.diagnostics, decomperrors.Diagnostic{
			Position: decomperrors.Position{FunctionIndex: int(s.fn.FIndex), OpcodeIndex: i},
			Msg:      msg,
		})
	}
}

func (s *state) abort(i int, format string, args ...interface{}) {
	panic(structuralAbort{&decomperrors.StructuralError{
		Position: decomperrors.Position{FunctionIndex: int(s.fn.FIndex), OpcodeIndex: i},
		Msg:      fmt.Sprintf(format, args...),
	}})
}

// expr returns the reconstructed expression for reg, or Unknown("missing
// expr") if the register state has never been defined for it — a soft
// failure, never a crash.
func (s *state) expr(reg bytecode.Reg) ast.Expr {
	if e, ok := s.regState[reg]; ok {
		return e
	}
	return &ast.Unknown{Reason: "missing expr"}
}

func (s *state) args(regs []bytecode.Reg) []ast.Expr {
	out := make([]ast.Expr, len(regs))
	for i, r := range regs {
		out[i] = s.expr(r)
	}
	return out
}

// variable builds a sanitized Variable reference for dst, named at
// opcode index i if the debug table carries a name there.
func (s *state) variable(i int, dst bytecode.Reg) (ast.Expr, string, bool) {
	name, ok := s.fn.VarName(i, dst)
	if !ok {
		return nil, "", false
	}
	safe := sanitizeIdent(name, synthRegName(int(dst)))
	return &ast.Variable{Reg: dst, Name: safe}, safe, true
}

// pushExpr applies the dual assignment policy: if dst is
// unnamed at i, expr is stored as pure propagation with no statement
// emitted; otherwise the register is rebound to a named Variable and an
// Assign is emitted, declaring the name the first time it is seen.
func (s *state) pushExpr(i int, dst bytecode.Reg, value ast.Expr) {
	v, name, named := s.variable(i, dst)
	if !named {
		s.regState[dst] = value
		return
	}
	s.regState[dst] = v
	declaration := !s.seen[name]
	s.seen[name] = true
	s.scopes.PushStmt(&ast.Assign{Declaration: declaration, Variable: v, Value: value})
}

func (s *state) pushStmt(stmt ast.Stmt) { s.scopes.PushStmt(stmt) }

// Function decompiles fn to a list of statements. It recursively
// decompiles the target of any StaticClosure it encounters.
func Function(code *bytecode.Bytecode, fn *bytecode.Function, opts Options) (stmts []ast.Stmt, diags []decomperrors.Diagnostic, err error) {
	return decompileAt(code, fn, opts, 0)
}

func decompileAt(code *bytecode.Bytecode, fn *bytecode.Function, opts Options, depth int) (stmts []ast.Stmt, diags []decomperrors.Diagnostic, err error) {
	s := &state{
		code:     code,
		fn:       fn,
		opts:     opts,
		depth:    depth,
		regState: make(map[bytecode.Reg]ast.Expr, len(fn.Regs)),
		seen:     make(map[string]bool),
		scopes:   scope.New(),
	}

	defer func() {
		if r := recover(); r != nil {
			if sa, ok := r.(structuralAbort); ok {
				err = sa.err
				return
			}
			panic(r)
		}
	}()

	s.seed()
	for i, op := range fn.Ops {
		s.step(i, op)
		s.scopes.Advance()
	}
	return s.scopes.Statements(), s.diagnostics, nil
}

// seed initializes register state: `this` for methods
// and constructors, then every named formal argument.
func (s *state) seed() {
	start := 0
	if s.fn.IsMethod || s.fn.IsConstructor(s.code) {
		s.regState[0] = ast.This()
		start = 1
	}
	ft := s.fn.FunType(s.code)
	argCount := 0
	if ft != nil {
		argCount = len(ft.Args)
	}
	for i := start; i < argCount; i++ {
		reg := bytecode.Reg(i)
		name, ok := s.fn.ArgName(i - start)
		if !ok {
			s.regState[reg] = &ast.Variable{Reg: reg}
			continue
		}
		safe := sanitizeIdent(name, synthRegName(i))
		s.regState[reg] = &ast.Variable{Reg: reg, Name: safe}
		s.seen[safe] = true
	}
}

// step dispatches a single opcode. Opcodes not enumerated here have no
// effect.
func (s *state) step(i int, op bytecode.Opcode) {
	switch o := op.(type) {

	// --- constants ---
	case bytecode.OpInt:
		s.pushExpr(i, o.Dst, ast.Int(o.Ptr.Resolve(s.code)))
	case bytecode.OpFloat:
		s.pushExpr(i, o.Dst, ast.Float(o.Ptr.Resolve(s.code)))
	case bytecode.OpBool:
		s.pushExpr(i, o.Dst, ast.Bool(o.Value))
	case bytecode.OpString:
		s.pushExpr(i, o.Dst, ast.Str(normalizeString(o.Ptr.Resolve(s.code))))
	case bytecode.OpNull:
		s.pushExpr(i, o.Dst, ast.Null())

	// --- operators ---
	case bytecode.OpMov:
		s.stepMov(i, o)
	case bytecode.OpAdd:
		s.pushExpr(i, o.Dst, ast.Add(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpSub:
		s.pushExpr(i, o.Dst, ast.Sub(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpMul:
		s.pushExpr(i, o.Dst, ast.Mul(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpSDiv:
		s.pushExpr(i, o.Dst, ast.Div(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpUDiv:
		s.pushExpr(i, o.Dst, ast.Div(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpSMod:
		s.pushExpr(i, o.Dst, ast.Modulo(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpUMod:
		s.pushExpr(i, o.Dst, ast.Modulo(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpShl:
		s.pushExpr(i, o.Dst, ast.Shl(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpSShr:
		s.pushExpr(i, o.Dst, ast.Shr(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpUShr:
		s.pushExpr(i, o.Dst, ast.Shr(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpAnd:
		s.pushExpr(i, o.Dst, ast.And(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpOr:
		s.pushExpr(i, o.Dst, ast.Or(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpXor:
		s.pushExpr(i, o.Dst, ast.Xor(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpNeg:
		s.pushExpr(i, o.Dst, ast.Neg(s.expr(o.Src)))
	case bytecode.OpNot:
		s.pushExpr(i, o.Dst, ast.Not(s.expr(o.Src)))
	case bytecode.OpIncr:
		s.pushStmt(&ast.ExprStmt{X: ast.Incr(s.expr(o.Dst))})
	case bytecode.OpDecr:
		s.pushStmt(&ast.ExprStmt{X: ast.Decr(s.expr(o.Dst))})

	// --- calls ---
	case bytecode.OpCall0:
		s.stepCall0(i, o)
	case bytecode.OpCall1:
		s.stepCall(i, o.Dst, o.Fun, []bytecode.Reg{o.Arg0})
	case bytecode.OpCall2:
		s.stepCall(i, o.Dst, o.Fun, []bytecode.Reg{o.Arg0, o.Arg1})
	case bytecode.OpCall3:
		s.stepCall(i, o.Dst, o.Fun, []bytecode.Reg{o.Arg0, o.Arg1, o.Arg2})
	case bytecode.OpCall4:
		s.stepCall(i, o.Dst, o.Fun, []bytecode.Reg{o.Arg0, o.Arg1, o.Arg2, o.Arg3})
	case bytecode.OpCallN:
		s.stepCallN(i, o)
	case bytecode.OpCallMethod:
		s.stepCallMethod(i, o)
	case bytecode.OpCallThis:
		s.stepCallThis(i, o)
	case bytecode.OpCallClosure:
		s.stepCallClosure(i, o)

	// --- closures ---
	case bytecode.OpStaticClosure:
		s.stepStaticClosure(i, o)
	case bytecode.OpInstanceClosure:
		target := o.Fun.Resolve(s.code)
		name := "_"
		if target.Fun != nil && target.Fun.Name != nil {
			name = target.Fun.Name.Resolve(s.code)
		}
		s.pushExpr(i, o.Dst, &ast.Field{Receiver: s.expr(o.Obj), Name: name})

	// --- field / global access ---
	case bytecode.OpField:
		s.pushExpr(i, o.Dst, ast.FieldOf(s.expr(o.Obj), s.fn.RegType(o.Obj), o.FieldIdx, s.code))
	case bytecode.OpSetField:
		s.stepSetField(i, o)
	case bytecode.OpGetThis:
		s.pushExpr(i, o.Dst, ast.FieldOf(ast.This(), s.fn.RegType(0), o.FieldIdx, s.code))
	case bytecode.OpSetThis:
		s.pushStmt(&ast.Assign{
			Declaration: false,
			Variable:    ast.FieldOf(ast.This(), s.fn.RegType(0), o.FieldIdx, s.code),
			Value:       s.expr(o.Src),
		})
	case bytecode.OpDynGet:
		s.pushExpr(i, o.Dst, &ast.Array{Receiver: s.expr(o.Obj), Index: ast.Str(o.Field.Resolve(s.code))})
	case bytecode.OpDynSet:
		s.pushStmt(&ast.Assign{
			Declaration: false,
			Variable:    &ast.Array{Receiver: s.expr(o.Obj), Index: ast.Str(o.Field.Resolve(s.code))},
			Value:       s.expr(o.Src),
		})
	case bytecode.OpGetGlobal:
		s.stepGetGlobal(i, o)

	// --- casts: identity ---
	case bytecode.OpToDyn:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpToSFloat:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpToUFloat:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpToInt:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpSafeCast:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpUnsafeCast:
		s.pushExpr(i, o.Dst, s.expr(o.Src))
	case bytecode.OpToVirtual:
		s.pushExpr(i, o.Dst, s.expr(o.Src))

	// --- construction ---
	case bytecode.OpNew:
		s.stepNew(i, o)

	// --- enums ---
	case bytecode.OpEnumAlloc:
		s.pushExpr(i, o.Dst, &ast.EnumConstr{Type: s.fn.RegType(o.Dst), Construct: o.Construct})
	case bytecode.OpMakeEnum:
		s.pushExpr(i, o.Dst, &ast.EnumConstr{Type: s.fn.RegType(o.Dst), Construct: o.Construct, Args: s.args(o.Args)})
	// EnumIndex, EnumField, SetEnumField: unimplemented, no effect.

	case bytecode.OpGetMem:
		s.pushExpr(i, o.Dst, &ast.Array{Receiver: s.expr(o.Bytes), Index: s.expr(o.Index)})

	// --- control flow ---
	case bytecode.OpRet:
		s.stepRet(i, o)
	case bytecode.OpLabel:
		s.scopes.PushLoop(i)
	case bytecode.OpJTrue:
		s.pushJmp(i, o.Offset, ast.Not(s.expr(o.Cond)))
	case bytecode.OpJFalse:
		s.pushJmp(i, o.Offset, s.expr(o.Cond))
	case bytecode.OpJNull:
		s.pushJmp(i, o.Offset, ast.NotEq(s.expr(o.Reg), ast.Null()))
	case bytecode.OpJNotNull:
		s.pushJmp(i, o.Offset, ast.EqOp(s.expr(o.Reg), ast.Null()))
	case bytecode.OpJSGte:
		s.pushJmp(i, o.Offset, ast.Gt(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJUGte:
		s.pushJmp(i, o.Offset, ast.Gt(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJSGt:
		s.pushJmp(i, o.Offset, ast.Gte(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJSLte:
		s.pushJmp(i, o.Offset, ast.Lt(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJSLt:
		s.pushJmp(i, o.Offset, ast.Lte(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJULt:
		s.pushJmp(i, o.Offset, ast.Lte(s.expr(o.B), s.expr(o.A)))
	case bytecode.OpJEq:
		s.pushJmp(i, o.Offset, ast.NotEq(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpJNotEq:
		s.pushJmp(i, o.Offset, ast.EqOp(s.expr(o.A), s.expr(o.B)))
	case bytecode.OpJAlways:
		s.stepJAlways(i, o)
	case bytecode.OpSwitch:
		s.stepSwitch(i, o)

	// --- exceptions ---
	case bytecode.OpThrow:
		s.pushStmt(&ast.Throw{Value: s.expr(o.Exc)})
	case bytecode.OpRethrow:
		s.pushStmt(&ast.Throw{Value: s.expr(o.Exc)})
	case bytecode.OpTrap:
		s.scopes.PushTry(i + o.Offset + 1)
	case bytecode.OpEndTrap:
		// Accepted and ignored: catch-clause reconstruction is not
		// implemented.

	default:
		// Unknown/unenumerated opcode: no effect.
	}
}

func (s *state) stepMov(i int, o bytecode.OpMov) {
	s.pushExpr(i, o.Dst, s.expr(o.Src))
	// Deliberate workaround, carried over unchanged from the reference
	// decompiler: later instructions sometimes use dst and src
	// interchangeably, so src is also rebound to an alias of dst.
	safeName := ""
	if name, ok := s.fn.VarName(i, o.Dst); ok {
		safeName = sanitizeIdent(name, synthRegName(int(o.Dst)))
	}
	s.regState[o.Src] = &ast.Variable{Reg: o.Dst, Name: safeName}
}

func (s *state) stepCall0(i int, o bytecode.OpCall0) {
	void := isVoidCallee(s.code, o.Fun)
	call := ast.CallFun(o.Fun, nil)
	if void {
		s.pushStmt(&ast.ExprStmt{X: call})
	} else {
		s.pushExpr(i, o.Dst, call)
	}
}

// stepCall implements the shared Call1..Call4 rule: if the
// innermost idiom is a pending constructor on arg0, complete it; otherwise
// resolve the callee surface and apply the dual assignment policy.
func (s *state) stepCall(i int, dst bytecode.Reg, fun bytecode.RefFun, argRegs []bytecode.Reg) {
	if top, ok := s.idioms.peek(); ok {
		if ctor, isCtor := top.(ctorCtx); isCtor && ctor.reg == argRegs[0] {
			s.idioms.pop()
			s.pushExpr(ctor.pos, ctor.reg, &ast.Constructor{
				Type: s.fn.RegType(ctor.reg),
				Args: s.args(argRegs[1:]),
			})
			return
		}
	}
	s.emitResolvedCall(i, dst, fun, argRegs)
}

func (s *state) stepCallN(i int, o bytecode.OpCallN) {
	if top, ok := s.idioms.peek(); ok {
		if ctor, isCtor := top.(ctorCtx); isCtor && len(o.Args) > 0 && ctor.reg == o.Args[0] {
			s.idioms.pop()
			s.pushExpr(ctor.pos, ctor.reg, &ast.Constructor{
				Type: s.fn.RegType(ctor.reg),
				Args: s.args(o.Args[1:]),
			})
			return
		}
	}
	s.emitResolvedCall(i, o.Dst, o.Fun, o.Args)
}

// emitResolvedCall resolves fun's callee surface (method vs. plain
// function/native) and applies the dual assignment / void-ExprStmt rule.
func (s *state) emitResolvedCall(i int, dst bytecode.Reg, fun bytecode.RefFun, argRegs []bytecode.Reg) {
	ptr := fun.Resolve(s.code)
	var call ast.Expr
	var void bool
	switch {
	case ptr.Fun != nil:
		ft := ptr.Fun.FunType(s.code)
		void = ft != nil && ft.Ret.IsVoid(s.code)
		if ptr.Fun.IsMethod && len(argRegs) > 0 {
			name := "_"
			if ptr.Fun.Name != nil {
				name = ptr.Fun.Name.Resolve(s.code)
			}
			call = ast.CallExpr(&ast.Field{Receiver: s.expr(argRegs[0]), Name: name}, s.args(argRegs[1:]))
		} else {
			call = ast.CallFun(fun, s.args(argRegs))
		}
	case ptr.Native != nil:
		nt := ptr.Native.Type.Resolve(s.code)
		void = nt != nil && nt.Kind == bytecode.KindFun && nt.Fun != nil && nt.Fun.Ret.IsVoid(s.code)
		call = ast.CallFun(fun, s.args(argRegs))
	default:
		call = ast.CallFun(fun, s.args(argRegs))
	}
	if void {
		s.pushStmt(&ast.ExprStmt{X: call})
	} else {
		s.pushExpr(i, dst, call)
	}
}

func isVoidCallee(code *bytecode.Bytecode, fun bytecode.RefFun) bool {
	ptr := fun.Resolve(code)
	if ptr.Fun != nil {
		ft := ptr.Fun.FunType(code)
		return ft != nil && ft.Ret.IsVoid(code)
	}
	if ptr.Native != nil {
		nt := ptr.Native.Type.Resolve(code)
		return nt != nil && nt.Kind == bytecode.KindFun && nt.Fun != nil && nt.Fun.Ret.IsVoid(code)
	}
	return false
}

func (s *state) stepCallMethod(i int, o bytecode.OpCallMethod) {
	recvType := s.fn.RegType(o.Args[0])
	binding, ok := recvType.Method(o.Field, s.code)
	name := "?"
	void := false
	if ok {
		name = binding.Name
		void = isVoidCallee(s.code, binding.FIndex)
	}
	call := ast.CallExpr(&ast.Field{Receiver: s.expr(o.Args[0]), Name: name}, s.args(o.Args[1:]))
	if void {
		s.pushStmt(&ast.ExprStmt{X: call})
	} else {
		s.pushExpr(i, o.Dst, call)
	}
}

func (s *state) stepCallThis(i int, o bytecode.OpCallThis) {
	recvType := s.fn.RegType(0)
	binding, ok := recvType.Method(o.Field, s.code)
	name := "?"
	void := false
	if ok {
		name = binding.Name
		void = isVoidCallee(s.code, binding.FIndex)
	}
	call := ast.CallExpr(&ast.Field{Receiver: ast.This(), Name: name}, s.args(o.Args))
	if void {
		s.pushStmt(&ast.ExprStmt{X: call})
	} else {
		s.pushExpr(i, o.Dst, call)
	}
}

func (s *state) stepCallClosure(i int, o bytecode.OpCallClosure) {
	call := ast.CallExpr(s.expr(o.Fun), s.args(o.Args))
	void := false
	if ft := s.fn.RegType(o.Fun).Resolve(s.code); ft != nil && ft.Kind == bytecode.KindFun && ft.Fun != nil {
		void = ft.Fun.Ret.IsVoid(s.code)
	}
	if void {
		s.pushStmt(&ast.ExprStmt{X: call})
	} else {
		s.pushExpr(i, o.Dst, call)
	}
}

func (s *state) stepStaticClosure(i int, o bytecode.OpStaticClosure) {
	ptr := o.Fun.Resolve(s.code)
	if ptr.Fun == nil {
		s.diagnose(i, "StaticClosure target #%d is not a bytecode function", o.Fun)
		return
	}
	if s.depth+1 >= s.opts.maxDepth() {
		s.diagnose(i, "closure nesting exceeds depth limit %d, not recursing", s.opts.maxDepth())
		return
	}
	body, nestedDiags, err := decompileAt(s.code, ptr.Fun, s.opts, s.depth+1)
	s.diagnostics = append(s.diagnostics, nestedDiags...)
	if err != nil {
		s.diagnose(i, "nested closure decompilation failed: %v", err)
		return
	}
	s.pushExpr(i, o.Dst, &ast.Closure{Fun: o.Fun, Body: body})
}

func (s *state) stepSetField(i int, o bytecode.OpSetField) {
	top, ok := s.idioms.pop()
	if ok {
		if anon, isAnon := top.(anonCtx); isAnon {
			anon.fields[o.FieldIdx] = s.expr(o.Src)
			anon.order = append(anon.order, o.FieldIdx)
			anon.remaining--
			if anon.remaining == 0 {
				s.pushExpr(anon.pos, o.Obj, &ast.Anonymous{Type: s.fn.RegType(o.Obj), Fields: anon.fields, Order: anon.order})
			} else {
				s.idioms.push(anon)
			}
			return
		}
		// An unrelated context was on top; preserve it.
		s.idioms.push(top)
		s.pushStmt(&ast.Assign{
			Declaration: false,
			Variable:    ast.FieldOf(s.expr(o.Obj), s.fn.RegType(o.Obj), o.FieldIdx, s.code),
			Value:       s.expr(o.Src),
		})
		return
	}
	s.pushStmt(&ast.Assign{
		Declaration: false,
		Variable:    ast.FieldOf(s.expr(o.Obj), s.fn.RegType(o.Obj), o.FieldIdx, s.code),
		Value:       s.expr(o.Src),
	})
}

func (s *state) stepGetGlobal(i int, o bytecode.OpGetGlobal) {
	dstType := s.fn.RegType(o.Dst)
	if dstType.IsStringType(s.code) {
		idx, ok := s.code.GlobalsInitializers[o.Global]
		if !ok || idx < 0 || idx >= len(s.code.Constants) || len(s.code.Constants[idx].Fields) == 0 {
			s.diagnose(i, "GetGlobal #%d: no interned string initializer", o.Global)
			return
		}
		strIdx := s.code.Constants[idx].Fields[0]
		if strIdx < 0 || strIdx >= len(s.code.Strings) {
			s.diagnose(i, "GetGlobal #%d: string index out of range", o.Global)
			return
		}
		s.pushExpr(i, o.Dst, ast.Str(normalizeString(s.code.Strings[strIdx])))
		return
	}
	ty := dstType.Resolve(s.code)
	if ty == nil {
		return
	}
	switch ty.Kind {
	case bytecode.KindObj, bytecode.KindStruct:
		s.pushExpr(i, o.Dst, &ast.Variable{Reg: o.Dst, Name: sanitizeIdent(dstType.DisplayName(s.code), synthRegName(int(o.Dst)))})
	case bytecode.KindEnum:
		s.pushExpr(i, o.Dst, &ast.Unknown{Reason: "unknown enum variant"})
	default:
		// any other case is ignored
	}
}

func (s *state) stepNew(i int, o bytecode.OpNew) {
	ty := s.fn.RegType(o.Dst).Resolve(s.code)
	if ty == nil {
		s.pushExpr(i, o.Dst, &ast.Constructor{Type: s.fn.RegType(o.Dst)})
		return
	}
	switch ty.Kind {
	case bytecode.KindObj, bytecode.KindStruct:
		s.idioms.push(ctorCtx{reg: o.Dst, pos: i})
	case bytecode.KindVirtual:
		n := 0
		if ty.Virtual != nil {
			n = len(ty.Virtual.Fields)
		}
		s.idioms.push(anonCtx{pos: i, fields: make(map[bytecode.RefField]ast.Expr, n), remaining: n})
	default:
		s.pushExpr(i, o.Dst, &ast.Constructor{Type: s.fn.RegType(o.Dst)})
	}
}

func (s *state) stepRet(i int, o bytecode.OpRet) {
	void := s.fn.RegType(o.Ret).IsVoid(s.code)
	if s.scopes.HasScopes() {
		if void {
			s.pushStmt(&ast.Return{})
		} else {
			s.pushStmt(&ast.Return{Value: s.expr(o.Ret)})
		}
		return
	}
	if !void {
		s.pushStmt(&ast.Return{Value: s.expr(o.Ret)})
	}
	// else: suppress a trailing `return;` with no enclosing scope.
}

// pushJmp is the shared handler for every forward conditional jump. cond
// is the already-negated condition (negated because the jump is taken to
// *skip* the guarded body).
func (s *state) pushJmp(i int, offset int, cond ast.Expr) {
	if offset <= 0 {
		return
	}
	target := i + offset
	if target < len(s.fn.Ops) {
		if ja, ok := s.fn.Ops[target].(bytecode.OpJAlways); ok && ja.Offset < 0 {
			if loopCond := s.scopes.UpdateLastLoopCond(); loopCond != nil {
				if _, isUnknown := (*loopCond).(*ast.Unknown); isUnknown {
					*loopCond = cond
					return
				}
			}
			s.scopes.PushIf(offset+1+i, cond)
			return
		}
	}
	s.scopes.PushIf(offset+1+i, cond)
}

func (s *state) stepJAlways(i int, o bytecode.OpJAlways) {
	if o.Offset < 0 {
		s.stepJAlwaysBackward(i, o)
		return
	}
	s.stepJAlwaysForward(i, o)
}

func (s *state) stepJAlwaysBackward(i int, o bytecode.OpJAlways) {
	loopStart, ok := s.scopes.LastLoopStart()
	if !ok {
		s.abort(i, "backward JAlways with no enclosing loop")
	}
	// Scan subsequent opcodes for another backward JAlways targeting the
	// same loop start: if one exists, this jump is not the loop's last
	// back-edge and is a continue.
	for j := i + 1; j < len(s.fn.Ops); j++ {
		if other, ok := s.fn.Ops[j].(bytecode.OpJAlways); ok {
			if j+other.Offset+1 == loopStart {
				s.pushStmt(&ast.Continue{})
				return
			}
		}
	}
	while, ok := s.scopes.EndLastLoop()
	if !ok {
		s.abort(i, "end_last_loop requested but innermost scope is not a loop")
	}
	s.pushStmt(while)
}

func (s *state) stepJAlwaysForward(i int, o bytecode.OpJAlways) {
	if offsets, ok := s.scopes.LastIsSwitchCtx(); ok {
		target := i
		found := -1
		for idx, off := range offsets {
			if off == target {
				found = idx
				break
			}
		}
		if found < 0 {
			s.abort(i, "JAlways into switch with no matching case offset")
		}
		s.scopes.PushSwitchCase(found)
		return
	}
	if _, inLoop := s.scopes.LastLoopStart(); inLoop {
		target := i + o.Offset
		if target >= 0 && target < len(s.fn.Ops) {
			if ja, ok := s.fn.Ops[target].(bytecode.OpJAlways); ok && ja.Offset < 0 {
				s.pushStmt(&ast.Break{})
				return
			}
		}
		return
	}
	if s.scopes.LastIsIf() {
		s.scopes.PushElse(i + o.Offset + 1)
		return
	}
	s.diagnose(i, "stray forward unconditional jump with no matching scope")
}

func (s *state) stepSwitch(i int, o bytecode.OpSwitch) {
	offsets := make([]int, len(o.Offsets))
	for j, off := range o.Offsets {
		offsets[j] = i + off
	}
	s.scopes.PushSwitch(i+o.End+1, s.expr(o.Reg), offsets)
}
