package decompiler

import (
	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/bytecode"
	"github.com/hlbc-go/hlbc/internal/decomperrors"
)

// ClassField is a declared field of a reconstructed class.
type ClassField struct {
	Name   string
	Static bool
	Type   bytecode.RefType
}

// Method is a reconstructed method: its originating function, binding
// flavor, and decompiled body.
type Method struct {
	Fun        bytecode.RefFun
	Static     bool
	Dynamic    bool
	Statements []ast.Stmt
}

// Class packages one type's reconstructed fields and methods — a thin
// wrapper around the core's per-function decompilation, not part of its
// hard logic.
type Class struct {
	Name       string
	Parent     string // "" if no parent
	Fields     []ClassField
	Methods    []Method

	Diagnostics []decomperrors.Diagnostic
}

// DecompileClass decompiles every method of obj: own_fields of the object
// type, skipping any field that is actually a dynamic method binding; the
// paired static companion type, likewise; then methods from instance
// bindings, static bindings, and protos, in that order.
func DecompileClass(code *bytecode.Bytecode, objType bytecode.RefType, opts Options) *Class {
	ty := objType.Resolve(code)
	if ty == nil || ty.Obj == nil {
		return &Class{}
	}
	obj := ty.Obj

	c := &Class{Name: obj.Name.Resolve(code)}
	if obj.Super >= 0 {
		c.Parent = obj.Super.DisplayName(code)
	}

	ownStart := len(obj.Fields) - len(obj.OwnFields)
	for i, f := range obj.OwnFields {
		if _, isMethod := obj.Bindings[bytecode.RefField(i+ownStart)]; isMethod {
			continue
		}
		c.Fields = append(c.Fields, ClassField{Name: f.Name.Resolve(code), Type: f.Type})
	}

	var staticObj *bytecode.ObjType
	if obj.StaticType >= 0 {
		if st := obj.StaticType.Resolve(code); st != nil && st.Obj != nil {
			staticObj = st.Obj
		}
	}
	if staticObj != nil {
		ownStart := len(staticObj.Fields) - len(staticObj.OwnFields)
		for i, f := range staticObj.OwnFields {
			if _, isMethod := staticObj.Bindings[bytecode.RefField(i+ownStart)]; isMethod {
				continue
			}
			c.Fields = append(c.Fields, ClassField{Name: f.Name.Resolve(code), Static: true, Type: f.Type})
		}
	}

	appendMethod := func(fn bytecode.RefFun, static, dynamic bool) {
		f := fn.Resolve(code)
		if f.Fun == nil {
			return
		}
		stmts, diags, err := Function(code, f.Fun, opts)
		c.Diagnostics = append(c.Diagnostics, diags...)
		if err != nil {
			c.Diagnostics = append(c.Diagnostics, decomperrors.Diagnostic{
				Position: decomperrors.Position{FunctionIndex: int(fn)},
				Msg:      err.Error(),
			})
			return
		}
		c.Methods = append(c.Methods, Method{Fun: fn, Static: static, Dynamic: dynamic, Statements: stmts})
	}

	for _, fn := range obj.Bindings {
		appendMethod(fn, false, true)
	}
	if staticObj != nil {
		for _, fn := range staticObj.Bindings {
			appendMethod(fn, true, false)
		}
	}
	for _, p := range obj.Protos {
		appendMethod(p.FIndex, false, false)
	}

	return c
}
