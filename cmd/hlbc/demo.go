package main

import "github.com/hlbc-go/hlbc/internal/bytecode"

// demoModule builds a small, self-contained bytecode module in place of a
// real .hl file: a Point class (constructor plus a getX method) and one
// loose top-level function. Loading an actual HashLink binary is outside
// this module's scope — the bytecode loader/parser is a fixed external
// collaborator — so the CLI demonstrates the decompiler against a
// hand-built module the same way cmd/paserati demonstrates its pipeline
// against a literal -e source string.
func demoModule() (code *bytecode.Bytecode, classTypes []bytecode.RefType, looseFunctions []bytecode.RefFun) {
	code = &bytecode.Bytecode{
		Strings: []string{
			"Point",      // 0
			"x",          // 1
			"y",          // 2
			"__constructor__", // 3
			"getX",       // 4
			"sum",        // 5
		},
		Types: []bytecode.Type{
			{Kind: bytecode.KindVoid}, // 0
			{Kind: bytecode.KindInt},  // 1
			{Kind: bytecode.KindObj, Obj: &bytecode.ObjType{ // 2: Point
				Name:  0,
				Super: -1,
				Fields: []bytecode.FieldDef{
					{Name: 1, Type: 1},
					{Name: 2, Type: 1},
				},
				OwnFields: []bytecode.FieldDef{
					{Name: 1, Type: 1},
					{Name: 2, Type: 1},
				},
				Protos: []bytecode.ProtoDef{
					{Name: 3, FIndex: 0},
					{Name: 4, FIndex: 1},
				},
				Bindings:   map[bytecode.RefField]bytecode.RefFun{},
				StaticType: -1,
			}},
		},
		Functions: []*bytecode.Function{
			{
				FIndex:   0,
				Name:     strPtr(3),
				Type:     0,
				IsMethod: true,
				Regs:     []bytecode.RefType{2, 1, 1},
				ArgNames: []string{"px", "py"},
				Ops: []bytecode.Opcode{
					bytecode.OpSetThis{FieldIdx: 0, Src: 1},
					bytecode.OpSetThis{FieldIdx: 1, Src: 2},
				},
			},
			{
				FIndex:   1,
				Name:     strPtr(4),
				Type:     1,
				IsMethod: true,
				Regs:     []bytecode.RefType{2, 1},
				Ops: []bytecode.Opcode{
					bytecode.OpGetThis{Dst: 1, FieldIdx: 0},
					bytecode.OpRet{Ret: 1},
				},
			},
			{
				FIndex: 2,
				Name:   strPtr(5),
				Type:   1,
				Regs:   []bytecode.RefType{1, 1, 1},
				Ops: []bytecode.Opcode{
					bytecode.OpInt{Dst: 0},
					bytecode.OpInt{Dst: 1},
					bytecode.OpAdd{Dst: 2, A: 0, B: 1},
					bytecode.OpRet{Ret: 2},
				},
			},
		},
	}
	return code, []bytecode.RefType{2}, []bytecode.RefFun{2}
}

func strPtr(s bytecode.RefString) *bytecode.RefString { return &s }
