package decompiler

import (
	"testing"

	"github.com/hlbc-go/hlbc/internal/bytecode"
)

// TestDecompileClassAggregatesFieldsAndMethods builds a minimal Point class
// with one own field, one static field, one instance binding (a getter),
// and one proto method, and checks the aggregator sorts them into the
// right buckets.
func TestDecompileClassAggregatesFieldsAndMethods(t *testing.T) {
	code := &bytecode.Bytecode{
		Strings: []string{"Point", "x", "count", "getX", "norm"},
		Functions: []*bytecode.Function{
			{FIndex: 10, Type: 1, Regs: []bytecode.RefType{1}, Ops: []bytecode.Opcode{
				bytecode.OpInt{Dst: 0},
				bytecode.OpRet{Ret: 0},
			}},
			{FIndex: 11, Type: 1, IsMethod: true, Regs: []bytecode.RefType{3, 1}, Ops: []bytecode.Opcode{
				bytecode.OpGetThis{Dst: 1, FieldIdx: 0},
				bytecode.OpRet{Ret: 1},
			}},
		},
		Types: []bytecode.Type{
			{Kind: bytecode.KindVoid}, // 0
			{Kind: bytecode.KindInt},  // 1
			{Kind: bytecode.KindObj, Obj: &bytecode.ObjType{ // 2: static companion
				Name:       0,
				Super:      -1,
				Fields:     []bytecode.FieldDef{{Name: 2, Type: 1}},
				OwnFields:  []bytecode.FieldDef{{Name: 2, Type: 1}},
				Bindings:   map[bytecode.RefField]bytecode.RefFun{},
				StaticType: -1,
			}},
			{Kind: bytecode.KindObj, Obj: &bytecode.ObjType{ // 3: Point
				Name:      0,
				Super:     -1,
				Fields:    []bytecode.FieldDef{{Name: 1, Type: 1}},
				OwnFields: []bytecode.FieldDef{{Name: 1, Type: 1}},
				Bindings:  map[bytecode.RefField]bytecode.RefFun{0: 11},
				Protos:    []bytecode.ProtoDef{{Name: 4, FIndex: 10}},
				StaticType: 2,
			}},
		},
	}

	class := DecompileClass(code, 3, Options{})

	if class.Name != "Point" {
		t.Fatalf("expected class name Point, got %q", class.Name)
	}
	if len(class.Fields) != 1 {
		t.Fatalf("expected 1 field (x excluded as a binding, static count kept), got %d: %+v", len(class.Fields), class.Fields)
	}
	if class.Fields[0].Name != "count" || !class.Fields[0].Static {
		t.Fatalf("expected the static companion's field to surface, got %+v", class.Fields[0])
	}
	if len(class.Methods) != 2 {
		t.Fatalf("expected 2 methods (1 binding + 1 proto), got %d", len(class.Methods))
	}
}

func TestDecompileClassUnknownTypeReturnsEmpty(t *testing.T) {
	code := &bytecode.Bytecode{Types: []bytecode.Type{{Kind: bytecode.KindVoid}}}
	class := DecompileClass(code, 5, Options{})
	if class.Name != "" || len(class.Fields) != 0 || len(class.Methods) != 0 {
		t.Fatalf("expected an empty Class for an unresolved type reference, got %+v", class)
	}
}
