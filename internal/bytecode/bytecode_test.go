package bytecode

import "testing"

func newTestCode() *Bytecode {
	return &Bytecode{
		Strings: []string{"Point", "x", "y", "hello"},
		Types: []Type{
			{Kind: KindVoid},                                    // 0
			{Kind: KindInt},                                     // 1
			{Kind: stringTag()},                                 // 2: String
			{Kind: KindObj, Obj: &ObjType{ // 3
				Name:       0,
				Super:      -1,
				Fields:     []FieldDef{{Name: 1, Type: 1}, {Name: 2, Type: 1}},
				OwnFields:  []FieldDef{{Name: 1, Type: 1}, {Name: 2, Type: 1}},
				Bindings:   map[RefField]RefFun{},
				StaticType: -1,
			}},
		},
		Functions: []*Function{
			{FIndex: 0, Type: 0, Regs: []RefType{0}},
		},
		Natives: nil,
		GlobalsInitializers: map[RefGlobal]int{
			5: 0,
		},
		Constants: []ConstantDef{{Fields: []int{3}}},
	}
}

// stringTag returns HashLink's String type tag as a TypeKind, for test data
// that needs to exercise IsStringType without exporting stringTypeTag.
func stringTag() TypeKind { return TypeKind(stringTypeTag) }

func TestRefStringResolve(t *testing.T) {
	code := newTestCode()
	if got := RefString(0).Resolve(code); got != "Point" {
		t.Errorf("RefString(0).Resolve() = %q, want %q", got, "Point")
	}
	if got := RefString(99).Resolve(code); got != "" {
		t.Errorf("out-of-range RefString.Resolve() = %q, want empty string", got)
	}
}

func TestRefTypeIsVoidAndIsStringType(t *testing.T) {
	code := newTestCode()
	if !RefType(0).IsVoid(code) {
		t.Errorf("expected type 0 to be void")
	}
	if RefType(1).IsVoid(code) {
		t.Errorf("expected type 1 (int) not to be void")
	}
	if !RefType(2).IsStringType(code) {
		t.Errorf("expected type 2 to be the String type")
	}
	if RefType(1).IsStringType(code) {
		t.Errorf("expected type 1 (int) not to be the String type")
	}
}

func TestRefTypeResolveOutOfRange(t *testing.T) {
	code := newTestCode()
	if RefType(-1).Resolve(code) != nil {
		t.Errorf("expected nil for negative RefType")
	}
	if RefType(100).Resolve(code) != nil {
		t.Errorf("expected nil for out-of-range RefType")
	}
}

func TestFieldNameAndDisplayName(t *testing.T) {
	code := newTestCode()
	if got := RefType(3).FieldName(0, code); got != "x" {
		t.Errorf("FieldName(0) = %q, want %q", got, "x")
	}
	if got := RefType(3).FieldName(1, code); got != "y" {
		t.Errorf("FieldName(1) = %q, want %q", got, "y")
	}
	if got := RefType(3).DisplayName(code); got != "Point" {
		t.Errorf("DisplayName() = %q, want %q", got, "Point")
	}
}

func TestFunctionRegTypeOutOfRange(t *testing.T) {
	fn := &Function{Regs: []RefType{1, 2}}
	if fn.RegType(0) != 1 {
		t.Errorf("RegType(0) = %v, want 1", fn.RegType(0))
	}
	if fn.RegType(5) != -1 {
		t.Errorf("RegType(5) (out of range) = %v, want -1", fn.RegType(5))
	}
}

func TestFunctionIsConstructor(t *testing.T) {
	ctorName := RefString(0)
	fn := &Function{Name: &ctorName}
	code := &Bytecode{Strings: []string{"__constructor__"}}
	if !fn.IsConstructor(code) {
		t.Errorf("expected function named __constructor__ to report IsConstructor() == true")
	}
	other := RefString(0)
	fn2 := &Function{Name: &other}
	code2 := &Bytecode{Strings: []string{"notInit"}}
	if fn2.IsConstructor(code2) {
		t.Errorf("expected non-constructor name to report IsConstructor() == false")
	}
	fn3 := &Function{}
	if fn3.IsConstructor(code) {
		t.Errorf("expected an anonymous function (nil Name) to report IsConstructor() == false")
	}
}

func TestRefFunResolveDistinguishesNatives(t *testing.T) {
	native := &NativeFun{Name: 0}
	code := &Bytecode{
		Functions: []*Function{{FIndex: 3}},
		Natives:   []*NativeFun{native},
	}
	ptr := RefFun(3).Resolve(code)
	if ptr.Fun == nil || ptr.Native != nil {
		t.Fatalf("expected RefFun(3) to resolve to the bytecode function")
	}
	nativePtr := RefFun(0).Resolve(code)
	if nativePtr.Native == nil {
		t.Fatalf("expected RefFun(0) to resolve to the native binding")
	}
}
