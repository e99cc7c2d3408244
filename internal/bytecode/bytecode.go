// Package bytecode defines the read-only contract the decompiler consumes:
// a fully parsed HashLink module (types, functions, strings, constants) and
// the opcode shapes that make up a function body. Loading and parsing a
// real .hl file is out of scope here — this package only describes the
// shape that loader is expected to hand over.
package bytecode

// Reg is an index into a function's register array. Lifetime is the
// function body it belongs to.
type Reg int

// RefField is a field index into an object/struct type's field list, or a
// field index into a virtual (structural) type's field list.
type RefField int

// RefString indexes into Bytecode.Strings.
type RefString int

// RefInt indexes into Bytecode.Ints.
type RefInt int

// RefFloat indexes into Bytecode.Floats.
type RefFloat int

// RefGlobal indexes into the module's global table.
type RefGlobal int

// RefType indexes into Bytecode.Types.
type RefType int

// RefFun identifies a function, either by findex (resolved against
// Bytecode.Functions) or, for natives, an opaque native binding.
type RefFun int

// TypeKind mirrors HashLink's type tag values; only the tags the
// decompiler inspects are named, the rest are opaque.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindDyn
	KindFun
	KindObj
	KindArray
	KindType
	KindRef
	KindVirtual
	KindDynObj
	KindAbstract
	KindEnum
	KindNull
	KindStruct
)

// stringTypeTag is HashLink's type tag for the built-in String type, used
// by GetGlobal to distinguish an interned string global from a type
// reference global.
const stringTypeTag = 13

// FieldDef is one field of an object/struct/virtual type.
type FieldDef struct {
	Name RefString
	Type RefType
}

// ProtoDef is a non-overridden method slot inherited through the vtable
// (object.protos in the source format).
type ProtoDef struct {
	Name   RefString
	FIndex RefFun
}

// ObjType describes an object, struct, or the "static" companion type
// HashLink generates for each class to hold its static fields/methods.
type ObjType struct {
	Name       RefString
	Super      RefType // may be -1: no parent
	Fields     []FieldDef
	OwnFields  []FieldDef // fields declared on this type, tail of Fields
	Protos     []ProtoDef
	Bindings   map[RefField]RefFun // dynamic/static method bindings
	StaticType RefType             // -1 if this type has no static companion
}

// EnumConstruct is one case of an enum type.
type EnumConstruct struct {
	Name   RefString
	Params []RefType
}

// EnumType describes an enum definition.
type EnumType struct {
	Name        RefString
	Constructs  []EnumConstruct
}

// FunType describes a function signature (argument and return types).
type FunType struct {
	Args []RefType
	Ret  RefType
}

// Type is a HashLink type definition. Only the Kind-tagged payload that
// matches Kind is populated.
type Type struct {
	Kind    TypeKind
	Obj     *ObjType
	Enum    *EnumType
	Fun     *FunType
	Virtual *VirtualType
}

// VirtualType describes an anonymous structural type.
type VirtualType struct {
	Fields []FieldDef
}

// FunPtr is the resolved target of a call or closure: either a bytecode
// function or an opaque native binding.
type FunPtr struct {
	Fun    *Function // nil if Native is set
	Native *NativeFun
}

// NativeFun is an external (non-bytecode) function binding.
type NativeFun struct {
	Name RefString
	Type RefType
}

// DebugInfo maps an opcode index to the name a local register is known
// under at that point in the function, if any.
type DebugInfo struct {
	// Names[i] is the variable name live at opcode index i, keyed by
	// register; absence means the register is unnamed at i.
	Names map[int]map[Reg]string
}

// NameAt returns the name bound to reg at opcode index i, if the function
// carries debug info for it.
func (d *DebugInfo) NameAt(i int, reg Reg) (string, bool) {
	if d == nil || d.Names == nil {
		return "", false
	}
	names, ok := d.Names[i]
	if !ok {
		return "", false
	}
	name, ok := names[reg]
	return name, ok
}

// Function is one compiled HashLink function: its register types, its
// linear opcode stream, and whatever debug metadata the compiler retained.
type Function struct {
	FIndex    RefFun
	Name      *RefString // nil: anonymous (e.g. a closure created in-place)
	Type      RefType    // resolves to a Type with Kind == KindFun
	Regs      []RefType  // register index -> its declared type
	Ops       []Opcode
	IsMethod  bool
	ArgNames  []string // names of formal arguments, parallel to Type.Fun.Args (method receiver excluded)
	Debug     *DebugInfo
}

// Bytecode is the whole parsed module: every table the decompiler may need
// to resolve a reference found in an opcode.
type Bytecode struct {
	Strings             []string
	Ints                []int64
	Floats              []float64
	Types               []Type
	Functions           []*Function
	Natives             []*NativeFun
	GlobalsInitializers map[RefGlobal]int // global -> index into Constants
	Constants           []ConstantDef
}

// ConstantDef is a module-level constant, e.g. an interned string global
// initializer: for an interned string global, Fields[0] indexes into
// Strings.
type ConstantDef struct {
	Fields []int
}

func (s RefString) Resolve(code *Bytecode) string {
	if int(s) < 0 || int(s) >= len(code.Strings) {
		return ""
	}
	return code.Strings[s]
}

func (n RefInt) Resolve(code *Bytecode) int64 {
	if int(n) < 0 || int(n) >= len(code.Ints) {
		return 0
	}
	return code.Ints[n]
}

func (n RefFloat) Resolve(code *Bytecode) float64 {
	if int(n) < 0 || int(n) >= len(code.Floats) {
		return 0
	}
	return code.Floats[n]
}

func (t RefType) Resolve(code *Bytecode) *Type {
	if int(t) < 0 || int(t) >= len(code.Types) {
		return nil
	}
	return &code.Types[t]
}

// IsVoid reports whether t resolves to the void type.
func (t RefType) IsVoid(code *Bytecode) bool {
	ty := t.Resolve(code)
	return ty != nil && ty.Kind == KindVoid
}

// IsStringType reports whether t is HashLink's built-in String type (tag 13).
func (t RefType) IsStringType(code *Bytecode) bool {
	ty := t.Resolve(code)
	return ty != nil && int(ty.Kind) == stringTypeTag
}

// Resolve looks up a function by index, distinguishing bytecode functions
// from natives.
func (f RefFun) Resolve(code *Bytecode) FunPtr {
	for _, fn := range code.Functions {
		if fn.FIndex == f {
			return FunPtr{Fun: fn}
		}
	}
	for _, n := range code.Natives {
		// A native is identified by its position in code.Natives.
		// Bytecode functions are checked first, so a native whose
		// position equals some function's FIndex is never returned.
		if RefFun(nativeIndex(n, code)) == f {
			return FunPtr{Native: n}
		}
	}
	return FunPtr{}
}

func nativeIndex(n *NativeFun, code *Bytecode) int {
	for i, other := range code.Natives {
		if other == n {
			return i
		}
	}
	return -1
}

// RegType returns the declared type of a register in f.
func (f *Function) RegType(r Reg) RefType {
	if int(r) < 0 || int(r) >= len(f.Regs) {
		return -1
	}
	return f.Regs[r]
}

// VarName returns the debug-table name bound to dst at opcode index i.
func (f *Function) VarName(i int, dst Reg) (string, bool) {
	return f.Debug.NameAt(i, dst)
}

// ArgName returns the name of the i-th formal argument (0-based, excluding
// an implicit `this`), if known.
func (f *Function) ArgName(i int) (string, bool) {
	if i < 0 || i >= len(f.ArgNames) {
		return "", false
	}
	name := f.ArgNames[i]
	return name, name != ""
}

// FunType returns the resolved function-type payload for f.
func (f *Function) FunType(code *Bytecode) *FunType {
	ty := f.Type.Resolve(code)
	if ty == nil || ty.Kind != KindFun {
		return nil
	}
	return ty.Fun
}

// IsConstructor reports whether f is a method bound to the well-known
// Haxe constructor name.
func (f *Function) IsConstructor(code *Bytecode) bool {
	if f.Name == nil {
		return false
	}
	return f.Name.Resolve(code) == "__constructor__"
}

// Binding is a resolved method slot: the function it currently dispatches
// to and the name it is displayed under. A single lookup produces both,
// so a caller can never end up with a name from one vtable path and a
// void/non-void decision from another.
type Binding struct {
	Name   string
	FIndex RefFun
}

// Method looks up method slot idx on the object type t resolves to. A
// Bindings override (idx addresses a field slot carrying a
// dynamically-bound or static method) takes precedence; otherwise idx is
// looked up as a Protos position (an inherited, non-overridden vtable
// slot). Both paths report through the same Binding, so name resolution
// and void-detection never disagree about which function idx addresses.
func (t RefType) Method(idx RefField, code *Bytecode) (Binding, bool) {
	ty := t.Resolve(code)
	if ty == nil || ty.Obj == nil {
		return Binding{}, false
	}
	if fn, ok := ty.Obj.Bindings[idx]; ok {
		return Binding{Name: t.FieldName(idx, code), FIndex: fn}, true
	}
	for i := range ty.Obj.Protos {
		if RefField(i) == idx {
			p := ty.Obj.Protos[i]
			return Binding{Name: p.Name.Resolve(code), FIndex: p.FIndex}, true
		}
	}
	return Binding{}, false
}

// FieldName resolves the source name of field idx as declared on the
// object/struct/virtual type t resolves to.
func (t RefType) FieldName(idx RefField, code *Bytecode) string {
	ty := t.Resolve(code)
	if ty == nil {
		return "?"
	}
	switch ty.Kind {
	case KindObj, KindStruct:
		if ty.Obj != nil && int(idx) >= 0 && int(idx) < len(ty.Obj.Fields) {
			return ty.Obj.Fields[idx].Name.Resolve(code)
		}
	case KindVirtual:
		if ty.Virtual != nil && int(idx) >= 0 && int(idx) < len(ty.Virtual.Fields) {
			return ty.Virtual.Fields[idx].Name.Resolve(code)
		}
	}
	return "?"
}

// DisplayName resolves t's own type name, for types that carry one.
func (t RefType) DisplayName(code *Bytecode) string {
	ty := t.Resolve(code)
	if ty == nil {
		return "?"
	}
	switch ty.Kind {
	case KindObj, KindStruct:
		if ty.Obj != nil {
			return ty.Obj.Name.Resolve(code)
		}
	case KindEnum:
		if ty.Enum != nil {
			return ty.Enum.Name.Resolve(code)
		}
	}
	return "?"
}
