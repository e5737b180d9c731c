// Package ir defines Koi's flat three-address intermediate representation
// and the emitter that lowers a checked module into it (spec.md §3 IR,
// §4.7).
package ir

import "fmt"

// IRKind is the primitive set an IRType can take (spec.md §3 IRType).
type IRKind int

const (
	KVoid IRKind = iota
	KI8
	KI16
	KI32
	KI64
	KU8
	KU16
	KU32
	KU64
	KF32
	KF64
	KStr
	KPointer
	KObject
	KFunction
)

// IRType is the emitter's/assembler's view of a value's shape, stripped
// of source-level aliasing (spec.md §3 IRType).
type IRType struct {
	Kind   IRKind
	Elem   *IRType           // for KPointer
	Name   string            // for KObject
	Fields []ObjectField     // for KObject
	Params []IRType          // for KFunction
	Ret    *IRType           // for KFunction
}

// ObjectField is one field of a KObject IRType (unpadded layout, spec.md
// §3 IRType).
type ObjectField struct {
	Name   string
	Type   IRType
	Offset int
}

// Size returns the IRType's byte size per spec.md §3: Void=0, 8-bit=1,
// 16-bit=2, 32-bit=4, 64-bit/pointer/string=8.
func (t IRType) Size() int {
	switch t.Kind {
	case KVoid:
		return 0
	case KI8, KU8:
		return 1
	case KI16, KU16:
		return 2
	case KI32, KU32:
		return 4
	case KI64, KU64, KStr, KPointer, KFunction:
		return 8
	case KF32:
		return 4
	case KF64:
		return 8
	case KObject:
		total := 0
		for _, f := range t.Fields {
			total += f.Type.Size()
		}
		return total
	default:
		return 0
	}
}

func (t IRType) String() string {
	switch t.Kind {
	case KVoid:
		return "void"
	case KI8:
		return "i8"
	case KI16:
		return "i16"
	case KI32:
		return "i32"
	case KI64:
		return "i64"
	case KU8:
		return "u8"
	case KU16:
		return "u16"
	case KU32:
		return "u32"
	case KU64:
		return "u64"
	case KF32:
		return "f32"
	case KF64:
		return "f64"
	case KStr:
		return "str"
	case KPointer:
		return "*" + t.Elem.String()
	case KObject:
		return t.Name
	case KFunction:
		return "func"
	default:
		return "?"
	}
}

// ValueKind distinguishes the variants of Value (spec.md §3 Value).
type ValueKind int

const (
	VVoid ValueKind = iota
	VInt
	VFloat
	VConst
	VParam
	VFunction
	VData
)

// Value is an operand to an IR instruction (spec.md §3 Value).
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	ID    int    // for VConst
	Index int    // for VParam
	Name  string // for VFunction (link name) / VData (label)
}

func (v Value) String() string {
	switch v.Kind {
	case VVoid:
		return "void"
	case VInt:
		return fmt.Sprintf("%d", v.Int)
	case VFloat:
		return fmt.Sprintf("%g", v.Float)
	case VConst:
		return fmt.Sprintf("$%d", v.ID)
	case VParam:
		return fmt.Sprintf("%%%d", v.Index)
	case VFunction:
		return v.Name
	case VData:
		return "." + v.Name
	default:
		return "?"
	}
}

// Ins is the common interface of IR instructions (spec.md §3 IR).
type Ins interface {
	insNode()
}

// Func is a defined function's full body.
type Func struct {
	Name      string
	Public    bool
	Params    []IRType
	Ret       IRType
	Body      []Ins
	StackSize int
}

// ExternFunc declares a function defined elsewhere.
type ExternFunc struct {
	Name   string
	Params []IRType
	Ret    IRType
}

// StringData is an interned string constant.
type StringData struct {
	Symbol string
	Length int
	Bytes  []byte
}

// Store reserves a stack slot and writes value into it, binding id to
// that slot for later reads (spec.md §3 Store).
type Store struct {
	ID    int
	Type  IRType
	Value Value
}

// Assign writes value to an existing slot without allocating a new one
// (spec.md §3 Assign).
type Assign struct {
	Lvalue Value // VConst or VParam
	Type   IRType
	Value  Value
}

// Return ends a function body.
type Return struct {
	Type  IRType
	Value Value
}

// Call applies a function value to a list of typed arguments, binding the
// result to result-id (spec.md §3 Call).
type Call struct {
	Callee   Value
	Type     IRType
	Args     []Arg
	ResultID int
}

// Arg is one typed call argument.
type Arg struct {
	Type  IRType
	Value Value
}

func (*Func) insNode()       {}
func (*ExternFunc) insNode() {}
func (*StringData) insNode() {}
func (*Store) insNode()      {}
func (*Assign) insNode()     {}
func (*Return) insNode()     {}
func (*Call) insNode()       {}

// Unit is a module's full IR output, the input to the x86-64 assembler
// (spec.md Glossary: Unit).
type Unit struct {
	ModulePath string
	Funcs      []*Func
	Externs    []*ExternFunc
	Strings    []*StringData
}
