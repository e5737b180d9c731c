package ir

import (
	"fmt"
	"log/slog"

	"github.com/jesperkha/koi/internal/check"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/types"
)

// trackEntry records how a bound name should be read back: either a
// param-index or a stack-resident const-id (spec.md §4.7 Symbol tracker).
type trackEntry struct {
	isParam bool
	id      int // const-id or param index
}

// Emitter lowers one checked module (check.CreateModule) into a Unit.
type Emitter struct {
	ctx *types.Context
	log *slog.Logger

	symbols *module.SymbolList

	unit        *Unit
	stringLabel int

	// per-function state, reset on entry to each function body
	nextConst int
	tracker   map[string]trackEntry
	stackSize int
	externSeen map[string]bool // per unit; not reset by resetFunc
}

// Emit lowers cm into a Unit.
func Emit(ctx *types.Context, cm *check.CreateModule, log *slog.Logger) *Unit {
	if log == nil {
		log = slog.Default()
	}
	e := &Emitter{
		ctx:        ctx,
		log:        log,
		symbols:    cm.Symbols,
		unit:       &Unit{ModulePath: cm.Path.Full()},
		externSeen: make(map[string]bool),
	}

	e.log.Info("emitting IR", "module", cm.Path.Full())

	for _, d := range cm.Decls {
		switch d := d.(type) {
		case *check.FuncDecl:
			e.unit.Funcs = append(e.unit.Funcs, e.emitFunc(d))
		case *check.ExternDecl:
			ext := e.emitExtern(d)
			if !e.externSeen[ext.Name] {
				e.externSeen[ext.Name] = true
				e.unit.Externs = append(e.unit.Externs, ext)
			}
		}
	}

	return e.unit
}

func (e *Emitter) irType(id types.TypeID) IRType {
	resolved := e.ctx.DeepResolve(id)
	t := e.ctx.Lookup(resolved)
	switch k := t.Kind.(type) {
	case types.TPrimitive:
		switch k.Kind {
		case types.Void:
			return IRType{Kind: KVoid}
		case types.I8:
			return IRType{Kind: KI8}
		case types.I16:
			return IRType{Kind: KI16}
		case types.I32:
			return IRType{Kind: KI32}
		case types.I64:
			return IRType{Kind: KI64}
		case types.U8, types.Byte, types.Bool:
			return IRType{Kind: KU8}
		case types.U16:
			return IRType{Kind: KU16}
		case types.U32:
			return IRType{Kind: KU32}
		case types.U64:
			return IRType{Kind: KU64}
		case types.F32:
			return IRType{Kind: KF32}
		case types.F64:
			return IRType{Kind: KF64}
		case types.String:
			return IRType{Kind: KStr}
		}
	case types.TPointer:
		elem := e.irType(k.Elem)
		return IRType{Kind: KPointer, Elem: &elem}
	case types.TArray:
		elem := e.irType(k.Elem)
		return IRType{Kind: KPointer, Elem: &elem}
	case types.TFunction:
		params := make([]IRType, len(k.Params))
		for i, p := range k.Params {
			params[i] = e.irType(p)
		}
		ret := e.irType(k.Ret)
		return IRType{Kind: KFunction, Params: params, Ret: &ret}
	}
	return IRType{Kind: KVoid}
}

func (e *Emitter) resetFunc() {
	e.nextConst = 0
	e.tracker = make(map[string]trackEntry)
	e.stackSize = 0
}

func (e *Emitter) allocConst() int {
	id := e.nextConst
	e.nextConst++
	return id
}

// roundUp4 mirrors the assembler's stack-slot granularity (internal/asm's
// roundUp4): every slot the assembler allocates is at least 4 bytes, so
// the stack-size total tracked here must round each slot up the same way
// or the prologue's reserved frame falls short of what the assembler's
// cursor actually advances through.
func roundUp4(size int) int {
	if size < 4 {
		return 4
	}
	return size
}

func (e *Emitter) funcRetType(sym module.Symbol) types.TypeID {
	fn, ok := e.ctx.Lookup(sym.TypeID).Kind.(types.TFunction)
	if !ok {
		return e.ctx.Void()
	}
	return fn.Ret
}

func (e *Emitter) emitExtern(d *check.ExternDecl) *ExternFunc {
	params := make([]IRType, len(d.Params))
	for i, p := range d.Params {
		params[i] = e.irType(p.TypeID)
	}
	return &ExternFunc{Name: d.Symbol.LinkName(), Params: params, Ret: e.irType(e.funcRetType(d.Symbol))}
}

func (e *Emitter) emitFunc(d *check.FuncDecl) *Func {
	e.resetFunc()

	params := make([]IRType, len(d.Params))
	for i, p := range d.Params {
		params[i] = e.irType(p.TypeID)
		e.tracker[p.Name] = trackEntry{isParam: true, id: i}
		e.stackSize += roundUp4(params[i].Size())
	}
	ret := e.irType(e.funcRetType(d.Symbol))

	var body []Ins
	returned := false
	for _, s := range d.Body {
		_, didReturn := e.lowerStmt(s, &body)
		if didReturn {
			returned = true
		}
	}
	if !returned {
		body = append(body, &Return{Type: IRType{Kind: KVoid}, Value: Value{Kind: VVoid}})
	}

	return &Func{
		Name:      d.Symbol.LinkName(),
		Public:    d.Symbol.IsExported,
		Params:    params,
		Ret:       ret,
		Body:      body,
		StackSize: e.stackSize,
	}
}

// lowerStmt appends the instructions for s to *body, returning whether a
// Return instruction was emitted.
func (e *Emitter) lowerStmt(s check.Stmt, body *[]Ins) (Ins, bool) {
	switch s := s.(type) {
	case *check.ExprStmt:
		e.lowerExpr(s.X, body)
		return nil, false

	case *check.ReturnStmt:
		if s.X == nil {
			r := &Return{Type: IRType{Kind: KVoid}, Value: Value{Kind: VVoid}}
			*body = append(*body, r)
			return r, true
		}
		v := e.lowerExpr(s.X, body)
		ty := e.irType(s.X.Type())
		r := &Return{Type: ty, Value: v}
		*body = append(*body, r)
		return r, true

	case *check.VarDecl:
		v := e.lowerExpr(s.X, body)
		ty := e.irType(s.TypeID)
		id := e.allocConst()
		*body = append(*body, &Store{ID: id, Type: ty, Value: v})
		e.stackSize += roundUp4(ty.Size())
		e.tracker[s.Name] = trackEntry{isParam: false, id: id}
		return nil, false

	case *check.VarAssign:
		lv := e.lowerLvalue(s.Lhs)
		rv := e.lowerExpr(s.X, body)
		ty := e.irType(s.X.Type())
		*body = append(*body, &Assign{Lvalue: lv, Type: ty, Value: rv})
		return nil, false

	default:
		return nil, false
	}
}

func (e *Emitter) lowerLvalue(x check.Expr) Value {
	lit, ok := x.(*check.Literal)
	if !ok || lit.Kind != check.LitIdent {
		return Value{Kind: VVoid}
	}
	entry, ok := e.tracker[lit.Ident]
	if !ok {
		return Value{Kind: VVoid}
	}
	if entry.isParam {
		return Value{Kind: VParam, Index: entry.id}
	}
	return Value{Kind: VConst, ID: entry.id}
}

func (e *Emitter) lowerExpr(x check.Expr, body *[]Ins) Value {
	switch x := x.(type) {
	case *check.Literal:
		return e.lowerLiteral(x)
	case *check.Call:
		return e.lowerCall(x, body)
	case *check.NamespaceMember:
		return e.lowerNamespaceMember(x)
	default:
		return Value{Kind: VVoid}
	}
}

func (e *Emitter) lowerLiteral(x *check.Literal) Value {
	switch x.Kind {
	case check.LitInt:
		return Value{Kind: VInt, Int: x.Int}
	case check.LitFloat:
		return Value{Kind: VFloat, Float: x.Float}
	case check.LitBool:
		v := int64(0)
		if x.Bool {
			v = 1
		}
		return Value{Kind: VInt, Int: v}
	case check.LitChar:
		return Value{Kind: VInt, Int: int64(x.Char)}
	case check.LitString:
		e.stringLabel++
		label := fmt.Sprintf("S%d", e.stringLabel)
		e.unit.Strings = append(e.unit.Strings, &StringData{Symbol: label, Length: len(x.Str), Bytes: []byte(x.Str)})
		return Value{Kind: VData, Name: label}
	case check.LitIdent:
		if entry, ok := e.tracker[x.Ident]; ok {
			if entry.isParam {
				return Value{Kind: VParam, Index: entry.id}
			}
			return Value{Kind: VConst, ID: entry.id}
		}
		if sym, ok := e.symbols.Get(x.Ident); ok {
			return Value{Kind: VFunction, Name: sym.LinkName()}
		}
		return Value{Kind: VVoid}
	default:
		return Value{Kind: VVoid}
	}
}

// lowerCall evaluates arguments left-to-right BEFORE allocating the call's
// own result const-id (spec.md §4.7, §9: downstream code relies on
// argument const-ids preceding the result id).
func (e *Emitter) lowerCall(x *check.Call, body *[]Ins) Value {
	callee := e.lowerCallee(x.Callee, body)

	args := make([]Arg, len(x.Args))
	for i, a := range x.Args {
		v := e.lowerExpr(a, body)
		args[i] = Arg{Type: e.irType(a.Type()), Value: v}
	}

	resultID := e.allocConst()
	retType := e.irType(x.TypeID_)
	if retType.Size() > 0 {
		e.stackSize += roundUp4(retType.Size())
	}
	*body = append(*body, &Call{Callee: callee, Type: retType, Args: args, ResultID: resultID})
	return Value{Kind: VConst, ID: resultID}
}

func (e *Emitter) lowerCallee(x check.Expr, body *[]Ins) Value {
	switch x := x.(type) {
	case *check.Literal:
		if x.Kind == check.LitIdent {
			if sym, ok := e.symbols.Get(x.Ident); ok {
				return Value{Kind: VFunction, Name: sym.LinkName()}
			}
		}
		return e.lowerLiteral(x)
	case *check.NamespaceMember:
		return e.lowerNamespaceMember(x)
	default:
		return e.lowerExpr(x, body)
	}
}

func (e *Emitter) lowerNamespaceMember(x *check.NamespaceMember) Value {
	link := x.Symbol.LinkName()
	if !e.externSeen[link] {
		e.externSeen[link] = true
		fn, ok := e.ctx.Lookup(x.Symbol.TypeID).Kind.(types.TFunction)
		if ok {
			params := make([]IRType, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = e.irType(p)
			}
			e.unit.Externs = append(e.unit.Externs, &ExternFunc{Name: link, Params: params, Ret: e.irType(fn.Ret)})
		}
	}
	return Value{Kind: VFunction, Name: link}
}
