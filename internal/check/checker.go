// Package check implements the Koi type checker (spec.md §4.6): a
// two-pass walk over a single file set that produces a typed AST, plus
// the typed AST node types it emits.
package check

import (
	"fmt"
	"log/slog"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/resolve"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/types"
)

// Options configures behavior that differs between production builds and
// tests.
type Options struct {
	// NoMangleNames disables name mangling entirely, so golden IR tests
	// can assert on unmangled function names (SPEC_FULL.md supplemented
	// behavior 5).
	NoMangleNames bool
}

// CreateModule is the checker's output for one file set: its symbols,
// namespaces, typed declarations, and module dependencies (spec.md §4.6
// Output).
type CreateModule struct {
	Path         module.ModulePath
	Kind         module.ModuleKind
	Symbols      *module.SymbolList
	Namespaces   *module.NamespaceSet
	Decls        []Decl
	Dependencies []module.ModuleID
}

type varBinding struct {
	typeID  types.TypeID
	isConst bool
	pos     source.Pos
}

type scope struct {
	vars   map[string]varBinding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]varBinding), parent: parent}
}

func (s *scope) lookup(name string) (varBinding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return varBinding{}, false
}

// Checker holds the state threaded through both passes for one file set.
type Checker struct {
	ctx     *types.Context
	fs      *depgraph.FileSet
	res     *resolve.Result
	mainMod bool // true if fs.Path is the designated main module
	opts    Options
	log     *slog.Logger

	bag *diag.Bag

	fsSymbols *module.SymbolList

	rtype       types.TypeID
	hasReturned bool
	top         *scope
	cur         *scope

	nextLabel int
}

// Check runs both passes over fs and returns the resulting CreateModule.
func Check(ctx *types.Context, fs *depgraph.FileSet, res *resolve.Result, isMainModule bool, opts Options, log *slog.Logger) (*CreateModule, *diag.Bag) {
	if log == nil {
		log = slog.Default()
	}
	c := &Checker{ctx: ctx, fs: fs, res: res, mainMod: isMainModule, opts: opts, log: log, bag: diag.NewBag()}

	symbols := module.NewSymbolList()
	// Pre-populate directly-imported symbols so statement-level lookup
	// can see them, per spec.md §4.6 Pass B name lookup order (innermost
	// scope -> outer scopes -> symbol list).
	for _, s := range res.Imported.All() {
		_ = symbols.Add(s)
	}

	c.fsSymbols = symbols
	c.top = newScope(nil)
	c.cur = c.top

	c.log.Info("type checking file set", "module", fs.Path.Full())
	c.globalPass(symbols)
	if !c.bag.Empty() {
		return nil, c.bag
	}

	decls := c.emissionPass(symbols)

	cm := &CreateModule{
		Path:         fs.Path,
		Kind:         module.KindSource,
		Symbols:      symbols,
		Namespaces:   res.Namespaces,
		Decls:        decls,
		Dependencies: res.Dependencies,
	}
	return cm, c.bag
}

// globalPass is spec.md §4.6 Pass A: declare every function/extern's
// symbol before any statement is checked.
func (c *Checker) globalPass(symbols *module.SymbolList) {
	for _, f := range c.fs.Files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.FuncDecl:
				c.declareFunc(symbols, d.Name, d.Public, d.Params, d.Ret, d.NamePos, module.OriginModule, f)
			case *ast.ExternDecl:
				c.declareFunc(symbols, d.Name, d.Public, d.Params, d.Ret, d.NamePos, module.OriginExtern, f)
			}
		}
	}
}

func (c *Checker) declareFunc(symbols *module.SymbolList, name string, public bool, params []ast.Field, ret *ast.TypeNode, pos source.Pos, origin module.OriginKind, f *ast.File) {
	retID := c.ctx.Void()
	if ret != nil {
		id, ok := c.evalType(*ret)
		if !ok {
			return
		}
		retID = id
	}

	paramIDs := make([]types.TypeID, 0, len(params))
	for _, field := range params {
		id, ok := c.evalType(field.Type)
		if !ok {
			return
		}
		paramIDs = append(paramIDs, id)
	}

	fnType := c.ctx.Intern(types.TFunction{Params: paramIDs, Ret: retID})

	sym := module.Symbol{
		Name:       name,
		TypeID:     fnType,
		Origin:     module.Origin{Kind: origin, Path: c.fs.Path.Full()},
		IsExported: public || name == "main",
		NoMangle:   c.opts.NoMangleNames,
		Pos:        pos,
		SourceFile: f.Source.Filepath,
	}

	if err := symbols.Add(sym); err != nil {
		c.bag.Add(diag.NewMessage(fmt.Sprintf("'%s' already declared", name)).WithInfo("previously declared here"))
	}
}

func (c *Checker) evalType(t ast.TypeNode) (types.TypeID, bool) {
	if t.IsPrimitive() {
		p, ok := primitiveFromName(t.Primitive)
		if !ok {
			c.bag.Add(diag.NewCodeError(fmt.Sprintf("'%s' is not a type", t.Primitive), t.Pos, len(t.Primitive), ""))
			return types.NoType, false
		}
		return c.ctx.Primitive(p), true
	}
	c.bag.Add(diag.NewCodeError(fmt.Sprintf("'%s' is not a type", t.Ident), t.Pos, len(t.Ident), ""))
	return types.NoType, false
}

func primitiveFromName(name string) (types.Primitive, bool) {
	switch name {
	case "void":
		return types.Void, true
	case "int", "i64":
		return types.I64, true
	case "i8":
		return types.I8, true
	case "i16":
		return types.I16, true
	case "i32":
		return types.I32, true
	case "u8", "byte":
		return types.U8, true
	case "u16":
		return types.U16, true
	case "u32":
		return types.U32, true
	case "u64":
		return types.U64, true
	case "float", "f64":
		return types.F64, true
	case "f32":
		return types.F32, true
	case "string":
		return types.String, true
	case "bool":
		return types.Bool, true
	default:
		return 0, false
	}
}
