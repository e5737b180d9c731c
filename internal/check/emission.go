package check

import (
	"fmt"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/types"
)

// emissionPass is spec.md §4.6 Pass B: walk declarations in source order
// producing the typed AST, one declaration at a time. A declaration whose
// checking raises an error is skipped; the checker moves on to the next
// top-level declaration (spec.md §7 propagation policy).
func (c *Checker) emissionPass(symbols *module.SymbolList) []Decl {
	var decls []Decl
	for _, f := range c.fs.Files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.FuncDecl:
				if decl, ok := c.checkFuncDecl(symbols, d); ok {
					decls = append(decls, decl)
				}
			case *ast.ExternDecl:
				if decl, ok := c.checkExternDecl(symbols, d); ok {
					decls = append(decls, decl)
				}
			}
		}
	}
	return decls
}

func (c *Checker) checkExternDecl(symbols *module.SymbolList, d *ast.ExternDecl) (Decl, bool) {
	sym, ok := symbols.Get(d.Name)
	if !ok {
		return nil, false
	}
	fn, ok := c.ctx.Lookup(sym.TypeID).Kind.(types.TFunction)
	if !ok {
		return nil, false
	}
	params := make([]Field, len(d.Params))
	for i, p := range d.Params {
		params[i] = Field{Name: p.Name, TypeID: fn.Params[i]}
	}
	return &ExternDecl{Symbol: sym, Params: params}, true
}

func (c *Checker) checkFuncDecl(symbols *module.SymbolList, d *ast.FuncDecl) (Decl, bool) {
	sym, ok := symbols.Get(d.Name)
	if !ok {
		return nil, false
	}
	fn, ok := c.ctx.Lookup(sym.TypeID).Kind.(types.TFunction)
	if !ok {
		return nil, false
	}

	if d.Name == "main" {
		if !c.mainMod {
			c.bag.Add(diag.NewCodeError("main function must be declared in the main module", d.NamePos, 4, ""))
			return nil, false
		}
		if c.ctx.Resolve(fn.Ret) != c.ctx.Primitive(types.I64) {
			c.bag.Add(diag.NewCodeError("main function must return 'i64'", d.NamePos, 4, ""))
			return nil, false
		}
		if len(fn.Params) != 0 {
			c.bag.Add(diag.NewCodeError("main function must take no parameters", d.NamePos, 4, ""))
			return nil, false
		}
	}

	// Push the function scope and bind parameters.
	prevScope, prevRtype, prevReturned := c.cur, c.rtype, c.hasReturned
	c.cur = newScope(c.top)
	c.rtype = fn.Ret
	c.hasReturned = false

	params := make([]Field, len(d.Params))
	paramFailed := false
	for i, p := range d.Params {
		if _, exists := c.cur.vars[p.Name]; exists {
			c.bag.Add(diag.NewCodeError("already declared", p.Pos, len(p.Name), ""))
			paramFailed = true
			continue
		}
		c.cur.vars[p.Name] = varBinding{typeID: fn.Params[i], isConst: false, pos: p.Pos}
		params[i] = Field{Name: p.Name, TypeID: fn.Params[i]}
	}

	var body []Stmt
	ok = !paramFailed
	if ok {
		body, ok = c.checkBlock(d.Body)
	}

	if ok && c.ctx.Resolve(c.rtype) != c.ctx.Void() && !c.hasReturned {
		c.bag.Add(diag.NewCodeError(fmt.Sprintf("missing return in function '%s'", d.Name), d.BodyEnd, 1, ""))
		ok = false
	}

	c.cur, c.rtype, c.hasReturned = prevScope, prevRtype, prevReturned

	if !ok {
		return nil, false
	}
	return &FuncDecl{Symbol: sym, Params: params, Body: body}, true
}

func (c *Checker) checkBlock(b *ast.Block) ([]Stmt, bool) {
	var out []Stmt
	for _, s := range b.Stmts {
		stmt, ok := c.checkStmt(s)
		if !ok {
			return nil, false
		}
		out = append(out, stmt)
	}
	return out, true
}

func (c *Checker) checkStmt(s ast.Stmt) (Stmt, bool) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		x, ok := c.checkExpr(s.X)
		if !ok {
			return nil, false
		}
		return &ExprStmt{X: x}, true

	case *ast.ReturnStmt:
		return c.checkReturn(s)

	case *ast.VarDecl:
		return c.checkVarDecl(s)

	case *ast.VarAssign:
		return c.checkVarAssign(s)

	default:
		return nil, false
	}
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) (Stmt, bool) {
	if s.X == nil {
		if c.ctx.Resolve(c.rtype) != c.ctx.Void() {
			c.bag.Add(diag.NewCodeError(fmt.Sprintf("incorrect return type: expected '%s', got 'void'", c.ctx.ToString(c.rtype)), s.KwPos, 6, ""))
			return nil, false
		}
		c.hasReturned = true
		return &ReturnStmt{}, true
	}

	x, ok := c.checkExpr(s.X)
	if !ok {
		return nil, false
	}
	if !c.ctx.Equivalent(x.Type(), c.rtype) {
		c.bag.Add(diag.NewCodeError(fmt.Sprintf("incorrect return type: expected '%s', got '%s'", c.ctx.ToString(c.rtype), c.ctx.ToString(x.Type())), s.KwPos, 6, ""))
		return nil, false
	}
	c.hasReturned = true
	return &ReturnStmt{X: x}, true
}

func (c *Checker) checkVarDecl(s *ast.VarDecl) (Stmt, bool) {
	x, ok := c.checkExpr(s.X)
	if !ok {
		return nil, false
	}
	if c.ctx.Resolve(x.Type()) == c.ctx.Void() {
		c.bag.Add(diag.NewCodeError("cannot assign void type to variable", s.NamePos, len(s.Name), ""))
		return nil, false
	}
	if _, ok := c.res.Namespaces.Get(s.Name); ok {
		c.bag.Add(diag.NewCodeError("shadowing a namespace is not allowed", s.NamePos, len(s.Name), ""))
		return nil, false
	}
	if _, exists := c.cur.vars[s.Name]; exists {
		c.bag.Add(diag.NewCodeError("already declared", s.NamePos, len(s.Name), ""))
		return nil, false
	}
	c.cur.vars[s.Name] = varBinding{typeID: x.Type(), isConst: s.Const, pos: s.NamePos}
	return &VarDecl{Name: s.Name, Const: s.Const, TypeID: x.Type(), X: x}, true
}

func (c *Checker) checkVarAssign(s *ast.VarAssign) (Stmt, bool) {
	if !isLValue(s.Lhs) {
		c.bag.Add(diag.NewCodeError("invalid l-value", s.Lhs.Pos(), 1, ""))
		return nil, false
	}

	ident, isIdent := s.Lhs.(*ast.Literal)
	if isIdent && ident.Kind == ast.LitIdent {
		if b, ok := c.cur.lookup(ident.Ident); ok && b.isConst {
			c.bag.Add(diag.NewCodeError("cannot assign new value to a constant", s.Lhs.Pos(), len(ident.Ident), ""))
			return nil, false
		}
	}

	lhs, ok := c.checkExpr(s.Lhs)
	if !ok {
		return nil, false
	}
	rhs, ok := c.checkExpr(s.X)
	if !ok {
		return nil, false
	}
	if !c.ctx.Equivalent(lhs.Type(), rhs.Type()) {
		c.bag.Add(diag.NewCodeError(fmt.Sprintf("mismatched types in assignment. expected '%s', got '%s'", c.ctx.ToString(lhs.Type()), c.ctx.ToString(rhs.Type())), s.X.Pos(), 1, ""))
		return nil, false
	}
	return &VarAssign{Lhs: lhs, X: rhs}, true
}

func (c *Checker) checkExpr(e ast.Expr) (Expr, bool) {
	switch e := e.(type) {
	case *ast.Literal:
		return c.checkLiteral(e)
	case *ast.Group:
		return c.checkExpr(e.X)
	case *ast.Call:
		return c.checkCall(e)
	case *ast.Member:
		return c.checkMember(e)
	default:
		return nil, false
	}
}

func (c *Checker) checkLiteral(e *ast.Literal) (Expr, bool) {
	switch e.Kind {
	case ast.LitInt:
		return &Literal{Kind: LitInt, TypeID_: c.ctx.Primitive(types.I64), Int: e.Int}, true
	case ast.LitFloat:
		return &Literal{Kind: LitFloat, TypeID_: c.ctx.Primitive(types.F64), Float: e.Float}, true
	case ast.LitString:
		return &Literal{Kind: LitString, TypeID_: c.ctx.Primitive(types.String), Str: e.Str}, true
	case ast.LitChar:
		return &Literal{Kind: LitChar, TypeID_: c.ctx.Primitive(types.Byte), Char: e.Char}, true
	case ast.LitBool:
		return &Literal{Kind: LitBool, TypeID_: c.ctx.Primitive(types.Bool), Bool: e.Bool}, true
	case ast.LitIdent:
		return c.checkIdent(e)
	default:
		return nil, false
	}
}

func (c *Checker) checkIdent(e *ast.Literal) (Expr, bool) {
	name := e.Ident

	if _, isNS := c.res.Namespaces.Get(name); isNS {
		c.bag.Add(diag.NewCodeError("namespace cannot be used as a value", e.KwPos, len(name), ""))
		return nil, false
	}

	if b, ok := c.cur.lookup(name); ok {
		return &Literal{Kind: LitIdent, TypeID_: b.typeID, Ident: name}, true
	}

	if sym, ok := c.findSymbol(name); ok {
		return &Literal{Kind: LitIdent, TypeID_: sym.TypeID, Ident: name}, true
	}

	c.bag.Add(diag.NewCodeError(fmt.Sprintf("'%s' not declared", name), e.KwPos, len(name), ""))
	return nil, false
}

func (c *Checker) findSymbol(name string) (module.Symbol, bool) {
	return c.fsSymbols.Get(name)
}

func (c *Checker) checkCall(e *ast.Call) (Expr, bool) {
	callee, ok := c.checkExpr(e.Callee)
	if !ok {
		return nil, false
	}
	fn, isFn := c.ctx.Lookup(c.ctx.Resolve(callee.Type())).Kind.(types.TFunction)
	if !isFn {
		c.bag.Add(diag.NewCodeError(fmt.Sprintf("'%s' is not a function", c.ctx.ToString(callee.Type())), e.Callee.Pos(), 1, ""))
		return nil, false
	}

	if len(e.Args) != len(fn.Params) {
		c.bag.Add(diag.NewCodeError(
			fmt.Sprintf("function takes %d arguments, got %d", len(fn.Params), len(e.Args)),
			e.LPos, 1, fmt.Sprintf("definition: %s", c.ctx.ToString(callee.Type())),
		))
		return nil, false
	}

	args := make([]Expr, len(e.Args))
	for i, a := range e.Args {
		x, ok := c.checkExpr(a)
		if !ok {
			return nil, false
		}
		if !c.ctx.Equivalent(x.Type(), fn.Params[i]) {
			c.bag.Add(diag.NewCodeError(fmt.Sprintf("mismatched types in function call. expected '%s', got '%s'", c.ctx.ToString(fn.Params[i]), c.ctx.ToString(x.Type())), a.Pos(), 1, ""))
			return nil, false
		}
		args[i] = x
	}

	return &Call{Callee: callee, Args: args, TypeID_: fn.Ret}, true
}

func (c *Checker) checkMember(e *ast.Member) (Expr, bool) {
	if lit, ok := e.X.(*ast.Literal); ok && lit.Kind == ast.LitIdent {
		if ns, ok := c.res.Namespaces.Get(lit.Ident); ok {
			sym, ok := ns.Lookup(e.Name)
			if !ok {
				c.bag.Add(diag.NewCodeError(fmt.Sprintf("namespace '%s' has no member '%s'", lit.Ident, e.Name), e.NamePos, len(e.Name), ""))
				return nil, false
			}
			return &NamespaceMember{Namespace: lit.Ident, Field: e.Name, Symbol: sym, TypeID_: sym.TypeID}, true
		}
	}

	x, ok := c.checkExpr(e.X)
	if !ok {
		return nil, false
	}
	c.bag.Add(diag.NewCodeError(fmt.Sprintf("type '%s' has no fields", c.ctx.ToString(x.Type())), e.NamePos, len(e.Name), ""))
	return nil, false
}
