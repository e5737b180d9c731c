// Package parser implements the Koi syntax analysis pass (spec.md §4.2):
// a hand-written recursive-descent parser producing an untyped ast.File,
// with panic-mode error recovery that resynchronizes at a `func` or
// `extern` token or EOF so every syntax error in a file is reported, not
// just the first.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/lexer"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/token"
)

// Options configures parsing behavior that varies by call site. Every
// caller in this repository passes the zero value.
type Options struct {
	// AllowAnonymousPackage, when true, makes the `package` declaration
	// optional and permits it anywhere a top-level declaration may
	// appear. When false (the default for real source files), the first
	// non-newline token of the file must be a package declaration, and
	// declaring it again anywhere is a syntax error.
	AllowAnonymousPackage bool
}

// Parser consumes a token stream for one Source and produces an ast.File.
type Parser struct {
	src    *source.Source
	toks   []token.Token
	pos    int
	opts   Options
	diag   *diag.Bag
	log    *slog.Logger
	seenPkg bool
}

// New creates a Parser over an already-scanned token stream.
func New(src *source.Source, toks []token.Token, opts Options, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{src: src, toks: toks, opts: opts, diag: diag.NewBag(), log: log}
}

// Parse runs the full scan+parse pipeline for src and returns the
// resulting File, or diagnostics on failure.
func Parse(src *source.Source, opts Options, log *slog.Logger) (*ast.File, *diag.Bag) {
	toks, bag := lexer.Scan(src, log)
	if !bag.Empty() {
		return nil, bag
	}
	p := New(src, toks, opts, log)
	return p.parseFile()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) at(i int) token.Token {
	if p.pos+i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if t, ok := p.match(k); ok {
		return t, true
	}
	cur := p.cur()
	p.diag.Add(diag.NewCodeError(
		fmt.Sprintf("expected '%s', got '%s'", k, cur.Kind),
		cur.Pos, max1(cur.Length), "",
	))
	return token.Token{}, false
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (p *Parser) skipNewlines() {
	for p.check(token.Newline) {
		p.advance()
	}
}

// synchronize discards tokens up to the next `func` or `extern` keyword or
// EOF, Koi's
// statement/declaration resynchronization point (spec.md §4.2).
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.check(token.Func) || p.check(token.Extern) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseFile() (*ast.File, *diag.Bag) {
	p.log.Debug("parsing file", "file", p.src.Filepath)
	f := &ast.File{Source: p.src}

	p.skipNewlines()

	if !p.opts.AllowAnonymousPackage {
		if !p.check(token.Package) {
			cur := p.cur()
			p.diag.Add(diag.NewCodeError("expected package declaration as the first statement", cur.Pos, max1(cur.Length), ""))
		} else {
			p.parsePackageDecl(f)
		}
	}

	for !p.check(token.EOF) {
		p.skipNewlines()
		if p.check(token.EOF) {
			break
		}

		switch {
		case p.check(token.Package):
			if !p.opts.AllowAnonymousPackage && p.seenPkg {
				cur := p.cur()
				p.diag.Add(diag.NewCodeError("only declare package once, and as the first statement", cur.Pos, max1(cur.Length), ""))
			}
			p.parsePackageDecl(f)

		case p.check(token.Import):
			if imp, ok := p.parseImport(); ok {
				f.Imports = append(f.Imports, imp)
			} else {
				p.synchronize()
			}

		case p.check(token.Func), p.check(token.Pub):
			if d, ok := p.parseFuncDecl(); ok {
				f.Decls = append(f.Decls, d)
			} else {
				p.synchronize()
			}

		case p.check(token.Extern):
			if d, ok := p.parseExternDecl(); ok {
				f.Decls = append(f.Decls, d)
			} else {
				p.synchronize()
			}

		default:
			cur := p.cur()
			p.diag.Add(diag.NewCodeError(fmt.Sprintf("unexpected token '%s'", cur.Kind), cur.Pos, max1(cur.Length), ""))
			p.synchronize()
		}

		p.skipNewlines()
	}

	if !p.diag.Empty() {
		return nil, p.diag
	}
	return f, p.diag
}

func (p *Parser) parsePackageDecl(f *ast.File) {
	kw := p.advance() // 'package'
	name, ok := p.expect(token.IdentLit)
	if !ok {
		return
	}
	f.Package = name.Lit
	p.seenPkg = true
	_ = kw
}

func (p *Parser) parseImport() (*ast.Import, bool) {
	kw := p.advance() // 'import'
	pathTok, ok := p.expect(token.StringLit)
	if !ok {
		return nil, false
	}
	imp := &ast.Import{ID: ast.NodeID(kw.Pos.Offset), Pos: kw.Pos, Path: pathTok.Lit}

	if _, ok := p.match(token.As); ok {
		alias, ok := p.expect(token.IdentLit)
		if !ok {
			return nil, false
		}
		imp.Alias = alias.Lit
	}

	if _, ok := p.match(token.LBrace); ok {
		for !p.check(token.RBrace) && !p.check(token.EOF) {
			name, ok := p.expect(token.IdentLit)
			if !ok {
				return nil, false
			}
			imp.Names = append(imp.Names, name.Lit)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RBrace); !ok {
			return nil, false
		}
	}
	return imp, true
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, bool) {
	startPos := p.cur().Pos
	public := false
	if _, ok := p.match(token.Pub); ok {
		public = true
	}
	funcTok, ok := p.expect(token.Func)
	if !ok {
		return nil, false
	}
	name, ok := p.expect(token.IdentLit)
	if !ok {
		return nil, false
	}
	if name.Lit == "main" {
		public = true
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	var ret *ast.TypeNode
	if !p.check(token.LBrace) && !p.check(token.Newline) && !p.check(token.EOF) {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		ret = &t
	}

	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}

	_ = funcTok
	return &ast.FuncDecl{
		NodeID:  ast.NodeID(startPos.Offset),
		Public:  public,
		Name:    name.Lit,
		Params:  params,
		Ret:     ret,
		Body:    body,
		NamePos: name.Pos,
		BodyEnd: body.RPos,
	}, true
}

func (p *Parser) parseExternDecl() (*ast.ExternDecl, bool) {
	startPos := p.cur().Pos
	p.advance() // 'extern'
	public := false
	if _, ok := p.match(token.Pub); ok {
		public = true
	}
	if _, ok := p.expect(token.Func); !ok {
		return nil, false
	}
	name, ok := p.expect(token.IdentLit)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	var ret *ast.TypeNode
	if !p.check(token.Newline) && !p.check(token.EOF) {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		ret = &t
	}

	return &ast.ExternDecl{
		NodeID:  ast.NodeID(startPos.Offset),
		Public:  public,
		Name:    name.Lit,
		Params:  params,
		Ret:     ret,
		NamePos: name.Pos,
	}, true
}

func (p *Parser) parseParams() ([]ast.Field, bool) {
	var fields []ast.Field
	seen := map[string]bool{}
	for !p.check(token.RParen) && !p.check(token.EOF) {
		nameTok, ok := p.expect(token.IdentLit)
		if !ok {
			return nil, false
		}
		if seen[nameTok.Lit] {
			p.diag.Add(diag.NewCodeError("duplicate parameter name", nameTok.Pos, max1(nameTok.Length), ""))
			return nil, false
		}
		seen[nameTok.Lit] = true

		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.Field{Name: nameTok.Lit, Type: t, Pos: nameTok.Pos})

		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	return fields, true
}

func (p *Parser) parseType() (ast.TypeNode, bool) {
	cur := p.cur()
	if token.IsPrimitive(cur.Kind) {
		p.advance()
		return ast.TypeNode{ID: ast.NodeID(cur.Pos.Offset), Pos: cur.Pos, Primitive: primitiveName(cur.Kind)}, true
	}
	if cur.Kind == token.IdentLit {
		p.advance()
		return ast.TypeNode{ID: ast.NodeID(cur.Pos.Offset), Pos: cur.Pos, Ident: cur.Lit}, true
	}
	p.diag.Add(diag.NewCodeError("expected a type", cur.Pos, max1(cur.Length), ""))
	return ast.TypeNode{}, false
}

func primitiveName(k token.Kind) string {
	return k.String()
}

func (p *Parser) parseBlock() (*ast.Block, bool) {
	lbrace, ok := p.expect(token.LBrace)
	if !ok {
		return nil, false
	}
	b := &ast.Block{NodeID: ast.NodeID(lbrace.Pos.Offset), LPos: lbrace.Pos}

	p.skipNewlines()
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmt, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		b.Stmts = append(b.Stmts, stmt)
		if !p.check(token.RBrace) {
			if _, ok := p.expect(token.Newline); !ok {
				return nil, false
			}
		}
		p.skipNewlines()
	}

	rbrace, ok := p.expect(token.RBrace)
	if !ok {
		return nil, false
	}
	b.RPos = rbrace.Pos
	return b, true
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	if kw, ok := p.match(token.Return); ok {
		if p.check(token.Newline) || p.check(token.RBrace) || p.check(token.EOF) {
			return &ast.ReturnStmt{NodeID: ast.NodeID(kw.Pos.Offset), KwPos: kw.Pos}, true
		}
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return &ast.ReturnStmt{NodeID: ast.NodeID(kw.Pos.Offset), KwPos: kw.Pos, X: x}, true
	}

	start := p.cur()
	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	switch {
	case p.check(token.ColonEq), p.check(token.ColonColon):
		isConst := p.check(token.ColonColon)
		p.advance()
		name, ok := identName(x)
		if !ok {
			p.diag.Add(diag.NewCodeError("invalid l-value", start.Pos, max1(start.Length), ""))
			return nil, false
		}
		rhs, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return &ast.VarDecl{NodeID: ast.NodeID(start.Pos.Offset), Name: name, NamePos: start.Pos, Const: isConst, X: rhs}, true

	case p.check(token.Eq):
		p.advance()
		rhs, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return &ast.VarAssign{NodeID: ast.NodeID(start.Pos.Offset), Lhs: x, X: rhs}, true

	default:
		return &ast.ExprStmt{NodeID: ast.NodeID(start.Pos.Offset), X: x}, true
	}
}

func identName(x ast.Expr) (string, bool) {
	lit, ok := x.(*ast.Literal)
	if !ok || lit.Kind != ast.LitIdent {
		return "", false
	}
	return lit.Ident, true
}

// parseExpr corresponds to spec.md's `expr := call` production.
func (p *Parser) parseExpr() (ast.Expr, bool) {
	return p.parseCall()
}

func (p *Parser) parseCall() (ast.Expr, bool) {
	x, ok := p.parseGroup()
	if !ok {
		return nil, false
	}
	for p.check(token.LParen) {
		lparen := p.advance()
		var args []ast.Expr
		for !p.check(token.RParen) && !p.check(token.EOF) {
			a, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			args = append(args, a)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RParen); !ok {
			return nil, false
		}
		x = &ast.Call{NodeID: x.ID(), Callee: x, Args: args, LPos: lparen.Pos}
	}
	return x, true
}

func (p *Parser) parseGroup() (ast.Expr, bool) {
	if lparen, ok := p.match(token.LParen); ok {
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen); !ok {
			return nil, false
		}
		return &ast.Group{NodeID: ast.NodeID(lparen.Pos.Offset), LPos: lparen.Pos, X: inner}, true
	}
	return p.parseMember()
}

func (p *Parser) parseMember() (ast.Expr, bool) {
	x, ok := p.parseLiteral()
	if !ok {
		return nil, false
	}
	for p.check(token.Dot) {
		p.advance()
		name, ok := p.expect(token.IdentLit)
		if !ok {
			return nil, false
		}
		x = &ast.Member{NodeID: x.ID(), X: x, Name: name.Lit, NamePos: name.Pos}
	}
	return x, true
}

func (p *Parser) parseLiteral() (ast.Expr, bool) {
	cur := p.cur()
	switch cur.Kind {
	case token.IntLit:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitInt, Int: cur.Int}, true
	case token.FloatLit:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitFloat, Float: cur.Float}, true
	case token.StringLit:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitString, Str: cur.Lit}, true
	case token.CharLit:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitChar, Char: cur.Char}, true
	case token.True:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitBool, Bool: true}, true
	case token.False:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitBool, Bool: false}, true
	case token.IdentLit:
		p.advance()
		return &ast.Literal{NodeID: ast.NodeID(cur.Pos.Offset), KwPos: cur.Pos, Kind: ast.LitIdent, Ident: cur.Lit}, true
	default:
		p.diag.Add(diag.NewCodeError(fmt.Sprintf("expected an expression, got '%s'", cur.Kind), cur.Pos, max1(cur.Length), ""))
		return nil, false
	}
}

// Diagnostics exposes the accumulated parse errors.
func (p *Parser) Diagnostics() *diag.Bag { return p.diag }
