package check

import (
	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/types"
)

// Decl is a type-checked top-level declaration.
type Decl interface {
	declNode()
}

// FuncDecl is a checked function definition with a typed body.
type FuncDecl struct {
	Symbol module.Symbol
	Params []Field
	Body   []Stmt
}

// ExternDecl is a checked extern signature (no body).
type ExternDecl struct {
	Symbol module.Symbol
	Params []Field
}

// Field pairs a parameter name with its resolved type.
type Field struct {
	Name   string
	TypeID types.TypeID
}

func (*FuncDecl) declNode()   {}
func (*ExternDecl) declNode() {}

// Stmt is a type-checked statement.
type Stmt interface {
	stmtNode()
}

type ExprStmt struct{ X Expr }
type ReturnStmt struct{ X Expr } // X is nil for a bare `return`
type VarDecl struct {
	Name   string
	Const  bool
	TypeID types.TypeID
	X      Expr
}
type VarAssign struct {
	Lhs Expr
	X   Expr
}
type Block struct{ Stmts []Stmt }

func (*ExprStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}
func (*VarDecl) stmtNode()    {}
func (*VarAssign) stmtNode()  {}
func (*Block) stmtNode()      {}

// Expr is a type-checked expression; every variant carries its resolved
// TypeID (spec.md §3 Typed AST).
type Expr interface {
	exprNode()
	Type() types.TypeID
}

// LiteralKind mirrors ast.LiteralKind plus the identifier-lookup-result
// distinction the checker resolves (spec.md §3: "LiteralKind sum of (int,
// uint, float, bool, char, string, identifier)").
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitUint
	LitFloat
	LitBool
	LitChar
	LitString
	LitIdent
)

// Literal is a checked atomic value or resolved identifier reference.
type Literal struct {
	Kind    LiteralKind
	TypeID_ types.TypeID
	Int     int64
	Float   float64
	Str     string
	Char    byte
	Bool    bool

	// Ident is set when Kind == LitIdent: the variable/parameter/symbol
	// name this identifier resolved to.
	Ident string
	// IsParam/ParamIndex are not set by the checker; the emitter resolves
	// identifiers to params or const-ids through its own name tracker.
	IsParam    bool
	ParamIndex int
}

// Call is a checked function application.
type Call struct {
	Callee  Expr
	Args    []Expr
	TypeID_ types.TypeID
}

// NamespaceMember is `ns.field` after resolving ns to a bound namespace
// (spec.md §4.6 Member access rule).
type NamespaceMember struct {
	Namespace string
	Field     string
	Symbol    module.Symbol
	TypeID_   types.TypeID
}

func (e *Literal) exprNode()         {}
func (e *Call) exprNode()            {}
func (e *NamespaceMember) exprNode() {}

func (e *Literal) Type() types.TypeID         { return e.TypeID_ }
func (e *Call) Type() types.TypeID            { return e.TypeID_ }
func (e *NamespaceMember) Type() types.TypeID { return e.TypeID_ }

// isLValue reports whether e may appear on the left of `=` (spec.md §4.6:
// parenthesized and call expressions are rejected as non-lvalues; this
// operates on the UNTYPED ast node since lvalue-ness is a syntactic
// property checked before the rhs is even evaluated).
func isLValue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Group, *ast.Call:
		return false
	default:
		return true
	}
}
