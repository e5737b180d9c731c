// Package ast defines the untyped syntax tree produced by the parser
// (spec.md §3, §4.2). Every node carries its own position so later passes
// never need to recompute spans.
package ast

import "github.com/jesperkha/koi/internal/source"

// NodeID is the byte offset of a node's first token within its file. It is
// unique within a single file and doubles as the key used by the type
// context to annotate nodes with resolved types.
type NodeID int

// File is the parsed result of one source file: its package declaration
// (if any), its imports, and its top-level declarations.
type File struct {
	Source  *source.Source
	Package string
	Imports []*Import
	Decls   []Decl
}

// Import is a single `import` declaration.
type Import struct {
	ID      NodeID
	Pos     source.Pos
	Path    string
	Alias   string // "" if no alias given
	Names   []string // named imports from the brace list; empty means "import the namespace only"
}

// Field is a name-type pair used for function parameters.
type Field struct {
	Name string
	Type TypeNode
	Pos  source.Pos
}

// TypeNode is either a primitive keyword or an identifier reference to a
// user-declared type name.
type TypeNode struct {
	ID        NodeID
	Pos       source.Pos
	Primitive string // non-empty for primitive keyword types ("int", "i64", ...)
	Ident     string // non-empty for identifier-referenced types
}

func (t TypeNode) IsPrimitive() bool { return t.Primitive != "" }

// Decl is the common interface of top-level declarations.
type Decl interface {
	declNode()
	Pos() source.Pos
}

// FuncDecl is a function definition with a body.
type FuncDecl struct {
	NodeID  NodeID
	Public  bool
	Name    string
	Params  []Field
	Ret     *TypeNode // nil means void
	Body    *Block
	NamePos source.Pos
	BodyEnd source.Pos // position of the closing brace, used for "missing return"
}

// ExternDecl is a function signature declaration with no body, bound to an
// externally linked symbol.
type ExternDecl struct {
	NodeID  NodeID
	Public  bool
	Name    string
	Params  []Field
	Ret     *TypeNode
	NamePos source.Pos
}

// PackageDecl names the module path this file belongs to.
type PackageDecl struct {
	NodeID NodeID
	Name   string
	NamePos source.Pos
}

func (d *FuncDecl) declNode()    {}
func (d *ExternDecl) declNode()  {}
func (d *PackageDecl) declNode() {}

func (d *FuncDecl) Pos() source.Pos    { return d.NamePos }
func (d *ExternDecl) Pos() source.Pos  { return d.NamePos }
func (d *PackageDecl) Pos() source.Pos { return d.NamePos }

// Stmt is the common interface of statements.
type Stmt interface {
	stmtNode()
	Pos() source.Pos
}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	NodeID NodeID
	X      Expr
}

// ReturnStmt is `return` or `return <expr>`.
type ReturnStmt struct {
	NodeID NodeID
	KwPos  source.Pos
	X      Expr // nil for a bare `return`
}

// VarDecl is `name := expr` (mutable) or `name :: expr` (constant).
type VarDecl struct {
	NodeID  NodeID
	Name    string
	NamePos source.Pos
	Const   bool
	X       Expr
}

// VarAssign is `lhs = expr`.
type VarAssign struct {
	NodeID NodeID
	Lhs    Expr
	X      Expr
}

// Block is a brace-delimited statement list.
type Block struct {
	NodeID NodeID
	LPos   source.Pos
	RPos   source.Pos
	Stmts  []Stmt
}

func (s *ExprStmt) stmtNode()   {}
func (s *ReturnStmt) stmtNode() {}
func (s *VarDecl) stmtNode()    {}
func (s *VarAssign) stmtNode()  {}
func (s *Block) stmtNode()      {}

func (s *ExprStmt) Pos() source.Pos   { return s.X.Pos() }
func (s *ReturnStmt) Pos() source.Pos { return s.KwPos }
func (s *VarDecl) Pos() source.Pos    { return s.NamePos }
func (s *VarAssign) Pos() source.Pos  { return s.Lhs.Pos() }
func (s *Block) Pos() source.Pos      { return s.LPos }

// Expr is the common interface of expressions.
type Expr interface {
	exprNode()
	Pos() source.Pos
	ID() NodeID
}

// LiteralKind distinguishes the payload carried by a Literal node.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitIdent
)

// Literal is an atomic value or a bare identifier reference.
type Literal struct {
	NodeID NodeID
	KwPos  source.Pos
	Kind   LiteralKind
	Int    int64
	Float  float64
	Str    string
	Char   byte
	Bool   bool
	Ident  string
}

// Group is a parenthesized expression. It is transparent for typing but
// never an lvalue.
type Group struct {
	NodeID NodeID
	LPos   source.Pos
	X      Expr
}

// Call is a function application.
type Call struct {
	NodeID NodeID
	Callee Expr
	Args   []Expr
	LPos   source.Pos
}

// Member is `x.name` field/namespace access.
type Member struct {
	NodeID  NodeID
	X       Expr
	Name    string
	NamePos source.Pos
}

func (e *Literal) exprNode() {}
func (e *Group) exprNode()   {}
func (e *Call) exprNode()    {}
func (e *Member) exprNode()  {}

func (e *Literal) Pos() source.Pos { return e.KwPos }
func (e *Group) Pos() source.Pos   { return e.LPos }
func (e *Call) Pos() source.Pos    { return e.Callee.Pos() }
func (e *Member) Pos() source.Pos  { return e.X.Pos() }

func (e *Literal) ID() NodeID { return e.NodeID }
func (e *Group) ID() NodeID   { return e.NodeID }
func (e *Call) ID() NodeID    { return e.NodeID }
func (e *Member) ID() NodeID  { return e.NodeID }
