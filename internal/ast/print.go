package ast

import (
	"fmt"
	"strings"
)

// Print renders f back to source-like text: one line per import, one line
// per top-level declaration signature, and one line per body statement.
// It exists for testing the parser's structural fidelity (spec.md §8) and
// is never used by the compiler's own pipeline.
func Print(f *File) string {
	var sb strings.Builder
	if f.Package != "" {
		fmt.Fprintf(&sb, "package %s\n", f.Package)
	}
	for _, imp := range f.Imports {
		sb.WriteString(printImport(imp))
		sb.WriteByte('\n')
	}
	for _, d := range f.Decls {
		printDecl(&sb, d)
	}
	return sb.String()
}

func printImport(imp *Import) string {
	s := "import " + imp.Path
	if imp.Alias != "" {
		s += " as " + imp.Alias
	}
	if len(imp.Names) > 0 {
		s += " { " + strings.Join(imp.Names, ", ") + " }"
	}
	return s
}

func printDecl(sb *strings.Builder, d Decl) {
	switch d := d.(type) {
	case *FuncDecl:
		fmt.Fprintf(sb, "func %s\n", printSig(d.Name, d.Params, d.Ret))
		printBlock(sb, d.Body)
	case *ExternDecl:
		fmt.Fprintf(sb, "extern func %s\n", printSig(d.Name, d.Params, d.Ret))
	case *PackageDecl:
		fmt.Fprintf(sb, "package %s\n", d.Name)
	}
}

func printSig(name string, params []Field, ret *TypeNode) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + " " + printType(p.Type)
	}
	s := name + "(" + strings.Join(parts, ", ") + ")"
	if ret != nil {
		s += " " + printType(*ret)
	}
	return s
}

func printType(t TypeNode) string {
	if t.IsPrimitive() {
		return t.Primitive
	}
	return t.Ident
}

func printBlock(sb *strings.Builder, b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		printStmt(sb, s)
	}
}

func printStmt(sb *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		fmt.Fprintf(sb, "%s\n", printExpr(s.X))
	case *ReturnStmt:
		if s.X != nil {
			fmt.Fprintf(sb, "return %s\n", printExpr(s.X))
		} else {
			sb.WriteString("return\n")
		}
	case *VarDecl:
		op := ":="
		if s.Const {
			op = "::"
		}
		fmt.Fprintf(sb, "%s %s %s\n", s.Name, op, printExpr(s.X))
	case *VarAssign:
		fmt.Fprintf(sb, "%s = %s\n", printExpr(s.Lhs), printExpr(s.X))
	case *Block:
		printBlock(sb, s)
	}
}

func printExpr(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		switch e.Kind {
		case LitInt:
			return fmt.Sprintf("%d", e.Int)
		case LitFloat:
			return fmt.Sprintf("%g", e.Float)
		case LitString:
			return fmt.Sprintf("%q", e.Str)
		case LitChar:
			return fmt.Sprintf("'%c'", e.Char)
		case LitBool:
			return fmt.Sprintf("%t", e.Bool)
		default:
			return e.Ident
		}
	case *Group:
		return "(" + printExpr(e.X) + ")"
	case *Call:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = printExpr(a)
		}
		return printExpr(e.Callee) + "(" + strings.Join(parts, ", ") + ")"
	case *Member:
		return printExpr(e.X) + "." + e.Name
	default:
		return ""
	}
}
