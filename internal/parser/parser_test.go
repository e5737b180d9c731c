package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/parser"
	"github.com/jesperkha/koi/internal/source"
)

func parse(t *testing.T, text string) *ast.File {
	t.Helper()
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte(text))
	f, bag := parser.Parse(src, parser.Options{}, nil)
	require.True(t, bag.Empty(), "unexpected parse errors: %v", bag.All())
	return f
}

func TestParsePackageAndImport(t *testing.T) {
	f := parse(t, "package main\nimport \"io\"\nfunc f() {}\n")
	require.Equal(t, "main", f.Package)
	require.Equal(t, "package main\nimport io\nfunc f()\n", ast.Print(f))
}

func TestParseImportWithAlias(t *testing.T) {
	f := parse(t, "package main\nimport \"io\" as sysio\nfunc f() {}\n")
	require.Len(t, f.Imports, 1)
	require.Equal(t, "sysio", f.Imports[0].Alias)
	require.Equal(t, "package main\nimport io as sysio\nfunc f()\n", ast.Print(f))
}

func TestParseImportWithNamedList(t *testing.T) {
	f := parse(t, "package main\nimport \"io\" { Read, Write }\nfunc f() {}\n")
	require.Len(t, f.Imports, 1)
	require.Equal(t, []string{"Read", "Write"}, f.Imports[0].Names)
}

func TestParseFuncWithParamsAndReturn(t *testing.T) {
	f := parse(t, "package main\nfunc add(a int, b int) int { return a }\n")
	require.Equal(t, "package main\nfunc add(a int, b int) int\nreturn a\n", ast.Print(f))
}

func TestParseExternDecl(t *testing.T) {
	f := parse(t, "package main\nextern func puts(s string) int\n")
	require.Equal(t, "package main\nextern func puts(s string) int\n", ast.Print(f))
}

func TestParseVarDeclAndAssign(t *testing.T) {
	f := parse(t, "package main\nfunc f() { a := 1\na = 2 }\n")
	require.Equal(t, "package main\nfunc f()\na := 1\na = 2\n", ast.Print(f))
}

func TestParseConstDecl(t *testing.T) {
	f := parse(t, "package main\nfunc f() { a :: 1 }\n")
	require.Equal(t, "package main\nfunc f()\na :: 1\n", ast.Print(f))
}

func TestParseCallAndMemberExpr(t *testing.T) {
	f := parse(t, "package main\nimport \"io\"\nfunc f() { io.puts(\"hi\") }\n")
	require.Equal(t, "package main\nimport io\nfunc f()\nio.puts(\"hi\")\n", ast.Print(f))
}

func TestParseMissingClosingBraceRecoversWithDiagnostic(t *testing.T) {
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte("package main\nfunc f() {\n"))
	_, bag := parser.Parse(src, parser.Options{}, nil)
	require.False(t, bag.Empty())
}
