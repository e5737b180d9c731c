package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/check"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/ir"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/parser"
	"github.com/jesperkha/koi/internal/resolve"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/types"
)

func emitModule(t *testing.T, text string) *ir.Unit {
	t.Helper()
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte(text))
	f, bag := parser.Parse(src, parser.Options{}, nil)
	require.True(t, bag.Empty(), "parse errors: %v", bag.All())

	sets := depgraph.Build([]*ast.File{f})
	fs := sets[f.Package]

	ctx := types.NewContext()
	res := &resolve.Result{Namespaces: module.NewNamespaceSet(), Imported: module.NewSymbolList()}
	cm, bag := check.Check(ctx, fs, res, false, check.Options{NoMangleNames: true}, nil)
	require.True(t, bag.Empty(), "check errors: %v", bag.All())

	return ir.Emit(ctx, cm, nil)
}

func TestEmitEmptyVoidFunc(t *testing.T) {
	u := emitModule(t, "package main\nfunc f() {}\n")
	require.Equal(t, "func f() void\n  ret void\n", ir.Print(u))
}

func TestEmitIntReturn(t *testing.T) {
	u := emitModule(t, "package main\nfunc f() int { return 0 }\n")
	require.Equal(t, "func f() i64\n  ret i64 0\n", ir.Print(u))
}

func TestEmitBoolReturn(t *testing.T) {
	u := emitModule(t, "package main\nfunc f() bool { return true }\n")
	require.Equal(t, "func f() u8\n  ret u8 1\n", ir.Print(u))
}

func TestEmitParamPassthrough(t *testing.T) {
	u := emitModule(t, "package main\nfunc f(a int) int { return a }\n")
	require.Equal(t, "func f(i64) i64\n  ret i64 %0\n", ir.Print(u))
}

func TestEmitAssignReusesConstID(t *testing.T) {
	u := emitModule(t, "package main\nfunc f() { a := 0\na = 1\na = 2 }\n")
	out := ir.Print(u)
	require.Contains(t, out, "$0 i64 = 0")
	require.Contains(t, out, "$0 i64 = 1")
	require.Contains(t, out, "$0 i64 = 2")
}
