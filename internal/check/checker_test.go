package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/parser"
	"github.com/jesperkha/koi/internal/resolve"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/types"
)

func parseSrc(t *testing.T, text string) *depgraph.FileSet {
	t.Helper()
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte(text))
	f, bag := parser.Parse(src, parser.Options{}, nil)
	require.True(t, bag.Empty(), "unexpected parse errors: %v", bag.All())
	sets := depgraph.Build([]*ast.File{f})
	return sets[f.Package]
}

func TestMissingReturn(t *testing.T) {
	fs := parseSrc(t, "package main\nfunc f() int {}\n")
	ctx := types.NewContext()
	res := &resolve.Result{Namespaces: module.NewNamespaceSet(), Imported: module.NewSymbolList()}
	_, bag := Check(ctx, fs, res, false, Options{}, nil)
	assert.False(t, bag.Empty())
	assert.Contains(t, bag.All()[0].Message, "missing return")
}

func TestSimpleReturn(t *testing.T) {
	fs := parseSrc(t, "package main\nfunc f() int { return 0 }\n")
	ctx := types.NewContext()
	res := &resolve.Result{Namespaces: module.NewNamespaceSet(), Imported: module.NewSymbolList()}
	cm, bag := Check(ctx, fs, res, false, Options{}, nil)
	require.True(t, bag.Empty(), "unexpected check errors: %v", bag.All())
	require.Len(t, cm.Decls, 1)
}

func TestMainMustReturnI64(t *testing.T) {
	fs := parseSrc(t, "package main\nfunc main() { return }\n")
	ctx := types.NewContext()
	res := &resolve.Result{Namespaces: module.NewNamespaceSet(), Imported: module.NewSymbolList()}
	_, bag := Check(ctx, fs, res, true, Options{}, nil)
	require.False(t, bag.Empty())
	assert.Contains(t, bag.All()[0].Message, "main function must return 'i64'")
}
