package depgraph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/parser"
	"github.com/jesperkha/koi/internal/source"
)

func parseFile(t *testing.T, name, text string) *ast.File {
	t.Helper()
	sm := source.NewMap()
	src := sm.Add(name, []byte(text))
	f, bag := parser.Parse(src, parser.Options{}, nil)
	require.True(t, bag.Empty(), "parse errors in %s: %v", name, bag.All())
	return f
}

func orderedPaths(sets []*depgraph.FileSet) []string {
	out := make([]string, len(sets))
	for i, fs := range sets {
		out[i] = fs.Path.Full()
	}
	return out
}

func TestSortOrdersDependenciesBeforeDependents(t *testing.T) {
	a := parseFile(t, "a.koi", "package a\nfunc F() int { return 0 }\n")
	b := parseFile(t, "b.koi", "package b\nimport \"a\"\nfunc G() int { return 0 }\n")
	c := parseFile(t, "c.koi", "package c\nimport \"b\"\nfunc H() int { return 0 }\n")

	sets := depgraph.Build([]*ast.File{c, a, b})
	order, external, bag := depgraph.Sort(sets, nil)
	require.True(t, bag.Empty(), "unexpected sort errors: %v", bag.All())

	if diff := cmp.Diff([]string{"a", "b", "c"}, orderedPaths(order)); diff != "" {
		t.Errorf("build order mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, external)
}

func TestSortDetectsSelfImportCycle(t *testing.T) {
	a := parseFile(t, "a.koi", "package a\nimport \"a\"\nfunc F() int { return 0 }\n")

	sets := depgraph.Build([]*ast.File{a})
	_, _, bag := depgraph.Sort(sets, nil)
	require.False(t, bag.Empty())
	require.Contains(t, bag.All()[0].Message, "import cycle detected")
}

func TestSortDetectsMutualImportCycle(t *testing.T) {
	a := parseFile(t, "a.koi", "package a\nimport \"b\"\nfunc F() int { return 0 }\n")
	b := parseFile(t, "b.koi", "package b\nimport \"a\"\nfunc G() int { return 0 }\n")

	sets := depgraph.Build([]*ast.File{a, b})
	_, _, bag := depgraph.Sort(sets, nil)
	require.False(t, bag.Empty())
}
