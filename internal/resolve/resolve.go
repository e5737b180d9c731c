// Package resolve implements the import resolver and namespace builder
// (spec.md §4.5): for each file set, binding its imports against an
// existing module graph into namespaces and directly-imported symbols.
package resolve

import (
	"fmt"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/module"
)

// Result is what a file set's imports resolve to: its namespaces, its
// directly-imported symbols, and the module ids it depends on (recorded
// on the eventual CreateModule per spec.md §4.5).
type Result struct {
	Namespaces   *module.NamespaceSet
	Imported     *module.SymbolList
	Dependencies []module.ModuleID
}

// Resolve walks fs's imports in declaration order against graph.
func Resolve(fs *depgraph.FileSet, graph *module.ModuleGraph, libs module.ExternalLibraries) (*Result, *diag.Bag) {
	bag := diag.NewBag()
	res := &Result{
		Namespaces: module.NewNamespaceSet(),
		Imported:   module.NewSymbolList(),
	}

	seenDeps := make(map[module.ModuleID]bool)

	for _, imp := range fs.Imports {
		resolveOne(imp, graph, libs, res, bag, seenDeps)
	}

	return res, bag
}

func resolveOne(imp *ast.Import, graph *module.ModuleGraph, libs module.ExternalLibraries, res *Result, bag *diag.Bag, seenDeps map[module.ModuleID]bool) {
	path := module.NewModulePath(imp.Path)

	mod, ok := graph.Lookup(path)
	if !ok {
		bag.Add(diag.NewCodeError("could not resolve module path", imp.Pos, len(imp.Path), ""))
		return
	}

	if !seenDeps[mod.ID] {
		seenDeps[mod.ID] = true
		res.Dependencies = append(res.Dependencies, mod.ID)
	}

	nsName := imp.Alias
	if nsName == "" {
		nsName = path.Name()
	}

	ns := &module.Namespace{Name: nsName, ModulePath: path, Exports: mod.Exports}
	if err := res.Namespaces.Add(ns); err != nil {
		bag.Add(diag.NewCodeError(fmt.Sprintf("namespace '%s' already declared", nsName), imp.Pos, len(imp.Path), ""))
	}

	for _, name := range imp.Names {
		sym, ok := mod.Exports.Get(name)
		if !ok {
			bag.Add(diag.NewCodeError(fmt.Sprintf("module '%s' has no export '%s'", path.Full(), name), imp.Pos, len(imp.Path), ""))
			continue
		}
		if err := res.Imported.Add(sym); err != nil {
			bag.Add(diag.NewCodeError(fmt.Sprintf("'%s' already declared", name), imp.Pos, len(imp.Path), ""))
		}
	}
}
