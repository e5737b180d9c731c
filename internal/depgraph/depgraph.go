// Package depgraph implements file-set assembly and dependency ordering
// (spec.md §4.3): grouping parsed files by declared module path, building
// the inter-module import DAG, and producing a deterministic topological
// build order.
package depgraph

import (
	"sort"

	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/module"
)

// FileSet groups every parsed File sharing one declared module path
// (spec.md §3 FileSet). Nonempty by construction.
type FileSet struct {
	Path    module.ModulePath
	FSPath  string
	Files   []*ast.File
	Imports []*ast.Import // union of every file's import nodes
}

// Build groups files by their Package declaration into FileSets.
func Build(files []*ast.File) map[string]*FileSet {
	sets := make(map[string]*FileSet)
	for _, f := range files {
		path := f.Package
		fs, ok := sets[path]
		if !ok {
			fs = &FileSet{Path: module.NewModulePath(path)}
			sets[path] = fs
		}
		fs.Files = append(fs.Files, f)
		fs.Imports = append(fs.Imports, f.Imports...)
	}
	return sets
}

// Sort computes a deterministic topological order over sets (least
// dependent first) for user-module imports only; imports resolving to
// stdlib or an external library are classified by libs and excluded from
// ordering (spec.md §4.3).
//
// An edge A -> B means "B imports A", so A is ordered before B. Self
// import and any cycle produce "import cycle detected" diagnostics.
func Sort(sets map[string]*FileSet, libs module.ExternalLibraries) ([]*FileSet, []string, *diag.Bag) {
	bag := diag.NewBag()

	// adjacency: dependents[A] = set of B that import A (edges A -> B)
	dependents := make(map[string]map[string]bool)
	inDegree := make(map[string]int)
	for path := range sets {
		dependents[path] = make(map[string]bool)
		inDegree[path] = 0
	}

	external := make(map[string]bool)

	for path, fs := range sets {
		for _, imp := range fs.Imports {
			importPath := module.NewModulePath(imp.Path).Full()
			if importPath == path {
				bag.Add(diag.NewCodeError("import cycle detected", imp.Pos, len(imp.Path), ""))
				continue
			}
			if _, ok := sets[importPath]; !ok {
				// Not a user module in this build; deferred to import
				// resolution unless libs recognizes it as external.
				if libs != nil && (module.NewModulePath(importPath).Classify(libs) != module.KindUser) {
					external[importPath] = true
				}
				continue
			}
			if !dependents[importPath][path] {
				dependents[importPath][path] = true
				inDegree[path]++
			}
		}
	}

	if !bag.Empty() {
		return nil, nil, bag
	}

	// Kahn's algorithm, seeded in deterministic (sorted) order so ties
	// resolve the same way across runs.
	var ready []string
	for path, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var next []string
		for dep := range dependents[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				next = append(next, dep)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
	}

	if len(order) != len(sets) {
		// A cycle remains among modules not reachable from any in-degree-0
		// node.
		bag.Add(diag.NewMessage("import cycle detected"))
		return nil, nil, bag
	}

	out := make([]*FileSet, len(order))
	for i, path := range order {
		out[i] = sets[path]
	}

	var externalList []string
	for path := range external {
		externalList = append(externalList, path)
	}
	sort.Strings(externalList)

	return out, externalList, bag
}
