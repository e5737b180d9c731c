package module

import "fmt"

// ModuleID identifies a Module within a ModuleGraph. Stable for the
// lifetime of a build.
type ModuleID int

// ModuleKind distinguishes how a Module's contents were obtained.
type ModuleKind int

const (
	KindSource         ModuleKind = iota // compiled from this build's own sources
	KindPackageHeader                    // compiled, exports known, decoded from a header on a later build
	KindStandardLib                      // a standard-library module
	KindExternalPackage                  // decoded from an on-disk header (spec.md §4.11)
)

// Module is a single compiled (or header-decoded) unit, keyed by its
// module path in a ModuleGraph (spec.md §3 Module).
type Module struct {
	ID       ModuleID
	ParentID ModuleID // -1 for root modules
	Path     ModulePath
	FSPath   string
	Exports  *SymbolList
	Kind     ModuleKind

	// Payload carries the pass-specific body of the module: the typed
	// AST produced by internal/check for KindSource modules, or nothing
	// for header-only modules. It is declared `any` here so this package
	// does not depend on internal/check or internal/ir; callers type
	// assert to the concrete type they expect.
	Payload any
}

// Namespace is a per-file-set binding from a local name to another
// module's exported symbols, built during import resolution (spec.md
// §4.5). It is read-only and cannot be shadowed by local declarations.
type Namespace struct {
	Name       string
	ModulePath ModulePath
	Exports    *SymbolList
}

// Lookup finds a member by name in the namespace's target exports.
func (n *Namespace) Lookup(name string) (Symbol, bool) {
	return n.Exports.Get(name)
}

// NamespaceSet is a duplicate-rejecting name -> Namespace map scoped to a
// single file set.
type NamespaceSet struct {
	byName map[string]*Namespace
	order  []string
}

// NewNamespaceSet creates an empty NamespaceSet.
func NewNamespaceSet() *NamespaceSet {
	return &NamespaceSet{byName: make(map[string]*Namespace)}
}

// Add inserts ns, failing if the name is already bound.
func (s *NamespaceSet) Add(ns *Namespace) error {
	if _, ok := s.byName[ns.Name]; ok {
		return fmt.Errorf("already declared")
	}
	s.byName[ns.Name] = ns
	s.order = append(s.order, ns.Name)
	return nil
}

// Get looks up a namespace by its bound local name.
func (s *NamespaceSet) Get(name string) (*Namespace, bool) {
	ns, ok := s.byName[name]
	return ns, ok
}

// ModuleGraph stores every compiled or header-decoded Module keyed by
// path, answering lookups from the import resolver (spec.md §4, component
// 10). It is append-only during a build.
type ModuleGraph struct {
	modules []*Module
	byPath  map[string]ModuleID
}

// NewModuleGraph creates an empty graph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{byPath: make(map[string]ModuleID)}
}

// Add registers m and assigns it a ModuleID. The caller must have already
// set m.Path; Add fails if the path is already registered.
func (g *ModuleGraph) Add(m *Module) (ModuleID, error) {
	full := m.Path.Full()
	if _, ok := g.byPath[full]; ok {
		return -1, fmt.Errorf("module %q already registered", full)
	}
	id := ModuleID(len(g.modules))
	m.ID = id
	g.modules = append(g.modules, m)
	g.byPath[full] = id
	return id, nil
}

// Lookup finds a Module by its full dotted path.
func (g *ModuleGraph) Lookup(path ModulePath) (*Module, bool) {
	id, ok := g.byPath[path.Full()]
	if !ok {
		return nil, false
	}
	return g.modules[id], true
}

// Get returns the Module for id.
func (g *ModuleGraph) Get(id ModuleID) *Module {
	if int(id) < 0 || int(id) >= len(g.modules) {
		return nil
	}
	return g.modules[id]
}

// Len reports how many modules are registered.
func (g *ModuleGraph) Len() int { return len(g.modules) }

// All returns every registered module.
func (g *ModuleGraph) All() []*Module { return g.modules }
