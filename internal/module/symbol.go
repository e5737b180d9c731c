package module

import (
	"fmt"

	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/types"
)

// OriginKind distinguishes where a Symbol's link name comes from, which
// drives name mangling (spec.md §4.8).
type OriginKind int

const (
	OriginModule OriginKind = iota
	OriginExtern
	OriginLibrary
)

// Origin records how a Symbol was declared.
type Origin struct {
	Kind OriginKind
	Path string // module path (Module/Extern) or library name (Library)
}

// Symbol is a named, typed declaration visible to the type checker and
// emitter (spec.md §3 Symbol).
type Symbol struct {
	Name       string
	TypeID     types.TypeID
	Origin     Origin
	IsExported bool
	NoMangle   bool
	IsInline   bool
	IsNaked    bool
	Pos        source.Pos
	SourceFile string
}

// LinkName computes the final object-file symbol name for s (spec.md
// §4.8). `main` always takes the unmangled name `main` regardless of
// NoMangle, matching the Rust original's documented short-circuit order
// (spec.md Open Questions).
func (s Symbol) LinkName() string {
	if s.Name == "main" {
		return "main"
	}
	if s.NoMangle {
		return s.Name
	}
	switch s.Origin.Kind {
	case OriginModule:
		return "_" + NewModulePath(s.Origin.Path).Mangle() + "_" + s.Name
	case OriginExtern:
		return s.Name
	default:
		return s.Name
	}
}

// SymbolList is a duplicate-rejecting name -> Symbol map, used both as a
// file set's local symbol table and as a module's export set.
type SymbolList struct {
	byName map[string]Symbol
	order  []string
}

// NewSymbolList creates an empty SymbolList.
func NewSymbolList() *SymbolList {
	return &SymbolList{byName: make(map[string]Symbol)}
}

// Add inserts sym. It fails if the name is already present.
func (l *SymbolList) Add(sym Symbol) error {
	if _, ok := l.byName[sym.Name]; ok {
		return fmt.Errorf("already declared")
	}
	l.byName[sym.Name] = sym
	l.order = append(l.order, sym.Name)
	return nil
}

// Get looks up a symbol by name.
func (l *SymbolList) Get(name string) (Symbol, bool) {
	s, ok := l.byName[name]
	return s, ok
}

// Has reports whether name is bound.
func (l *SymbolList) Has(name string) bool {
	_, ok := l.byName[name]
	return ok
}

// All returns every symbol in insertion order.
func (l *SymbolList) All() []Symbol {
	out := make([]Symbol, 0, len(l.order))
	for _, n := range l.order {
		out = append(out, l.byName[n])
	}
	return out
}

// Len reports the number of symbols.
func (l *SymbolList) Len() int { return len(l.order) }
