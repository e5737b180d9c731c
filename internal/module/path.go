// Package module implements the data model shared by the import resolver,
// type checker, and module graph (spec.md §3): module paths, symbols,
// namespaces, and the module graph itself.
package module

import "strings"

// Kind classifies a ModulePath by where it resolves from.
type Kind int

const (
	KindUser Kind = iota
	KindStandard
	KindExternal
)

// stdlibPrefixes lists the dotted prefixes reserved for the standard
// library. A real distribution would read this from the toolchain
// install location; the core only needs to classify by prefix.
var stdlibPrefixes = []string{"std", "std."}

// ModulePath is a dotted identifier path such as "app.util.strings".
type ModulePath struct {
	segments []string
}

// NewModulePath splits a dotted path string into a ModulePath.
func NewModulePath(path string) ModulePath {
	return ModulePath{segments: strings.Split(path, ".")}
}

// Name returns the last path segment.
func (m ModulePath) Name() string {
	if len(m.segments) == 0 {
		return ""
	}
	return m.segments[len(m.segments)-1]
}

// Full returns the dotted path string.
func (m ModulePath) Full() string {
	return strings.Join(m.segments, ".")
}

// Mangle returns the underscore-joined form used in link names and output
// filenames (spec.md §4.8, §6).
func (m ModulePath) Mangle() string {
	return strings.Join(m.segments, "_")
}

// Classify reports whether the path names a standard-library module, an
// external library module (known to libs), or a user module.
func (m ModulePath) Classify(libs ExternalLibraries) Kind {
	full := m.Full()
	if full == "std" || strings.HasPrefix(full, "std.") {
		return KindStandard
	}
	if libs != nil && libs.Has(full) {
		return KindExternal
	}
	return KindUser
}

// ExternalLibraries answers whether a dotted module path is a known
// pre-compiled library outside the current build (spec.md §6 LibrarySet).
type ExternalLibraries interface {
	Has(path string) bool
}
