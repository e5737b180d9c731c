package build

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jesperkha/koi/internal/asm"
	"github.com/jesperkha/koi/internal/ast"
	"github.com/jesperkha/koi/internal/check"
	"github.com/jesperkha/koi/internal/depgraph"
	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/header"
	"github.com/jesperkha/koi/internal/ir"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/parser"
	"github.com/jesperkha/koi/internal/resolve"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/types"
)

// mainModulePath is the module path every app-kind build's entry point
// must be declared under (spec.md §4.6 main-function rules assume a
// single designated "main module"; this core has no package-selection
// syntax beyond `package main`).
const mainModulePath = "main"

// Orchestrator sequences the pipeline (scan -> parse -> file-set assembly
// -> import resolution -> type check -> IR emission -> assembly) across a
// whole workspace, then drives the external assembler/linker (spec.md §2
// component 13, §5 Concurrency & Resource Model, §6 Output artifacts).
type Orchestrator struct {
	Log *slog.Logger
}

// New creates an Orchestrator. A nil log falls back to slog.Default().
func New(log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{Log: log}
}

// Result is everything a successful Build produced.
type Result struct {
	SourceMap *source.Map
	Graph     *module.ModuleGraph
	Context   *types.Context
	Units     []*ir.Unit
	AsmPaths  []string // .s files written, in build order
	ObjPaths  []string
	OutPath   string
	HeaderOut string // written only for KindPackage builds
}

// Build runs the full pipeline for project, consuming libs for any
// imports that resolve to external pre-compiled modules (spec.md §6).
// It owns the returned Result's SourceMap for the lifetime of the
// positions held by any diagnostics (spec.md §5).
func (o *Orchestrator) Build(project *Project, libs *LibrarySet) (*Result, *diag.Bag, error) {
	if err := project.Resolve(); err != nil {
		return nil, nil, err
	}

	sm := source.NewMap()
	ctx := types.NewContext()
	graph := module.NewModuleGraph()
	res := &Result{SourceMap: sm, Graph: graph, Context: ctx}

	o.Log.Info("collecting sources", "dir", project.Src)
	paths, err := collectFiles(project.Src, project.Ignore)
	if err != nil {
		return res, nil, err
	}

	files, bag := o.parseFiles(sm, paths)
	if !bag.Empty() {
		return res, bag, nil
	}

	// A nil *LibrarySet must reach module.ExternalLibraries-typed
	// parameters as a true nil interface, not a non-nil interface
	// wrapping a nil pointer, or the `libs != nil` guards in depgraph.Sort
	// and ModulePath.Classify never trigger.
	var extLibs module.ExternalLibraries
	if libs != nil {
		extLibs = libs
	}

	sets := depgraph.Build(files)
	order, externalPaths, bag := depgraph.Sort(sets, extLibs)
	if !bag.Empty() {
		return res, bag, nil
	}

	if err := o.loadExternalHeaders(ctx, graph, libs, externalPaths); err != nil {
		return res, nil, err
	}

	if err := os.MkdirAll(project.Bin, 0o755); err != nil {
		return res, nil, fmt.Errorf("failed to create bin directory: %w", err)
	}

	for _, fs := range order {
		o.Log.Info("building module", "path", fs.Path.Full())

		imports, bag := resolve.Resolve(fs, graph, extLibs)
		if !bag.Empty() {
			return res, bag, nil
		}

		isMain := fs.Path.Full() == mainModulePath
		cm, bag := check.Check(ctx, fs, imports, isMain, check.Options{}, o.Log)
		if !bag.Empty() {
			return res, bag, nil
		}

		unit := ir.Emit(ctx, cm, o.Log)
		res.Units = append(res.Units, unit)

		// Only the module's own public declarations are exported; symbols
		// it imported are not re-exported.
		exports := module.NewSymbolList()
		for _, s := range cm.Symbols.All() {
			if s.IsExported && s.Origin.Path == fs.Path.Full() {
				_ = exports.Add(s)
			}
		}

		mod := &module.Module{
			ParentID: -1,
			Path:     fs.Path,
			FSPath:   fs.FSPath,
			Exports:  exports,
			Kind:     module.KindSource,
			Payload:  cm,
		}
		if _, err := graph.Add(mod); err != nil {
			return res, nil, err
		}

		text := asm.Assemble(unit)
		asmPath := filepath.Join(project.Bin, fs.Path.Mangle()+".s")
		if err := os.WriteFile(asmPath, []byte(text), 0o644); err != nil {
			return res, nil, fmt.Errorf("failed to write assembly output: %w", err)
		}
		res.AsmPaths = append(res.AsmPaths, asmPath)
	}

	if err := o.assembleObjects(project, res); err != nil {
		return res, nil, err
	}

	switch project.Kind {
	case KindApp:
		if err := o.link(project, libs, res); err != nil {
			return res, nil, err
		}
	case KindPackage:
		if err := o.archive(project, libs, res); err != nil {
			return res, nil, err
		}
		if err := o.writeHeader(project, graph, ctx, res); err != nil {
			return res, nil, err
		}
	}

	return res, diag.NewBag(), nil
}

func (o *Orchestrator) parseFiles(sm *source.Map, paths []string) ([]*ast.File, *diag.Bag) {
	bag := diag.NewBag()
	var files []*ast.File
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			bag.Add(diag.NewMessage(fmt.Sprintf("failed to read file: %s", p)))
			continue
		}
		src := sm.Add(p, raw)
		f, fbag := parser.Parse(src, parser.Options{}, o.Log)
		if !fbag.Empty() {
			bag.Join(fbag)
			continue
		}
		files = append(files, f)
	}
	return files, bag
}

// loadExternalHeaders decodes the header file for every external module
// path referenced by the build, registering each as a KindExternalPackage
// module so import resolution can see its exports (spec.md §4.11).
func (o *Orchestrator) loadExternalHeaders(ctx *types.Context, graph *module.ModuleGraph, libs *LibrarySet, paths []string) error {
	if libs == nil {
		if len(paths) > 0 {
			return fmt.Errorf("build: no library set configured but %d external imports present", len(paths))
		}
		return nil
	}
	for _, path := range paths {
		entry, ok := libs.Get(path)
		if !ok {
			return fmt.Errorf("build: unknown external module %q", path)
		}
		data, err := os.ReadFile(entry.Header)
		if err != nil {
			return fmt.Errorf("build: reading header for %q: %w", path, err)
		}
		mod, err := header.Decode(ctx, module.NewModulePath(path), data)
		if err != nil {
			return fmt.Errorf("build: decoding header for %q: %w", path, err)
		}
		if _, err := graph.Add(mod); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) assembleObjects(project *Project, res *Result) error {
	for _, s := range res.AsmPaths {
		obj := strings.TrimSuffix(s, ".s") + ".o"
		if err := run("gcc", "-c", "-nostartfiles", s, "-o", obj); err != nil {
			return err
		}
		res.ObjPaths = append(res.ObjPaths, obj)
	}
	return nil
}

func (o *Orchestrator) link(project *Project, libs *LibrarySet, res *Result) error {
	entry := filepath.Join("lib", "entry.s")
	args := []string{"-nostartfiles"}
	args = append(args, res.AsmPaths...)
	args = append(args, entry, "-o", project.Out)
	if libs != nil {
		args = append(args, libs.Archives()...)
	}
	if err := run("gcc", args...); err != nil {
		return err
	}
	res.OutPath = project.Out
	return nil
}

func (o *Orchestrator) archive(project *Project, libs *LibrarySet, res *Result) error {
	args := []string{"rcs", project.Out}
	args = append(args, res.ObjPaths...)
	if libs != nil {
		args = append(args, libs.Archives()...)
	}
	if err := run("ar", args...); err != nil {
		return err
	}
	res.OutPath = project.Out
	return nil
}

// writeHeader encodes the export set of the last source module in the
// graph (the last one compiled in build order) and writes it alongside
// the archive, per spec.md §6 Output artifacts.
func (o *Orchestrator) writeHeader(project *Project, graph *module.ModuleGraph, ctx *types.Context, res *Result) error {
	var exports *module.SymbolList
	for _, mod := range graph.All() {
		if mod.Kind == module.KindSource {
			exports = mod.Exports
		}
	}
	if exports == nil {
		return fmt.Errorf("build: no compiled module to export a header for")
	}

	blob := header.Encode(ctx, exports)
	headerPath := filepath.Join(filepath.Dir(project.Out), "lib"+project.Name+".koi.h")
	if err := os.WriteFile(headerPath, blob, 0o644); err != nil {
		return fmt.Errorf("build: writing header: %w", err)
	}
	res.HeaderOut = headerPath
	return nil
}

func run(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", command, err)
	}
	return nil
}

// collectFiles walks dir for .koi files, skipping any subdirectory whose
// base name appears in ignore (spec.md §6 "list of source subdirectories
// to ignore"). Directory scanning is explicitly out of scope for the
// core per spec.md §1, but the orchestrator still needs a minimal version
// of it to drive an end-to-end build without a separate front end.
func collectFiles(dir string, ignore []string) ([]string, error) {
	ignored := make(map[string]bool, len(ignore))
	for _, d := range ignore {
		ignored[d] = true
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && ignored[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".koi" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory %q: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}
