// Package compile implements the Compile Orchestrator (spec §4.5): it owns
// at most one cached CompilationResult, rebuilds it per the trigger matrix,
// and routes diagnostics back to the LSP Adapter.
package compile

import (
	"github.com/cwbudde/go-dws/pkg/ast"
	"github.com/cwbudde/go-dws/pkg/dwscript"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/artic-lang/artic-lsp/internal/analysis"
)

// CompilationResult is the outcome of one orchestrator build: the ordered
// file set ("locator"), the frontend's per-file AST and diagnostics, and a
// cross-file symbol table merged from every successfully-parsed file.
//
// go-dws compiles one text at a time (see DESIGN.md, "frontend contract
// note"); this struct is how the orchestrator presents a multi-file compile
// unit as a single result despite that constraint: one frontend invocation
// per file, diagnostics kept per file, symbol references merged across
// files the way the teacher's SymbolIndex merges per-document reference
// maps into one cross-document index.
type CompilationResult struct {
	Files       []string
	Programs    map[string]*dwscript.Program
	Diagnostics map[string][]protocol.Diagnostic

	references map[string]map[string][]protocol.Range // symbol name -> file -> ranges
}

func newResult(files []string) *CompilationResult {
	return &CompilationResult{
		Files:       files,
		Programs:    make(map[string]*dwscript.Program),
		Diagnostics: make(map[string][]protocol.Diagnostic),
		references:  make(map[string]map[string][]protocol.Range),
	}
}

// Covers reports whether file is part of this result's locator.
func (r *CompilationResult) Covers(file string) bool {
	if r == nil {
		return false
	}
	for _, f := range r.Files {
		if f == file {
			return true
		}
	}
	return false
}

// Program returns the parsed AST for file, if it parsed successfully and
// wasn't skipped under safe mode.
func (r *CompilationResult) Program(file string) (*dwscript.Program, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.Programs[file]
	return p, ok
}

// FindReferences returns every recorded occurrence of the identifier name
// across every file in this result, in no particular cross-file order
// (callers sort by file/position as needed).
func (r *CompilationResult) FindReferences(name string) []protocol.Location {
	if r == nil {
		return nil
	}
	perFile, ok := r.references[name]
	if !ok {
		return nil
	}
	var locs []protocol.Location
	for file, ranges := range perFile {
		uri := analysis.PathToURI(file)
		for _, rng := range ranges {
			locs = append(locs, protocol.Location{URI: uri, Range: rng})
		}
	}
	return locs
}

func (r *CompilationResult) indexProgram(file string, program *dwscript.Program) {
	if program == nil || program.AST() == nil {
		return
	}
	ast.Inspect(program.AST(), func(node ast.Node) bool {
		ident, ok := node.(*ast.Identifier)
		if !ok || ident == nil {
			return true
		}
		start := ident.Pos()
		end := ident.End()
		rng := protocol.Range{
			Start: protocol.Position{Line: uint32(maxZero(start.Line - 1)), Character: uint32(maxZero(start.Column - 1))},
			End:   protocol.Position{Line: uint32(maxZero(end.Line - 1)), Character: uint32(maxZero(end.Column - 1))},
		}
		if r.references[ident.Value] == nil {
			r.references[ident.Value] = make(map[string][]protocol.Range)
		}
		r.references[ident.Value][file] = append(r.references[ident.Value][file], rng)
		return true
	})
}

func maxZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
