// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/cwbudde/go-dws/pkg/ast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/compile"
	"github.com/artic-lang/artic-lsp/internal/server"
)

// InlayHint handles textDocument/inlayHint requests. Per the trigger matrix
// (spec §4.5) this must never trigger a compile: a request arriving right
// after a didChange has to see exactly the result that didChange produced,
// so it goes through EnsureForTokenRequest and returns an empty slice rather
// than building when nothing is cached for this file yet.
func InlayHint(context *glsp.Context, params *protocol.InlayHintParams) ([]protocol.InlayHint, error) {
	log.Printf("InlayHint request for: %s\n", params.TextDocument.URI)

	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Error: server instance not available")
		return nil, nil
	}

	uri := string(params.TextDocument.URI)
	doc, ok := srv.Documents().Get(uri)
	if !ok || doc == nil {
		log.Printf("Document not found: %s\n", uri)
		return nil, nil
	}

	program := doc.Program

	if orchestratorInstance != nil {
		if path, err := analysis.URIToPath(uri); err == nil {
			compilation, kind := orchestratorInstance.EnsureForTokenRequest(path)
			if kind == compile.LookupEmpty {
				return []protocol.InlayHint{}, nil
			}
			if cached, ok := compilation.Program(path); ok && cached != nil {
				program = cached
			}
		}
	}

	if program == nil {
		return []protocol.InlayHint{}, nil
	}

	root := program.AST()
	if root == nil {
		return []protocol.InlayHint{}, nil
	}

	hints := collectVarTypeHints(root, params.Range)
	log.Printf("Collected %d inlay hints for %s\n", len(hints), uri)
	return hints, nil
}

// collectVarTypeHints walks root looking for variable declarations with no
// explicit type annotation whose initializer is a literal, and proposes an
// inlay hint showing the literal's type right after the declared name. This
// is deliberately not a type checker: anything initialized from an
// expression more complex than a literal is left unannotated, since the
// binder/checker that could resolve it is out of scope here.
func collectVarTypeHints(root *ast.Program, rng protocol.Range) []protocol.InlayHint {
	hints := []protocol.InlayHint{}

	ast.Inspect(root, func(n ast.Node) bool {
		varDecl, ok := n.(*ast.VarDeclStatement)
		if !ok || varDecl == nil {
			return true
		}
		if varDecl.Type != nil {
			// Already annotated in source; nothing to hint.
			return true
		}
		for i, name := range varDecl.Names {
			if name == nil {
				continue
			}
			var value ast.Expression
			if i < len(varDecl.Values) {
				value = varDecl.Values[i]
			}
			typeName, ok := literalTypeName(value)
			if !ok {
				continue
			}

			pos := name.End()
			line := uint32(maxZeroInt(pos.Line - 1))
			character := uint32(maxZeroInt(pos.Column - 1))
			if line < rng.Start.Line || line > rng.End.Line {
				continue
			}

			padLeft := false
			padRight := true
			hints = append(hints, protocol.InlayHint{
				Position:     protocol.Position{Line: line, Character: character},
				Label:        ": " + typeName,
				Kind:         inlayHintKindType(),
				PaddingLeft:  &padLeft,
				PaddingRight: &padRight,
			})
		}
		return true
	})

	return hints
}

// literalTypeName returns the declared type name for a literal initializer
// expression, or false if expr is nil or not a literal this handler knows
// how to name.
func literalTypeName(expr ast.Expression) (string, bool) {
	switch expr.(type) {
	case *ast.IntegerLiteral:
		return "Integer", true
	case *ast.FloatLiteral:
		return "Float", true
	case *ast.StringLiteral:
		return "String", true
	case *ast.BooleanLiteral:
		return "Boolean", true
	case *ast.CharLiteral:
		return "Char", true
	default:
		return "", false
	}
}

// inlayHintKindType returns the "Type" inlay hint kind (LSP value 1).
func inlayHintKindType() *protocol.InlayHintKind {
	kind := protocol.InlayHintKind(1)
	return &kind
}

func maxZeroInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
