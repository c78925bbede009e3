// Package lsp implements LSP protocol handlers.
package lsp

import (
	"fmt"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/server"
)

// DebugAST handles the custom artic/debugAst request (spec §4.6's
// [SUPPLEMENT]): given a document position, it reports the innermost AST
// node at that position as a single-line description. This is explicitly
// not a pretty-printer; it exists so the development client can sanity-check
// what the orchestrator actually parsed at a given location.
func DebugAST(context *glsp.Context, params *protocol.TextDocumentPositionParams) (*string, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Warning: server instance not available in DebugAST")
		return nil, nil
	}

	uri := params.TextDocument.URI
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found for debugAst: %s\n", uri)
		return nil, nil
	}

	program := doc.Program
	if orchestratorInstance != nil {
		if path, err := analysis.URIToPath(uri); err == nil {
			if compilation, _ := orchestratorInstance.EnsureForNavigation(path); compilation != nil {
				if cached, ok := compilation.Program(path); ok && cached != nil {
					program = cached
				}
			}
		}
	}
	if program == nil {
		log.Printf("No AST available for debugAst: %s\n", uri)
		return nil, nil
	}

	programAST := program.AST()
	if programAST == nil {
		return nil, nil
	}

	astLine := int(params.Position.Line) + 1
	astColumn := int(params.Position.Character) + 1

	node := analysis.FindNodeAtPosition(programAST, astLine, astColumn)
	if node == nil {
		return nil, nil
	}

	start := node.Pos()
	end := node.End()
	description := fmt.Sprintf("%T [%d:%d-%d:%d]", node, start.Line, start.Column, end.Line, end.Column)
	return &description, nil
}
