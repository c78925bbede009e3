// Package lsp implements LSP protocol handlers. Each handler is a stateless
// function over the orchestrator's public operations (spec §4.6); this file
// is where they are assembled into the glsp.Handler the server dispatches
// requests through.
package lsp

import (
	"encoding/json"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// debugASTMethod is the custom JSON-RPC method spec §4.6 adds on top of the
// standard LSP surface: TextDocumentPositionParams in, a string (or null)
// out.
const debugASTMethod = "artic/debugAst"

// NewHandler assembles the protocol.Handler wiring every registered request
// and notification to its internal/lsp function, then wraps it so that the
// non-standard debugASTMethod is also dispatched. protocol.Handler itself
// only recognizes the fixed set of methods the LSP spec defines, so the
// custom method needs this extra layer rather than a struct field.
func NewHandler() glsp.Handler {
	handler := protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    func(context *glsp.Context, params *protocol.SetTraceParams) error { return nil },

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidSave:   DidSave,
		TextDocumentDidClose:  DidClose,

		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:     DidChangeWatchedFiles,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,

		TextDocumentDefinition:         Definition,
		TextDocumentReferences:         References,
		TextDocumentPrepareRename:      PrepareRename,
		TextDocumentRename:             Rename,
		TextDocumentCompletion:         Completion,
		TextDocumentSemanticTokensFull:  SemanticTokensFull,
		TextDocumentSemanticTokensRange: SemanticTokensRange,
		TextDocumentInlayHint:           InlayHint,
	}

	return &debugASTHandler{Handler: handler}
}

// debugASTHandler embeds the generated protocol.Handler and intercepts
// debugASTMethod before delegating everything else to it. This is the one
// place in the codebase that reaches past protocol.Handler's typed fields
// for an LSP method it has no field for (see DESIGN.md).
type debugASTHandler struct {
	protocol.Handler
}

func (h *debugASTHandler) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if context.Method != debugASTMethod {
		return h.Handler.Handle(context)
	}

	var params protocol.TextDocumentPositionParams
	if err := json.Unmarshal(context.Params, &params); err != nil {
		log.Printf("debugAst: invalid params: %v", err)
		return nil, true, false, err
	}

	result, err := DebugAST(context, &params)
	return result, true, true, err
}
