// Package lsp implements LSP protocol handlers.
package lsp

import (
	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/compile"
	"github.com/artic-lang/artic-lsp/internal/server"
	"github.com/artic-lang/artic-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance interface{}

	// resolverInstance and orchestratorInstance hold the workspace config/project
	// resolver and compile orchestrator (spec §4.4/§4.5). They live here rather
	// than on *server.Server because internal/compile depends on
	// internal/analysis, which depends on internal/server for document and
	// completion-cache types; owning compile/analysis state on *server.Server
	// would close that into a cycle.
	resolverInstance     *workspace.Resolver
	orchestratorInstance *compile.Orchestrator

	// semanticTokensLegend and semanticTokensCache live here for the same
	// reason: both types are defined in internal/analysis.
	semanticTokensLegend *analysis.SemanticTokensLegend
	semanticTokensCache  *analysis.SemanticTokensCache
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv interface{}) {
	serverInstance = srv
}

// SetWorkspace wires the workspace resolver and compile orchestrator used by
// handlers that need the project graph or a compilation result.
func SetWorkspace(resolver *workspace.Resolver, orchestrator *compile.Orchestrator) {
	resolverInstance = resolver
	orchestratorInstance = orchestrator
}

// Resolver returns the process-wide workspace config/project resolver.
func Resolver() *workspace.Resolver {
	return resolverInstance
}

// Orchestrator returns the process-wide compile orchestrator.
func Orchestrator() *compile.Orchestrator {
	return orchestratorInstance
}

// SemanticTokensLegend returns the process-wide semantic tokens legend,
// initializing it on first use.
func SemanticTokensLegend() *analysis.SemanticTokensLegend {
	if semanticTokensLegend == nil {
		semanticTokensLegend = analysis.NewSemanticTokensLegend()
	}
	return semanticTokensLegend
}

// SemanticTokensCache returns the process-wide semantic tokens delta cache,
// initializing it on first use.
func SemanticTokensCache() *analysis.SemanticTokensCache {
	if semanticTokensCache == nil {
		semanticTokensCache = analysis.NewSemanticTokensCache()
	}
	return semanticTokensCache
}

// restartFromCrash extracts the restartFromCrash initialization option
// (spec §6) from the client's freeform initializationOptions payload.
func restartFromCrash(opts interface{}) bool {
	m, ok := opts.(map[string]interface{})
	if !ok {
		return false
	}
	v, ok := m["restartFromCrash"].(bool)
	return ok && v
}

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	if srv, ok := serverInstance.(*server.Server); ok && srv != nil {
		srv.SetClientCapabilities(&params.Capabilities)

		if params.WorkspaceFolders != nil {
			folders := make([]string, 0, len(*params.WorkspaceFolders))
			for _, f := range *params.WorkspaceFolders {
				folders = append(folders, string(f.URI))
			}
			srv.SetWorkspaceFolders(folders)
		} else if params.RootURI != nil {
			srv.SetWorkspaceFolders([]string{*params.RootURI})
		}

		srv.UpdateConfig(func(cfg *server.Config) {
			cfg.RestartFromCrash = restartFromCrash(params.InitializationOptions)
		})
		if orchestratorInstance != nil && srv.Config().RestartFromCrash {
			orchestratorInstance.SetSafeMode(true)
		}
	}

	// Build server capabilities. Full document sync only (spec §4.5's trigger
	// matrix covers "source file changed (full text sync)" and §6's capability
	// advertisement omits incremental sync).
	changeKind := protocol.TextDocumentSyncKindFull
	trueVal := true
	falseVal := false

	// Hover, signature help, document/workspace symbols, and code actions are
	// dropped: spec.md §6's capability list omits them, matching
	// original_source/artic-lsp/src/server.cpp's own registered capabilities.
	capabilities := protocol.ServerCapabilities{
		// Text document synchronization
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &falseVal,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		// Go-to definition support
		DefinitionProvider: &[]bool{true}[0],

		// Find references support
		ReferencesProvider: &[]bool{true}[0],

		// Code completion
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", ":"}, // Member access triggers
			ResolveProvider:   &[]bool{false}[0],   // Don't use lazy resolution for now
		},

		// Rename support
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &[]bool{true}[0],
		},

		// Semantic tokens (semantic highlighting)
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: SemanticTokensLegend().ToProtocolLegend(),
			Full:   &[]bool{true}[0],
			Range:  &[]bool{true}[0],
		},

		// Inlay hints
		InlayHintProvider: &[]bool{true}[0],

		// Diagnostics (we'll push these, not pull)
		// DiagnosticProvider is not set - we use publishDiagnostics
	}

	// Build and return InitializeResult
	serverVersion := "0.1.0"

	result := protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "artic-lsp",
			Version: &serverVersion,
		},
	}

	return result, nil
}

// Initialized handles the initialized notification from the client.
// This is sent after the initialize response, signaling that the client is ready.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	// TODO: Trigger workspace indexing here
	// TODO: Start background tasks (if any)

	return nil
}

// Shutdown handles the shutdown request.
// The client sends this to ask the server to shut down gracefully.
func Shutdown(context *glsp.Context) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		return nil
	}

	srv.SetShuttingDown()
	srv.Documents().Clear()
	srv.CompletionCache().Clear()
	SemanticTokensCache().Clear()
	if orchestratorInstance != nil {
		orchestratorInstance.Invalidate()
	}

	return nil
}
