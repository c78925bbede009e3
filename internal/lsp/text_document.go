// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/compile"
	"github.com/artic-lang/artic-lsp/internal/document"
	"github.com/artic-lang/artic-lsp/internal/server"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	// Get server instance
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Warning: server instance not available in DidOpen")
		return nil
	}

	// Extract document information
	uri := params.TextDocument.URI
	text := params.TextDocument.Text
	languageID := params.TextDocument.LanguageID
	version := int(params.TextDocument.Version)

	log.Printf("Document opened: %s (version %d, language %s, %d bytes)\n",
		uri, version, languageID, len(text))

	// Parse document and get diagnostics
	program, diagnostics, err := analysis.ParseDocument(text, uri)
	if err != nil {
		log.Printf("Error parsing document %s: %v", uri, err)
		// Still store the document even if parsing failed
		doc := &server.Document{
			URI:        uri,
			Text:       text,
			Version:    version,
			LanguageID: languageID,
			Program:    nil,
		}
		srv.Documents().Set(uri, doc)

		return nil
	}

	// Create document struct with compiled program
	doc := &server.Document{
		URI:        uri,
		Text:       text,
		Version:    version,
		LanguageID: languageID,
		Program:    program,
	}

	// Store document in DocumentStore
	srv.Documents().Set(uri, doc)

	if srv.Symbols() != nil {
		srv.Symbols().UpdateDocument(doc)
	}

	// Publish diagnostics to the client
	PublishDiagnostics(context, uri, diagnostics)

	// Trigger matrix (spec §4.5): "Source file opened, no current result OR
	// current result lacks this file -> rebuild for this file." This is what
	// surfaces diagnostics for files the project graph pulls in beyond the
	// one just opened.
	publishBuildDiagnostics(context, uri, onFileOpened(uri))

	return nil
}

// DidClose handles the textDocument/didClose notification.
// This is sent when a document is closed in the editor.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	// Get server instance
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Warning: server instance not available in DidClose")
		return nil
	}

	// Extract URI
	uri := params.TextDocument.URI

	// Remove document from store
	srv.Documents().Delete(uri)

	// Invalidate completion cache for this document
	if srv.CompletionCache() != nil {
		srv.CompletionCache().InvalidateDocument(uri)
		log.Printf("Invalidated completion cache for closed document: %s", uri)
	}

	// Invalidate semantic tokens cache for this document
	if SemanticTokensCache() != nil {
		SemanticTokensCache().InvalidateDocument(uri)
		log.Printf("Invalidated semantic tokens cache for closed document: %s", uri)
	}

	log.Printf("Document closed: %s\n", uri)

	// Send empty diagnostics to clear error markers in the editor
	// Only send notification if context is properly initialized (not in tests)
	if context != nil && context.Notify != nil {
		diagnosticsParams := &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		}
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, diagnosticsParams)
	}

	return nil
}

// DidChange handles the textDocument/didChange notification.
// This is sent when a document's content changes in the editor.
// It supports both full and incremental sync modes.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Get server instance
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Warning: server instance not available in DidChange")
		return nil
	}

	// Extract URI and version
	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	// Retrieve document from store
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Warning: Document not found for didChange: %s\n", uri)
		return nil
	}

	// Apply all content changes
	newText := doc.Text

	for i, changeInterface := range params.ContentChanges {
		// Type assert to TextDocumentContentChangeEvent
		change, ok := changeInterface.(protocol.TextDocumentContentChangeEvent)
		if !ok {
			log.Printf("Warning: Invalid content change type at index %d for %s\n", i, uri)
			continue
		}

		if change.Range == nil {
			// Full sync mode: replace entire document text
			newText = change.Text

			log.Printf("Document changed (full sync): %s (version %d, change %d/%d)\n",
				uri, version, i+1, len(params.ContentChanges))
		} else {
			// Incremental sync mode: apply diff
			updatedText, err := document.ApplyContentChange(newText, change)
			if err != nil {
				log.Printf("Error applying incremental change to %s: %v\n", uri, err)
				// Continue with unchanged text to avoid corruption
				continue
			}

			newText = updatedText

			log.Printf("Document changed (incremental): %s (version %d, change %d/%d)\n",
				uri, version, i+1, len(params.ContentChanges))
		}
	}

	// Parse the updated document and get diagnostics
	program, diagnostics, err := analysis.ParseDocument(newText, uri)
	if err != nil {
		log.Printf("Error parsing document %s after change: %v", uri, err)
		// Still update the document even if parsing failed
		program = nil
	}

	// Update document in store with new text and program
	updatedDoc := &server.Document{
		URI:        uri,
		Text:       newText,
		Version:    version,
		LanguageID: doc.LanguageID,
		Program:    program,
	}
	srv.Documents().Set(uri, updatedDoc)

	if srv.Symbols() != nil {
		srv.Symbols().UpdateDocument(updatedDoc)
	}

	// Invalidate completion cache for this document
	if srv.CompletionCache() != nil {
		srv.CompletionCache().InvalidateDocument(uri)
		log.Printf("Invalidated completion cache for %s", uri)
	}

	// Invalidate semantic tokens cache for this document
	if SemanticTokensCache() != nil {
		SemanticTokensCache().InvalidateDocument(uri)
		log.Printf("Invalidated semantic tokens cache for %s", uri)
	}

	// Publish updated diagnostics to the client
	PublishDiagnostics(context, uri, diagnostics)

	// Trigger matrix (spec §4.5): "Source file changed (full text sync) ->
	// store the new text on the File; rebuild for this file."
	publishBuildDiagnostics(context, uri, onFileChanged(uri, newText))

	return nil
}

// DidSave handles the textDocument/didSave notification. Per the trigger
// matrix (spec §4.5) a save is a no-op for the orchestrator: the file's
// in-memory text (from didOpen/didChange) is already authoritative.
func DidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Printf("Document saved: %s\n", uri)
	if orchestratorInstance != nil {
		if path, err := analysis.URIToPath(uri); err == nil {
			orchestratorInstance.OnFileSaved(path)
		}
	}
	return nil
}

// onFileOpened triggers the orchestrator's file-opened build, returning nil
// if there is no orchestrator wired or the URI can't be resolved to a path.
func onFileOpened(uri string) *compile.BuildResult {
	if orchestratorInstance == nil {
		return nil
	}
	path, err := analysis.URIToPath(uri)
	if err != nil {
		return nil
	}
	return orchestratorInstance.OnFileOpened(path)
}

// onFileChanged triggers the orchestrator's file-changed build.
func onFileChanged(uri, text string) *compile.BuildResult {
	if orchestratorInstance == nil {
		return nil
	}
	path, err := analysis.URIToPath(uri)
	if err != nil {
		return nil
	}
	return orchestratorInstance.OnFileChanged(path, text)
}

// publishBuildDiagnostics publishes every file's diagnostics from a build
// result. triggerURI's own diagnostics were already published by the
// caller from the single-document parse, so this only covers the other
// files the project graph pulled in; triggerURI is included too, which is
// harmless since the client replaces rather than accumulates per URI.
func publishBuildDiagnostics(context *glsp.Context, triggerURI string, result *compile.BuildResult) {
	if result == nil || result.Compilation == nil {
		return
	}
	for path, diags := range result.Compilation.Diagnostics {
		uri := analysis.PathToURI(path)
		if uri == triggerURI {
			continue
		}
		PublishDiagnostics(context, uri, diags)
	}
}
