// Package server provides the core LSP server state and management.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Server holds the state of the LSP server.
//
// The workspace resolver, compile orchestrator (spec §4.4/§4.5), and semantic
// tokens legend/cache are deliberately NOT fields here: internal/compile and
// the semantic tokens types live in internal/analysis, which itself depends
// on this package for document and completion-cache types, so owning them
// here would close an import cycle. They are wired at the internal/lsp /
// cmd/articlsp level instead and handed to handlers alongside the *Server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// symbolIndex caches references for workspace documents (even when not open)
	symbolIndex *SymbolIndex

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []string

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	// completionCache caches completion items for performance
	completionCache *CompletionCache

	// config holds server configuration
	config *Config

	// mutex protects server state
	mu sync.RWMutex

	// shutting down flag
	shuttingDown bool
}

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics reported
	MaxProblems int

	// Trace controls logging verbosity
	Trace string

	// RestartFromCrash is set from the initialize request's restartFromCrash
	// option (spec §5/§6) and puts the orchestrator into safe mode for its
	// first build.
	RestartFromCrash bool
}

// New creates a new LSP server instance.
func New() *Server {
	return &Server{
		documents:       NewDocumentStore(),
		symbolIndex:     NewSymbolIndex(),
		completionCache: NewCompletionCache(),
		config: &Config{
			MaxProblems: 100,
			Trace:       "off",
		},
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Symbols returns the workspace symbol index.
func (s *Server) Symbols() *SymbolIndex {
	return s.symbolIndex
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig updates the server configuration atomically.
// The update function is called with the current config under a write lock.
func (s *Server) UpdateConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.config)
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceFolders
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SupportsSnippets returns true if the client supports snippet completions.
func (s *Server) SupportsSnippets() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.clientCapabilities == nil {
		return false
	}

	if s.clientCapabilities.TextDocument == nil {
		return false
	}

	if s.clientCapabilities.TextDocument.Completion == nil {
		return false
	}

	if s.clientCapabilities.TextDocument.Completion.CompletionItem == nil {
		return false
	}

	if s.clientCapabilities.TextDocument.Completion.CompletionItem.SnippetSupport == nil {
		return false
	}

	return *s.clientCapabilities.TextDocument.Completion.CompletionItem.SnippetSupport
}

// CompletionCache returns the completion cache.
func (s *Server) CompletionCache() *CompletionCache {
	return s.completionCache
}
