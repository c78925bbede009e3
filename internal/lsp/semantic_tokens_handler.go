// Package lsp implements semantic tokens LSP handler.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/artic-lang/artic-lsp/internal/analysis"
	"github.com/artic-lang/artic-lsp/internal/server"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// It returns semantic highlighting information for the entire document.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Printf("SemanticTokensFull request for: %s\n", params.TextDocument.URI)

	// Get server instance
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Error: server instance not available")
		return nil, nil
	}

	// Get document from store
	doc, ok := srv.Documents().Get(string(params.TextDocument.URI))
	if !ok || doc == nil {
		log.Printf("Document not found: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	// Check if document has a valid program
	program := doc.Program
	if program == nil {
		log.Printf("Document has no program: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	// Get the AST
	ast := program.AST()
	if ast == nil {
		log.Printf("Document AST is nil: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	// Get the semantic tokens legend
	legend := SemanticTokensLegend()
	if legend == nil {
		log.Println("Error: semantic tokens legend not available")
		return nil, nil
	}

	// Collect semantic tokens from AST
	tokens, err := analysis.CollectSemanticTokens(ast, legend)
	if err != nil {
		log.Printf("Error collecting semantic tokens: %v\n", err)
		return nil, nil
	}

	// Encode tokens in LSP delta format
	data := analysis.EncodeSemanticTokens(tokens)

	log.Printf("Collected %d semantic tokens for %s\n", len(tokens), params.TextDocument.URI)

	// Return semantic tokens response
	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

// SemanticTokensRange handles textDocument/semanticTokens/range requests.
// It returns semantic highlighting information restricted to the requested
// range, reusing the same collector as the full-document request and
// filtering its output (spec §6: "semantic tokens (full + range)").
func SemanticTokensRange(context *glsp.Context, params *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	log.Printf("SemanticTokensRange request for: %s\n", params.TextDocument.URI)

	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Println("Error: server instance not available")
		return nil, nil
	}

	doc, ok := srv.Documents().Get(string(params.TextDocument.URI))
	if !ok || doc == nil {
		log.Printf("Document not found: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	program := doc.Program
	if program == nil {
		log.Printf("Document has no program: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	ast := program.AST()
	if ast == nil {
		log.Printf("Document AST is nil: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	legend := SemanticTokensLegend()
	if legend == nil {
		log.Println("Error: semantic tokens legend not available")
		return nil, nil
	}

	tokens, err := analysis.CollectSemanticTokens(ast, legend)
	if err != nil {
		log.Printf("Error collecting semantic tokens: %v\n", err)
		return nil, nil
	}

	tokens = filterTokensByRange(tokens, params.Range)
	data := analysis.EncodeSemanticTokens(tokens)

	log.Printf("Collected %d semantic tokens in range for %s\n", len(tokens), params.TextDocument.URI)

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

// filterTokensByRange keeps only the tokens whose start line falls within
// rng, matching the teacher's (and upstream LSP clients') convention that
// semanticTokens/range is a line-granular filter over the full collection.
func filterTokensByRange(tokens []analysis.SemanticToken, rng protocol.Range) []analysis.SemanticToken {
	filtered := make([]analysis.SemanticToken, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Line < rng.Start.Line || tok.Line > rng.End.Line {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}
