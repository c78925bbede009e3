package compile

import (
	"strings"

	"github.com/artic-lang/artic-lsp/internal/arena"
	"github.com/artic-lang/artic-lsp/internal/document"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ConfigDiagnostics converts a ConfigLog's messages for path into LSP
// diagnostics by locating the logged literal's occurrence in the config
// file's text (spec §4.5 "diagnostic routing"). A message with no literal,
// or whose literal cannot be found verbatim, is anchored at the document
// start rather than dropped, since the config parser's errors are still
// actionable even without a precise range.
func ConfigDiagnostics(path, text string, log *arena.ConfigLog) []protocol.Diagnostic {
	var diags []protocol.Diagnostic
	for _, msg := range log.ForFile(path) {
		diags = append(diags, configDiagnostic(text, msg))
	}
	return diags
}

func configDiagnostic(text string, msg arena.LogMessage) protocol.Diagnostic {
	sev := severityToLSP(msg.Severity)
	literal := ""
	if msg.Context != nil {
		literal = msg.Context.Literal
	}
	rng := literalRange(text, literal)
	return protocol.Diagnostic{
		Range:    rng,
		Severity: &sev,
		Source:   stringPtr("artic-config"),
		Message:  msg.Message,
	}
}

func literalRange(text, literal string) protocol.Range {
	if literal == "" {
		return protocol.Range{}
	}
	idx := strings.Index(text, literal)
	if idx < 0 {
		return protocol.Range{}
	}

	startLine, startChar, err := document.OffsetToPosition(text, idx)
	if err != nil {
		return protocol.Range{}
	}
	endLine, endChar, err := document.OffsetToPosition(text, idx+len(literal))
	if err != nil {
		return protocol.Range{Start: protocol.Position{Line: uint32(startLine), Character: uint32(startChar)}}
	}

	return protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(startChar)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endChar)},
	}
}

func severityToLSP(sev arena.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case arena.SeverityError:
		return protocol.DiagnosticSeverityError
	case arena.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func stringPtr(s string) *string { return &s }
