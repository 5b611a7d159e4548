package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"minic/internal/errors"
	"minic/internal/parser"
)

// ConvertScanErrors turns lexical errors into LSP diagnostics.
func ConvertScanErrors(scanErrors []parser.ScanError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range scanErrors {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    oneCharRange(e.Position.Line, e.Position.Column),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("minic-scanner"),
			Message:  e.Message,
		})
	}
	return diagnostics
}

// ConvertParseErrors turns syntax errors into LSP diagnostics.
func ConvertParseErrors(parseErrors []parser.ParseError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range parseErrors {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    oneCharRange(e.Position.Line, e.Position.Column),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("minic-parser"),
			Message:  e.Message,
		})
	}
	return diagnostics
}

// ConvertLoweringErrors turns semantic/lowering errors into LSP
// diagnostics, mapping each errors.CompilerError's ErrorLevel to the
// matching LSP severity.
func ConvertLoweringErrors(compilerErrors []errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range compilerErrors {
		length := e.Length
		if length <= 0 {
			length = 1
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(e.Position.Line - 1),
					Character: uint32(e.Position.Column - 1),
				},
				End: protocol.Position{
					Line:      uint32(e.Position.Line - 1),
					Character: uint32(e.Position.Column - 1 + length),
				},
			},
			Severity: ptrSeverity(severityOf(e.Level)),
			Source:   ptrString("minic"),
			Message:  e.Code + ": " + e.Message,
		})
	}
	return diagnostics
}

func severityOf(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func oneCharRange(line, column int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line - 1), Character: uint32(column - 1)},
		End:   protocol.Position{Line: uint32(line - 1), Character: uint32(column)},
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
