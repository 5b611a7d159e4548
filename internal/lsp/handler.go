// Package lsp implements a diagnostics-only Language Server Protocol
// server over the compiler's front end, adapted from the teacher's
// internal/lsp package (tliron/glsp + tliron/commonlog). Unlike the
// teacher's server, this one drops semantic-token/completion support:
// MiniC has no editor-facing features beyond "is this file valid", so the
// handler only ever republishes diagnostics on open/change; close just
// drops the document's cached text.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"minic/internal/lower"
	"minic/internal/parser"
)

// Handler implements glsp's protocol.Handler methods for MiniC. Like the
// teacher's KansoHandler, it re-reads each document from disk on
// open/change rather than tracking editor-sent deltas, and republishes
// diagnostics every time.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: map[string]string{}}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("minic-lsp Initialize called")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("minic-lsp initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("minic-lsp shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.publishDiagnostics(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return h.publishDiagnostics(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// publishDiagnostics reruns the front end over the document's current
// on-disk text and sends every scan/parse/lowering problem found, or an
// empty diagnostics list to clear a document that is now clean.
func (h *Handler) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	h.mu.Lock()
	h.content[path] = string(source)
	h.mu.Unlock()

	unit, scanErrs, parseErrs := parser.ParseSource(path, string(source))
	var diagnostics []protocol.Diagnostic
	diagnostics = append(diagnostics, ConvertScanErrors(scanErrs)...)
	diagnostics = append(diagnostics, ConvertParseErrors(parseErrs)...)

	if len(scanErrs) == 0 && len(parseErrs) == 0 {
		_, lowerErrs := lower.LowerProgram(unit)
		diagnostics = append(diagnostics, ConvertLoweringErrors(lowerErrs)...)
	}

	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
