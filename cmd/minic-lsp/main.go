// Command minic-lsp runs the diagnostics-only MiniC language server over
// stdio, adapted from the teacher's cmd/kanso-lsp bootstrap (commonlog
// configuration + glsp server.NewServer + RunStdio).
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"minic/internal/lsp"
)

const serverName = "minic-lsp"

var version = "0.1.0"

func main() {
	commonlog.Configure(1, nil)

	h := lsp.NewHandler()
	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, serverName, false)

	log.Println("starting minic-lsp server...")
	if err := s.RunStdio(); err != nil {
		log.Println("minic-lsp server error:", err)
		os.Exit(1)
	}
}
