package server

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/markuplab/playground/errors"
	"github.com/markuplab/playground/internal/util"
	"github.com/markuplab/playground/markup/completion"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

// GLSPHandler implements LSP protocol handlers for the browser editor.
// It is the ports-and-adapters boundary: LSP's 0-based UTF positions and
// range objects are translated into the engine's 1-based line/column data
// model here, keeping the engine free of any editor vocabulary.
type GLSPHandler struct {
	server    *PlaygroundServer
	documents map[string]string // URI → document content cache
	mu        sync.RWMutex
}

// NewGLSPHandler creates a new GLSP handler bound to the server.
func NewGLSPHandler(server *PlaygroundServer) *GLSPHandler {
	return &GLSPHandler{
		server:    server,
		documents: make(map[string]string),
	}
}

// Initialize handles the LSP initialize request.
func (h *GLSPHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.server.logger.Infow("LSP client initializing",
		"client", params.ClientInfo,
	)

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", "#", "!"},
		},
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: util.Ptr(true),
			Change:    &syncKind,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "Markup Playground Language Server",
			Version: util.Ptr("0.1.0"),
		},
	}, nil
}

// Initialized is called after the client receives InitializeResult.
func (h *GLSPHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.server.logger.Infow("LSP client initialized successfully")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *GLSPHandler) Shutdown(ctx *glsp.Context) error {
	h.server.logger.Infow("LSP client shutting down")
	return nil
}

// TextDocumentDidOpen handles document open notifications.
func (h *GLSPHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)

	// Enforce document cache bounds to prevent memory exhaustion.
	// Skip this check if the document already exists (re-opening).
	if _, exists := h.documents[uri]; !exists {
		if max := h.server.cfg.Server.MaxDocuments; len(h.documents) >= max {
			h.server.logger.Warnw("Document cache limit reached, rejecting new document",
				"uri", uri,
				"current_count", len(h.documents),
				"max_allowed", max,
			)
			return errors.Newf("document cache limit reached (%d documents open)", max)
		}
	}

	h.documents[uri] = params.TextDocument.Text

	h.server.logger.Debugw("Document opened",
		"uri", uri,
		"length", len(params.TextDocument.Text),
		"total_documents", len(h.documents),
	)

	return nil
}

// TextDocumentDidChange handles document change notifications.
func (h *GLSPHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)

	// A change for a never-opened document would grow the cache past the
	// didOpen bound, so it is subject to the same limit.
	if _, exists := h.documents[uri]; !exists {
		if max := h.server.cfg.Server.MaxDocuments; len(h.documents) >= max {
			h.server.logger.Warnw("Document cache limit reached, rejecting change for unopened document",
				"uri", uri,
				"current_count", len(h.documents),
				"max_allowed", max,
			)
			return errors.Newf("document cache limit reached (%d documents open)", max)
		}
	}

	// Full document sync - just replace content
	for _, change := range params.ContentChanges {
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.documents[uri] = textChange.Text
		}
	}

	h.server.logger.Debugw("Document changed",
		"uri", uri,
		"changes", len(params.ContentChanges),
	)

	return nil
}

// TextDocumentDidClose handles document close notifications.
func (h *GLSPHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	delete(h.documents, uri)

	h.server.logger.Debugw("Document closed", "uri", uri)

	return nil
}

// TextDocumentCompletion runs the abbreviation engine on the cached
// document snapshot and converts candidates to LSP completion items.
func (h *GLSPHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	// Panic recovery: if completion logic panics, return an empty list
	// instead of crashing the connection.
	defer func() {
		if r := recover(); r != nil {
			h.server.logger.Errorw("Panic in completion handler",
				"panic", r,
				"uri", params.TextDocument.URI,
			)
			result = []protocol.CompletionItem{}
			err = nil
		}
	}()

	h.mu.RLock()
	uri := string(params.TextDocument.URI)
	document := h.documents[uri]
	h.mu.RUnlock()

	// LSP positions are 0-based; the engine's are 1-based.
	pos := completion.Position{
		Line:   int(params.Position.Line) + 1,
		Column: int(params.Position.Character) + 1,
	}
	trigger := triggerFromContext(params.Context)

	h.server.logger.Debugw("LSP completion",
		"uri", uri,
		"line", pos.Line,
		"column", pos.Column,
		"trigger", string(trigger),
		"document_length", len(document),
	)

	candidates := h.server.currentEngine().Complete(document, pos, trigger)

	items := make([]protocol.CompletionItem, len(candidates))
	for i, candidate := range candidates {
		items[i] = toCompletionItem(candidate, pos.Line)
	}

	h.server.logger.Debugw("LSP completion result", "count", len(items))

	return items, nil
}

// triggerFromContext extracts the engine trigger from the LSP completion
// context. Manual invocations and unknown characters fall back to plain
// identifier completion.
func triggerFromContext(ctx *protocol.CompletionContext) completion.Trigger {
	if ctx == nil || ctx.TriggerKind != protocol.CompletionTriggerKindTriggerCharacter || ctx.TriggerCharacter == nil {
		return completion.TriggerNone
	}

	switch *ctx.TriggerCharacter {
	case ".":
		return completion.TriggerClass
	case "#":
		return completion.TriggerID
	case "!":
		return completion.TriggerBoilerplate
	default:
		return completion.TriggerNone
	}
}

// toCompletionItem converts an engine candidate into an LSP item. The
// replacement range is carried as a TextEdit; the cursor marker rides on
// snippet insert format so the editor places the caret itself.
func toCompletionItem(candidate completion.Candidate, line int) protocol.CompletionItem {
	editRange := protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(line - 1),
			Character: protocol.UInteger(candidate.ReplaceRange.StartColumn - 1),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(line - 1),
			Character: protocol.UInteger(candidate.ReplaceRange.EndColumn - 1),
		},
	}

	return protocol.CompletionItem{
		Label:            candidate.Label,
		Kind:             util.Ptr(completionKind(candidate.Label)),
		InsertText:       util.Ptr(candidate.InsertText),
		InsertTextFormat: util.Ptr(protocol.InsertTextFormatSnippet),
		TextEdit: &protocol.TextEdit{
			Range:   editRange,
			NewText: candidate.InsertText,
		},
	}
}

// completionKind maps candidate labels to LSP item kinds: shorthand and
// boilerplate expansions present as snippets, tag names as properties.
func completionKind(label string) protocol.CompletionItemKind {
	if label == "!" || strings.HasPrefix(label, ".") || strings.HasPrefix(label, "#") {
		return protocol.CompletionItemKindSnippet
	}
	return protocol.CompletionItemKindProperty
}

// WebSocket upgrader for the LSP endpoint — same origin check as all
// other endpoints.
var lspUpgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// HandleLSPWebSocket upgrades HTTP to WebSocket and serves LSP protocol.
func (s *PlaygroundServer) HandleLSPWebSocket(w http.ResponseWriter, r *http.Request) {
	s.logger.Infow("LSP WebSocket connection request", "remote", r.RemoteAddr)

	conn, err := lspUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Failed to upgrade WebSocket", "error", err)
		return
	}

	glspHandler := NewGLSPHandler(s)

	protocolHandler := protocol.Handler{
		Initialize:             glspHandler.Initialize,
		Initialized:            glspHandler.Initialized,
		Shutdown:               glspHandler.Shutdown,
		TextDocumentDidOpen:    glspHandler.TextDocumentDidOpen,
		TextDocumentDidChange:  glspHandler.TextDocumentDidChange,
		TextDocumentDidClose:   glspHandler.TextDocumentDidClose,
		TextDocumentCompletion: glspHandler.TextDocumentCompletion,
	}

	glspServer := glspserver.NewServer(&protocolHandler, "Markup Playground Language Server", false)

	s.logger.Infow("Serving LSP over WebSocket", "remote", r.RemoteAddr)

	// Blocks until the connection closes.
	glspServer.ServeWebSocket(conn)

	s.logger.Infow("LSP WebSocket connection closed", "remote", r.RemoteAddr)
}
