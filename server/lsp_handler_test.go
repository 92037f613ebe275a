package server

import (
	"strings"
	"testing"

	"github.com/markuplab/playground/internal/util"
	"github.com/markuplab/playground/markup/completion"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func newTestHandler(t *testing.T) *GLSPHandler {
	t.Helper()
	srv, err := New(createTestConfig(t), 0)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(srv.cancel)
	return NewGLSPHandler(srv)
}

func TestGLSPHandlerInitialize(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.Initialize(nil, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	initResult, ok := result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("Expected InitializeResult, got %T", result)
	}

	cp := initResult.Capabilities.CompletionProvider
	if cp == nil {
		t.Fatal("Expected completion provider capability")
	}

	triggers := strings.Join(cp.TriggerCharacters, "")
	for _, want := range []string{".", "#", "!"} {
		if !strings.Contains(triggers, want) {
			t.Errorf("Expected trigger character %q, got %q", want, triggers)
		}
	}
}

func TestGLSPHandlerDocumentLifecycle(t *testing.T) {
	h := newTestHandler(t)

	uri := protocol.DocumentUri("file:///lesson.html")

	err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "<p>one</p>"},
	})
	if err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}

	h.mu.RLock()
	got := h.documents[string(uri)]
	h.mu.RUnlock()
	if got != "<p>one</p>" {
		t.Errorf("Expected cached document, got %q", got)
	}

	err = h.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEventWhole{Text: "<p>two</p>"},
		},
	})
	if err != nil {
		t.Fatalf("DidChange failed: %v", err)
	}

	h.mu.RLock()
	got = h.documents[string(uri)]
	h.mu.RUnlock()
	if got != "<p>two</p>" {
		t.Errorf("Expected replaced document, got %q", got)
	}

	err = h.TextDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("DidClose failed: %v", err)
	}

	h.mu.RLock()
	_, exists := h.documents[string(uri)]
	h.mu.RUnlock()
	if exists {
		t.Error("Expected document to be evicted after DidClose")
	}
}

func TestGLSPHandlerDocumentCacheLimit(t *testing.T) {
	h := newTestHandler(t)
	h.server.cfg.Server.MaxDocuments = 2

	for _, uri := range []string{"file:///a.html", "file:///b.html"} {
		err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{URI: protocol.DocumentUri(uri)},
		})
		if err != nil {
			t.Fatalf("DidOpen %s failed: %v", uri, err)
		}
	}

	err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///c.html"},
	})
	if err == nil {
		t.Fatal("Expected error when exceeding document cache limit")
	}

	// Re-opening a cached document is not a new entry and must succeed
	err = h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///a.html"},
	})
	if err != nil {
		t.Fatalf("Re-opening cached document failed: %v", err)
	}

	// A change for a never-opened document cannot sneak past the bound
	err = h.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///d.html"},
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEventWhole{Text: "<p>sneak</p>"},
		},
	})
	if err == nil {
		t.Fatal("Expected error for didChange on an unopened document at the cache limit")
	}

	// Changes to cached documents are unaffected by the bound
	err = h.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.html"},
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEventWhole{Text: "<p>update</p>"},
		},
	})
	if err != nil {
		t.Fatalf("didChange for cached document failed: %v", err)
	}
}

func TestGLSPHandlerCompletionClassShorthand(t *testing.T) {
	h := newTestHandler(t)

	uri := protocol.DocumentUri("file:///lesson.html")
	err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "foo.bar"},
	})
	if err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}

	result, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 7},
		},
		Context: &protocol.CompletionContext{
			TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
			TriggerCharacter: util.Ptr("."),
		},
	})
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	items, ok := result.([]protocol.CompletionItem)
	if !ok {
		t.Fatalf("Expected []CompletionItem, got %T", result)
	}
	if len(items) == 0 {
		t.Fatal("Expected completion items")
	}

	first := items[0]
	if first.Label != ".bar" {
		t.Errorf("Expected shorthand item .bar first, got %q", first.Label)
	}
	if first.InsertText == nil || *first.InsertText != `<div class="bar">$0</div>` {
		t.Errorf("Unexpected insert text: %v", first.InsertText)
	}
	if first.InsertTextFormat == nil || *first.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Error("Expected snippet insert format")
	}

	edit, ok := first.TextEdit.(*protocol.TextEdit)
	if !ok {
		t.Fatalf("Expected *TextEdit, got %T", first.TextEdit)
	}
	if edit.Range.Start.Character != 3 || edit.Range.End.Character != 7 {
		t.Errorf("Expected 0-based edit range [3,7), got [%d,%d)",
			edit.Range.Start.Character, edit.Range.End.Character)
	}
}

func TestGLSPHandlerCompletionUnknownDocument(t *testing.T) {
	h := newTestHandler(t)

	// Completion against a URI that was never opened runs on an empty
	// snapshot: vocabulary items only, no panic.
	result, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.html"},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	items := result.([]protocol.CompletionItem)
	if len(items) == 0 {
		t.Fatal("Expected vocabulary items for an empty document")
	}
	for _, item := range items {
		if strings.HasPrefix(item.Label, ".") || strings.HasPrefix(item.Label, "#") || item.Label == "!" {
			t.Errorf("Unexpected shorthand item %q without a trigger", item.Label)
		}
	}
}

func TestGLSPHandlerCompletionBoilerplate(t *testing.T) {
	h := newTestHandler(t)

	uri := protocol.DocumentUri("file:///blank.html")
	err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "!"},
	})
	if err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}

	result, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 1},
		},
		Context: &protocol.CompletionContext{
			TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
			TriggerCharacter: util.Ptr("!"),
		},
	})
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	items := result.([]protocol.CompletionItem)
	if len(items) == 0 {
		t.Fatal("Expected completion items")
	}

	first := items[0]
	if first.Label != "!" {
		t.Fatalf("Expected boilerplate item first, got %q", first.Label)
	}
	if first.InsertText == nil || !strings.HasPrefix(*first.InsertText, "<!DOCTYPE html>") {
		t.Error("Expected boilerplate insert text to start with doctype")
	}
	if first.Kind == nil || *first.Kind != protocol.CompletionItemKindSnippet {
		t.Error("Expected snippet kind for boilerplate")
	}
}

func TestTriggerFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  *protocol.CompletionContext
		want completion.Trigger
	}{
		{"nil context", nil, completion.TriggerNone},
		{
			"manual invocation",
			&protocol.CompletionContext{TriggerKind: protocol.CompletionTriggerKindInvoked},
			completion.TriggerNone,
		},
		{
			"class trigger",
			&protocol.CompletionContext{
				TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
				TriggerCharacter: util.Ptr("."),
			},
			completion.TriggerClass,
		},
		{
			"id trigger",
			&protocol.CompletionContext{
				TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
				TriggerCharacter: util.Ptr("#"),
			},
			completion.TriggerID,
		},
		{
			"boilerplate trigger",
			&protocol.CompletionContext{
				TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
				TriggerCharacter: util.Ptr("!"),
			},
			completion.TriggerBoilerplate,
		},
		{
			"unknown character",
			&protocol.CompletionContext{
				TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
				TriggerCharacter: util.Ptr("@"),
			},
			completion.TriggerNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := triggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("Expected trigger %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompletionKind(t *testing.T) {
	if completionKind(".card") != protocol.CompletionItemKindSnippet {
		t.Error("Expected snippet kind for class shorthand")
	}
	if completionKind("#main") != protocol.CompletionItemKindSnippet {
		t.Error("Expected snippet kind for id shorthand")
	}
	if completionKind("!") != protocol.CompletionItemKindSnippet {
		t.Error("Expected snippet kind for boilerplate")
	}
	if completionKind("div") != protocol.CompletionItemKindProperty {
		t.Error("Expected property kind for tag names")
	}
}
