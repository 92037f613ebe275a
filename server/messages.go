package server

import "github.com/markuplab/playground/markup/completion"

// ClientMessage is the inbound playground protocol envelope.
type ClientMessage struct {
	Type string `json:"type"`
	// Text carries the editor buffer's full contents (edit) or the
	// document snapshot (completion_request).
	Text string `json:"text,omitempty"`
	// Line and Column are the 1-based cursor position for completion.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
	// Trigger is the character that invoked completion: ".", "#", "!",
	// or empty for plain identifier completion.
	Trigger string `json:"trigger,omitempty"`
}

// PreviewUpdateMessage pushes the latest shared-store value to the
// preview pane.
type PreviewUpdateMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// CompletionResponseMessage answers a completion_request over the plain
// JSON protocol (non-LSP clients).
type CompletionResponseMessage struct {
	Type       string                 `json:"type"`
	Candidates []completion.Candidate `json:"candidates"`
	Timestamp  int64                  `json:"timestamp"`
}

// ErrorMessage reports a client-visible protocol error.
type ErrorMessage struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}
