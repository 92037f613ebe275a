// Package completion implements the playground's abbreviation engine for
// HTML-like documents. Given a document snapshot and a cursor position it
// decides what the user is invoking — a class shorthand (`.card`), an id
// shorthand (`#main`), the document boilerplate trigger (`!`), or a plain
// tag name — and produces the literal replacement text plus the column
// range to replace.
//
// The engine is deliberately editor-agnostic: it knows nothing about LSP
// positions, WebSocket messages, or the browser editor. Host adapters
// translate their native cursor/range types into this package's data model.
package completion

import (
	"regexp"
	"strings"
)

// CursorMarker is the placeholder embedded in InsertText where the host
// editor should place the cursor after splicing a candidate into the buffer.
// It follows the LSP snippet syntax so snippet-aware editors can consume
// insert texts unchanged.
const CursorMarker = "$0"

// Trigger identifies which abbreviation the user is invoking.
// Exactly one trigger is active per completion request.
type Trigger string

const (
	// TriggerNone is a plain identifier completion from the vocabulary table.
	TriggerNone Trigger = ""
	// TriggerClass is the `.` class shorthand.
	TriggerClass Trigger = "."
	// TriggerID is the `#` id shorthand.
	TriggerID Trigger = "#"
	// TriggerBoilerplate is the `!` full-document skeleton.
	TriggerBoilerplate Trigger = "!"
)

// Position is a 1-based (line, column) cursor location. It is only valid
// relative to the document snapshot it was taken with.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open [StartColumn, EndColumn) span on the current line,
// with 1-based columns. StartColumn <= EndColumn always holds, and both
// ends lie within the bounds of the current line.
type Range struct {
	StartColumn int `json:"start_column"`
	EndColumn   int `json:"end_column"`
}

// Candidate is one replacement the user may accept. InsertText is the
// literal text to substitute for ReplaceRange on the current line; it may
// contain a single CursorMarker.
type Candidate struct {
	Label        string `json:"label"`
	InsertText   string `json:"insert_text"`
	ReplaceRange Range  `json:"replace_range"`
}

// shorthandPattern matches a class/id abbreviation looking backward from
// the cursor on the current line: a sigil followed by an identifier run,
// anchored at the end of the scanned prefix. An empty identifier is a
// valid capture (typing `.` and immediately completing is allowed).
//
// Single-line and unescaped by design: the shorthand never spans lines and
// escape sequences inside the identifier are not recognized.
var shorthandPattern = regexp.MustCompile(`([.#])([A-Za-z0-9_-]*)$`)

// boilerplateSkeleton is the fixed insert text for the `!` trigger. It is
// a template, never computed from the surrounding document.
const boilerplateSkeleton = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title></title>
</head>
<body>
	` + CursorMarker + `
</body>
</html>`

// Engine produces candidates from document snapshots. It is a pure,
// synchronous computation over the current line and the tag vocabulary —
// it never scans the whole document and never returns an error: malformed
// positions are clamped and unmatched shorthands simply yield fewer
// candidates.
type Engine struct {
	tags []string
}

// NewEngine creates an engine over the given tag vocabulary. The slice is
// copied; the engine treats the vocabulary as read-only and emits tag
// candidates in the order given.
func NewEngine(tags []string) *Engine {
	owned := make([]string, len(tags))
	copy(owned, tags)
	return &Engine{tags: owned}
}

// Complete returns the candidate list for a completion request. Ordering
// is fixed: the shorthand or boilerplate candidate for the active trigger
// first (when it matches), then one candidate per vocabulary tag in table
// order. The same (document, position, trigger) input always yields the
// same list.
func (e *Engine) Complete(document string, pos Position, trigger Trigger) []Candidate {
	line := lineAt(document, pos.Line)
	col := clampColumn(pos.Column, line)

	candidates := make([]Candidate, 0, len(e.tags)+1)

	switch trigger {
	case TriggerClass:
		if c, ok := shorthandCandidate(line, col, TriggerClass, "class"); ok {
			candidates = append(candidates, c)
		}
	case TriggerID:
		if c, ok := shorthandCandidate(line, col, TriggerID, "id"); ok {
			candidates = append(candidates, c)
		}
	case TriggerBoilerplate:
		candidates = append(candidates, boilerplateCandidate(col))
	}

	// Vocabulary tag candidates are emitted regardless of trigger state.
	wordRange := wordRangeAt(line, col)
	for _, tag := range e.tags {
		candidates = append(candidates, Candidate{
			Label:        tag,
			InsertText:   "<" + tag + ">" + CursorMarker + "</" + tag + ">",
			ReplaceRange: wordRange,
		})
	}

	return candidates
}

// Tags returns the engine's vocabulary in table order.
func (e *Engine) Tags() []string {
	out := make([]string, len(e.tags))
	copy(out, e.tags)
	return out
}

// shorthandCandidate builds the class/id wrapping candidate, or reports
// no match when the text before the cursor is not a shorthand invocation
// of the requested sigil.
func shorthandCandidate(line string, col int, trigger Trigger, attr string) (Candidate, bool) {
	head := line[:col-1]

	m := shorthandPattern.FindStringSubmatch(head)
	if m == nil || m[1] != string(trigger) {
		return Candidate{}, false
	}
	ident := m[2]

	// Replace the sigil plus whatever identifier was already typed.
	start := col - len(ident) - 1
	if start < 1 {
		start = 1
	}

	return Candidate{
		Label:      string(trigger) + ident,
		InsertText: `<div ` + attr + `="` + ident + `">` + CursorMarker + `</div>`,
		ReplaceRange: Range{
			StartColumn: start,
			EndColumn:   col,
		},
	}, true
}

// boilerplateCandidate covers exactly the `!` just typed.
func boilerplateCandidate(col int) Candidate {
	start := col - 1
	if start < 1 {
		start = 1
	}
	return Candidate{
		Label:      string(TriggerBoilerplate),
		InsertText: boilerplateSkeleton,
		ReplaceRange: Range{
			StartColumn: start,
			EndColumn:   col,
		},
	}
}

// wordRangeAt returns the maximal run of word characters touching the
// cursor column. The range may be empty when the cursor sits between
// non-word characters.
func wordRangeAt(line string, col int) Range {
	start := col
	for start > 1 && isWordByte(line[start-2]) {
		start--
	}
	end := col
	for end <= len(line) && isWordByte(line[end-1]) {
		end++
	}
	return Range{StartColumn: start, EndColumn: end}
}

func isWordByte(ch byte) bool {
	return ch == '-' || ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

// lineAt extracts the 1-based line from the document, clamping out-of-range
// line numbers instead of failing. An empty document yields an empty line.
func lineAt(document string, line int) string {
	lines := strings.Split(document, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	return strings.TrimSuffix(lines[line-1], "\r")
}

// clampColumn bounds a 1-based column to [1, len(line)+1]. An out-of-range
// column is treated as end-of-line rather than an error.
func clampColumn(col int, line string) int {
	if col < 1 {
		return 1
	}
	if col > len(line)+1 {
		return len(line) + 1
	}
	return col
}
