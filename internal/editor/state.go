package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/doccomments/internal/symbols"
)

const (
	positionSeparator          = ":"
	spanSeparator              = "-"
	errorInvalidPositionFormat = "invalid position %q: expected line:column"
	errorInvalidSpanFormat     = "invalid span %q: expected line:column-line:column"
	errorNegativePosition      = "invalid position %q: line and column must not be negative"
)

// Selection is the editor selection: an explicit text, a span in the document, or both.
type Selection struct {
	Text string
	Span symbols.Span
}

// State is the active editor: the focused document, the cursor and the selection.
// A nil Document means there is no active editor.
type State struct {
	Document  *Document
	Cursor    symbols.Position
	Selection Selection
}

// SelectedText returns the explicit selection text, falling back to the text covered by the selection span.
func (state State) SelectedText() string {
	if state.Selection.Text != "" {
		return state.Selection.Text
	}
	if state.Document == nil || state.Selection.Span.IsEmpty() {
		return ""
	}
	return state.Document.TextInSpan(state.Selection.Span)
}

// ParsePosition parses a zero-based "line:column" pair. A bare line means column zero.
func ParsePosition(input string) (symbols.Position, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return symbols.Position{}, fmt.Errorf(errorInvalidPositionFormat, input)
	}
	lineText, columnText, hasColumn := strings.Cut(trimmed, positionSeparator)
	line, lineError := strconv.Atoi(strings.TrimSpace(lineText))
	if lineError != nil {
		return symbols.Position{}, fmt.Errorf(errorInvalidPositionFormat, input)
	}
	column := 0
	if hasColumn {
		parsedColumn, columnError := strconv.Atoi(strings.TrimSpace(columnText))
		if columnError != nil {
			return symbols.Position{}, fmt.Errorf(errorInvalidPositionFormat, input)
		}
		column = parsedColumn
	}
	if line < 0 || column < 0 {
		return symbols.Position{}, fmt.Errorf(errorNegativePosition, input)
	}
	return symbols.Position{Line: line, Column: column}, nil
}

// ParseSpan parses "line:column-line:column". The endpoints are reordered when given backwards.
func ParseSpan(input string) (symbols.Span, error) {
	startText, endText, found := strings.Cut(strings.TrimSpace(input), spanSeparator)
	if !found {
		return symbols.Span{}, fmt.Errorf(errorInvalidSpanFormat, input)
	}
	start, startError := ParsePosition(startText)
	if startError != nil {
		return symbols.Span{}, fmt.Errorf(errorInvalidSpanFormat, input)
	}
	end, endError := ParsePosition(endText)
	if endError != nil {
		return symbols.Span{}, fmt.Errorf(errorInvalidSpanFormat, input)
	}
	if end.Before(start) {
		start, end = end, start
	}
	return symbols.Span{Start: start, End: end}, nil
}

// FormatPosition renders a position as "line:column".
func FormatPosition(position symbols.Position) string {
	return strconv.Itoa(position.Line) + positionSeparator + strconv.Itoa(position.Column)
}
