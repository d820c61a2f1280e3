// Package editor models the active editor state handed over by an editor integration:
// the document, the cursor and the current selection.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	powernap "github.com/charmbracelet/x/powernap/pkg/lsp"

	"github.com/temirov/doccomments/internal/symbols"
)

const (
	plainTextLanguageID        = "plaintext"
	errorAbsolutePathFormat    = "resolve document path %s: %w"
	errorReadDocumentFormat    = "read document %s: %w"
	errorDocumentIsDirectory   = "document path %s is a directory"
	errorDocumentMissingFormat = "document %s does not exist and no buffer was supplied"
)

// OpenOptions describes how to load a document.
type OpenOptions struct {
	Path       string
	LanguageID string
	// Buffer holds the editor's in-memory text. Nil means the editor text equals the file on disk.
	Buffer []byte
}

// Document is a snapshot of an editor document.
type Document struct {
	Path       string
	LanguageID string
	Text       []byte
	// Persisted reports whether the file exists on disk with exactly the editor's text.
	Persisted   bool
	lineOffsets []int
}

// Open loads a document from disk, overlaying the editor buffer when one is supplied.
func Open(options OpenOptions) (*Document, error) {
	absolutePath, absolutePathError := filepath.Abs(options.Path)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, options.Path, absolutePathError)
	}

	diskContent, existsOnDisk, readError := readIfPresent(absolutePath)
	if readError != nil {
		return nil, readError
	}

	var text []byte
	persisted := existsOnDisk
	switch {
	case options.Buffer != nil:
		text = options.Buffer
		persisted = existsOnDisk && bytes.Equal(diskContent, options.Buffer)
	case existsOnDisk:
		text = diskContent
	default:
		return nil, fmt.Errorf(errorDocumentMissingFormat, absolutePath)
	}

	languageID := strings.TrimSpace(options.LanguageID)
	if languageID == "" {
		languageID = DetectLanguageID(absolutePath)
	}

	return NewDocument(absolutePath, languageID, text, persisted), nil
}

// NewDocument constructs a Document from already loaded text.
func NewDocument(path string, languageID string, text []byte, persisted bool) *Document {
	return &Document{
		Path:        path,
		LanguageID:  languageID,
		Text:        text,
		Persisted:   persisted,
		lineOffsets: computeLineOffsets(text),
	}
}

// DetectLanguageID maps a file path to an LSP language identifier.
func DetectLanguageID(path string) string {
	detected := strings.TrimSpace(string(powernap.DetectLanguage(path)))
	if detected == "" {
		return plainTextLanguageID
	}
	return detected
}

func readIfPresent(path string) ([]byte, bool, error) {
	info, statError := os.Stat(path)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf(errorReadDocumentFormat, path, statError)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf(errorDocumentIsDirectory, path)
	}
	// #nosec G304
	content, readError := os.ReadFile(path)
	if readError != nil {
		return nil, false, fmt.Errorf(errorReadDocumentFormat, path, readError)
	}
	return content, true, nil
}

func computeLineOffsets(text []byte) []int {
	offsets := []int{0}
	for index, character := range text {
		if character == '\n' {
			offsets = append(offsets, index+1)
		}
	}
	return offsets
}

// LineCount returns the number of lines in the document.
func (document *Document) LineCount() int {
	return len(document.lineOffsets)
}

// Line returns the text of a zero-based line without its terminator.
func (document *Document) Line(line int) string {
	if line < 0 || line >= len(document.lineOffsets) {
		return ""
	}
	start := document.lineOffsets[line]
	end := len(document.Text)
	if line+1 < len(document.lineOffsets) {
		end = document.lineOffsets[line+1] - 1
	}
	return strings.TrimSuffix(string(document.Text[start:end]), "\r")
}

// offset converts a position to a byte offset, clamping it into the document.
func (document *Document) offset(position symbols.Position) int {
	if position.Line < 0 {
		return 0
	}
	if position.Line >= len(document.lineOffsets) {
		return len(document.Text)
	}
	lineStart := document.lineOffsets[position.Line]
	lineEnd := len(document.Text)
	if position.Line+1 < len(document.lineOffsets) {
		lineEnd = document.lineOffsets[position.Line+1]
	}
	column := position.Column
	if column < 0 {
		column = 0
	}
	if lineStart+column > lineEnd {
		return lineEnd
	}
	return lineStart + column
}

// TextInSpan returns the text covered by span, end exclusive.
func (document *Document) TextInSpan(span symbols.Span) string {
	start := document.offset(span.Start)
	end := document.offset(span.End)
	if end <= start {
		return ""
	}
	return string(document.Text[start:end])
}

// SymbolDocument exposes the document to a symbols.Provider.
func (document *Document) SymbolDocument() symbols.Document {
	return symbols.Document{
		Path:       document.Path,
		LanguageID: document.LanguageID,
		Source:     document.Text,
	}
}
