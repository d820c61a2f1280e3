// Package target decides what a documentation command works on: the selected text or the
// callable enclosing the cursor, optionally with a one-line context of the enclosing type.
package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/symbols"
)

// Source records where the target text came from.
type Source string

const (
	// SourceSelection marks text taken from the editor selection.
	SourceSelection Source = "selection"
	// SourceSymbol marks text taken from the enclosing callable symbol.
	SourceSymbol Source = "symbol"

	// DefaultContextLanguageID is the language whose documentation needs the enclosing type as context.
	DefaultContextLanguageID = "csharp"

	errorSymbolProviderFormat = "request document symbols for %s: %w"
	signatureTerminator       = "{"
)

// Target is the resolved unit of work. Text is always trimmed and non-empty.
type Target struct {
	Text       string
	LanguageID string
	Source     Source
	Context    string
}

// HasContext reports whether a context line is attached.
func (target Target) HasContext() bool {
	return target.Context != ""
}

// Describe names the source for user-facing messages.
func (target Target) Describe() string {
	if target.Source == SourceSelection {
		return "selection"
	}
	return "enclosing symbol"
}

// Resolver resolves targets from editor state.
type Resolver struct {
	provider         symbols.Provider
	contextLanguages map[string]struct{}
}

// NewResolver constructs a Resolver. Empty contextLanguages default to DefaultContextLanguageID.
func NewResolver(provider symbols.Provider, contextLanguages []string) *Resolver {
	normalized := map[string]struct{}{}
	for _, languageID := range contextLanguages {
		trimmed := strings.ToLower(strings.TrimSpace(languageID))
		if trimmed != "" {
			normalized[trimmed] = struct{}{}
		}
	}
	if len(normalized) == 0 {
		normalized[DefaultContextLanguageID] = struct{}{}
	}
	return &Resolver{provider: provider, contextLanguages: normalized}
}

// NeedsContext reports whether languageID documents with enclosing type context.
func (resolver *Resolver) NeedsContext(languageID string) bool {
	_, found := resolver.contextLanguages[strings.ToLower(languageID)]
	return found
}

// ContextLanguages lists the configured context languages.
func (resolver *Resolver) ContextLanguages() []string {
	languages := make([]string, 0, len(resolver.contextLanguages))
	for languageID := range resolver.contextLanguages {
		languages = append(languages, languageID)
	}
	return languages
}

// Resolve returns the target for the editor state. The boolean is false when there is
// neither a selection nor an enclosing callable.
func (resolver *Resolver) Resolve(ctx context.Context, state editor.State) (Target, bool, error) {
	document := state.Document
	if document == nil {
		return Target{}, false, nil
	}

	if selected := strings.TrimSpace(state.SelectedText()); selected != "" {
		return Target{Text: selected, LanguageID: document.LanguageID, Source: SourceSelection}, true, nil
	}

	if resolver.provider == nil {
		return Target{}, false, nil
	}
	forest, providerError := resolver.provider.DocumentSymbols(ctx, document.SymbolDocument())
	if providerError != nil {
		return Target{}, false, fmt.Errorf(errorSymbolProviderFormat, document.Path, providerError)
	}
	if len(forest) == 0 {
		return Target{}, false, nil
	}

	callable, found := symbols.FindEnclosingCallable(forest, state.Cursor)
	if !found {
		return Target{}, false, nil
	}
	text := strings.TrimSpace(document.TextInSpan(callable.Span))
	if text == "" {
		return Target{}, false, nil
	}

	resolved := Target{Text: text, LanguageID: document.LanguageID, Source: SourceSymbol}
	if resolver.NeedsContext(document.LanguageID) {
		if enclosingType, typeFound := symbols.FindEnclosingType(forest, state.Cursor); typeFound {
			declarationLine := document.Line(enclosingType.SelectionSpan.Start.Line)
			if signature, signatureFound := ExtractSignatureLine(declarationLine); signatureFound {
				resolved.Context = signature
			}
		}
	}
	return resolved, true, nil
}

// ExtractSignatureLine cuts a declaration line at its first opening brace and trims it.
// Declarations whose brace sits on a later line keep the whole line.
func ExtractSignatureLine(sourceLine string) (string, bool) {
	signature := sourceLine
	if braceIndex := strings.Index(signature, signatureTerminator); braceIndex >= 0 {
		signature = signature[:braceIndex]
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return "", false
	}
	return signature, true
}
