package target

import (
	"context"
	"errors"
	"testing"

	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/symbols"
)

const cSharpSource = `namespace Demo
{
    public class Foo {
        public int Bar(int x)
        {
            return x;
        }
    }
}`

type countingProvider struct {
	forest []symbols.Node
	err    error
	calls  int
}

func (provider *countingProvider) DocumentSymbols(context.Context, symbols.Document) ([]symbols.Node, error) {
	provider.calls++
	return provider.forest, provider.err
}

func cSharpForest() []symbols.Node {
	return []symbols.Node{
		{
			Name: "Demo",
			Kind: symbols.KindNamespace,
			Span: symbols.Span{End: symbols.Position{Line: 8, Column: 1}},
			Children: []symbols.Node{
				{
					Name:          "Foo",
					Kind:          symbols.KindClass,
					Span:          symbols.Span{Start: symbols.Position{Line: 2, Column: 4}, End: symbols.Position{Line: 7, Column: 5}},
					SelectionSpan: symbols.Span{Start: symbols.Position{Line: 2, Column: 17}, End: symbols.Position{Line: 2, Column: 20}},
					Children: []symbols.Node{
						{
							Name:          "Bar",
							Kind:          symbols.KindMethod,
							Span:          symbols.Span{Start: symbols.Position{Line: 3, Column: 8}, End: symbols.Position{Line: 6, Column: 9}},
							SelectionSpan: symbols.Span{Start: symbols.Position{Line: 3, Column: 19}, End: symbols.Position{Line: 3, Column: 22}},
						},
					},
				},
			},
		},
	}
}

func TestResolveSelectionWins(t *testing.T) {
	provider := &countingProvider{forest: cSharpForest()}
	resolver := NewResolver(provider, nil)
	document := editor.NewDocument("/work/Foo.cs", "csharp", []byte(cSharpSource), true)

	resolved, found, resolveError := resolver.Resolve(context.Background(), editor.State{
		Document:  document,
		Cursor:    symbols.Position{Line: 5, Column: 14},
		Selection: editor.Selection{Text: "  return x;\n  "},
	})
	if resolveError != nil || !found {
		t.Fatalf("expected selection target, got found=%t err=%v", found, resolveError)
	}
	if resolved.Text != "return x;" || resolved.Source != SourceSelection {
		t.Fatalf("unexpected target %+v", resolved)
	}
	if resolved.HasContext() {
		t.Fatalf("selection targets must not carry context")
	}
	if provider.calls != 0 {
		t.Fatalf("symbol provider must not be queried when a selection exists")
	}
}

func TestResolveEnclosingSymbolWithContext(t *testing.T) {
	resolver := NewResolver(&countingProvider{forest: cSharpForest()}, []string{"CSharp"})
	document := editor.NewDocument("/work/Foo.cs", "csharp", []byte(cSharpSource), true)

	resolved, found, resolveError := resolver.Resolve(context.Background(), editor.State{
		Document:  document,
		Cursor:    symbols.Position{Line: 5, Column: 14},
		Selection: editor.Selection{Text: "   \n\t"},
	})
	if resolveError != nil || !found {
		t.Fatalf("expected symbol target, got found=%t err=%v", found, resolveError)
	}
	expectedText := "public int Bar(int x)\n        {\n            return x;\n        }"
	if resolved.Text != expectedText {
		t.Fatalf("unexpected text %q", resolved.Text)
	}
	if resolved.Source != SourceSymbol {
		t.Fatalf("expected symbol source, got %s", resolved.Source)
	}
	if resolved.Context != "public class Foo" {
		t.Fatalf("expected context %q, got %q", "public class Foo", resolved.Context)
	}
}

func TestResolveSkipsContextForOtherLanguages(t *testing.T) {
	resolver := NewResolver(&countingProvider{forest: cSharpForest()}, nil)
	document := editor.NewDocument("/work/foo.ts", "typescript", []byte(cSharpSource), true)

	resolved, found, _ := resolver.Resolve(context.Background(), editor.State{Document: document, Cursor: symbols.Position{Line: 5}})
	if !found {
		t.Fatalf("expected symbol target")
	}
	if resolved.HasContext() {
		t.Fatalf("typescript targets must not carry type context, got %q", resolved.Context)
	}
}

func TestResolveNotFound(t *testing.T) {
	document := editor.NewDocument("/work/Foo.cs", "csharp", []byte(cSharpSource), true)
	blankDocument := editor.NewDocument("/work/blank.cs", "csharp", []byte("\n\n\n\n\n\n\n"), true)

	testCases := []struct {
		name     string
		provider symbols.Provider
		state    editor.State
	}{
		{
			name:     "no_document",
			provider: &countingProvider{forest: cSharpForest()},
			state:    editor.State{},
		},
		{
			name:     "nil_forest",
			provider: &countingProvider{},
			state:    editor.State{Document: document, Cursor: symbols.Position{Line: 5}},
		},
		{
			name:     "cursor_outside_every_symbol",
			provider: &countingProvider{forest: cSharpForest()},
			state:    editor.State{Document: document, Cursor: symbols.Position{Line: 40}},
		},
		{
			name:     "cursor_in_class_body_without_callable",
			provider: &countingProvider{forest: cSharpForest()},
			state:    editor.State{Document: document, Cursor: symbols.Position{Line: 2, Column: 30}},
		},
		{
			name:     "symbol_text_blank",
			provider: &countingProvider{forest: cSharpForest()},
			state:    editor.State{Document: blankDocument, Cursor: symbols.Position{Line: 4}},
		},
		{
			name:     "no_provider",
			provider: nil,
			state:    editor.State{Document: document, Cursor: symbols.Position{Line: 5}},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			resolver := NewResolver(testCase.provider, nil)
			resolved, found, resolveError := resolver.Resolve(context.Background(), testCase.state)
			if resolveError != nil {
				t.Fatalf("unexpected error: %v", resolveError)
			}
			if found {
				t.Fatalf("expected no target, got %+v", resolved)
			}
		})
	}
}

func TestResolvePropagatesProviderErrors(t *testing.T) {
	providerFailure := errors.New("symbol index unavailable")
	resolver := NewResolver(&countingProvider{err: providerFailure}, nil)
	document := editor.NewDocument("/work/Foo.cs", "csharp", []byte(cSharpSource), true)
	_, _, resolveError := resolver.Resolve(context.Background(), editor.State{Document: document})
	if !errors.Is(resolveError, providerFailure) {
		t.Fatalf("expected wrapped provider error, got %v", resolveError)
	}
}

func TestExtractSignatureLine(t *testing.T) {
	testCases := []struct {
		name        string
		line        string
		expected    string
		expectFound bool
	}{
		{name: "brace_on_line", line: "public class Foo {", expected: "public class Foo", expectFound: true},
		{name: "indented_generic", line: "    internal sealed class Box<T> : IBox where T : new() { }", expected: "internal sealed class Box<T> : IBox where T : new()", expectFound: true},
		{name: "no_brace", line: "  public struct Point  ", expected: "public struct Point", expectFound: true},
		{name: "only_brace", line: "   {", expectFound: false},
		{name: "blank", line: "", expectFound: false},
	}
	for _, testCase := range testCases {
		signature, found := ExtractSignatureLine(testCase.line)
		if found != testCase.expectFound {
			t.Fatalf("%s: expected found=%t, got %t", testCase.name, testCase.expectFound, found)
		}
		if signature != testCase.expected {
			t.Fatalf("%s: expected %q, got %q", testCase.name, testCase.expected, signature)
		}
	}
}
