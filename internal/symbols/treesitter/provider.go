//go:build cgo

// Package treesitter builds document symbol forests from tree-sitter syntax trees.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/temirov/doccomments/internal/symbols"
)

const (
	nameField           = "name"
	valueField          = "value"
	typeField           = "type"
	parseFailureFormat  = "parse %s: %w"
	emptyTreeFormat     = "parse %s: empty syntax tree"
	constructorName     = "constructor"
	pythonInitName      = "__init__"
	exportStatementType = "export_statement"
)

type grammar struct {
	language *sitter.Language
	classify classifier
}

// match describes a syntax node recognized as a symbol.
// extent is the node whose range becomes the symbol span; name locates the selection span.
type match struct {
	kind   symbols.Kind
	name   *sitter.Node
	extent *sitter.Node
}

type classifier func(node *sitter.Node, parentKind symbols.Kind, source []byte) (match, bool)

// Provider implements symbols.Provider for the grammars it knows.
type Provider struct {
	grammars map[string]grammar
}

// NewProvider constructs a Provider covering JavaScript, TypeScript, C#, Go and Python.
func NewProvider() *Provider {
	javaScriptFamily := grammar{language: javascript.GetLanguage(), classify: classifyJavaScript}
	return &Provider{
		grammars: map[string]grammar{
			"javascript":      javaScriptFamily,
			"javascriptreact": javaScriptFamily,
			"typescript":      {language: typescript.GetLanguage(), classify: classifyJavaScript},
			"typescriptreact": {language: tsx.GetLanguage(), classify: classifyJavaScript},
			"csharp":          {language: csharp.GetLanguage(), classify: classifyCSharp},
			"go":              {language: golang.GetLanguage(), classify: classifyGo},
			"python":          {language: python.GetLanguage(), classify: classifyPython},
		},
	}
}

// Supports reports whether a grammar is registered for languageID.
func (provider *Provider) Supports(languageID string) bool {
	_, found := provider.grammars[strings.ToLower(languageID)]
	return found
}

// DocumentSymbols parses the document and returns its symbol forest.
// Unsupported languages yield a nil forest without error.
func (provider *Provider) DocumentSymbols(ctx context.Context, document symbols.Document) ([]symbols.Node, error) {
	selected, found := provider.grammars[strings.ToLower(document.LanguageID)]
	if !found {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(selected.language)

	tree, parseError := parser.ParseCtx(ctx, nil, document.Source)
	if parseError != nil {
		return nil, fmt.Errorf(parseFailureFormat, document.Path, parseError)
	}
	if tree == nil {
		return nil, fmt.Errorf(emptyTreeFormat, document.Path)
	}
	defer tree.Close()

	builder := forestBuilder{classify: selected.classify, source: document.Source}
	return builder.collect(tree.RootNode(), 0), nil
}

type forestBuilder struct {
	classify classifier
	source   []byte
}

func (builder forestBuilder) collect(node *sitter.Node, parentKind symbols.Kind) []symbols.Node {
	if node == nil {
		return nil
	}
	var forest []symbols.Node
	childCount := int(node.NamedChildCount())
	for childIndex := 0; childIndex < childCount; childIndex++ {
		child := node.NamedChild(childIndex)
		if child == nil {
			continue
		}
		recognized, isSymbol := builder.classify(child, parentKind, builder.source)
		if !isSymbol {
			forest = append(forest, builder.collect(child, parentKind)...)
			continue
		}
		extent := recognized.extent
		if extent == nil {
			extent = child
		}
		selection := extent
		symbolName := ""
		if recognized.name != nil {
			selection = recognized.name
			symbolName = recognized.name.Content(builder.source)
		}
		forest = append(forest, symbols.Node{
			Name:          symbolName,
			Kind:          recognized.kind,
			Span:          spanOf(extent),
			SelectionSpan: spanOf(selection),
			Children:      builder.collect(child, recognized.kind),
		})
	}
	return forest
}

func spanOf(node *sitter.Node) symbols.Span {
	start := node.StartPoint()
	end := node.EndPoint()
	return symbols.Span{
		Start: symbols.Position{Line: int(start.Row), Column: int(start.Column)},
		End:   symbols.Position{Line: int(end.Row), Column: int(end.Column)},
	}
}

// exportedExtent widens a declaration to its enclosing export statement so the span starts at the keyword.
func exportedExtent(node *sitter.Node) *sitter.Node {
	if parent := node.Parent(); parent != nil && parent.Type() == exportStatementType {
		return parent
	}
	return node
}
